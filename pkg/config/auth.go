package config

import (
	"fmt"
	"strings"
)

type AuthConfig struct {
	APIKey string `koanf:"apikey"`
}

// String returns a string representation of the auth configuration with the key masked.
func (c *AuthConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  apikey: %s\n", MaskSecret(c.APIKey)))
	return b.String()
}

func (c *AuthConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("auth API key is not configured")
	}
	return nil
}

// MaskSecret hides a secret value, keeping only a short prefix for log correlation.
func MaskSecret(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****"
}
