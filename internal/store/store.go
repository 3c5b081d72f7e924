// Package store provides an interface for product storage operations.
package store

// Product represents a product entity in the store.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// ProductFields holds every mutable product attribute. The ID is owned by the
// store: it is assigned on Create and never changes on Replace.
type ProductFields struct {
	Name        string
	Description string
	Price       float64
	Category    string
	InStock     bool
}

// ProductStore is an interface for product storage operations.
// The collection is ordered: Create appends, Replace keeps the record's
// position, DeleteByID preserves the order of the remaining records.
type ProductStore interface {
	// FindAll returns a snapshot of all products in their current order.
	// Returns an empty slice if no products exist.
	FindAll() ([]Product, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(id string) (*Product, error)

	// Create adds a new product with a freshly generated ID, appended to the
	// end of the collection, and returns the stored record.
	Create(fields ProductFields) (*Product, error)

	// Replace overwrites every field except the ID of an existing product,
	// in place. Returns ErrProductNotFound if no product exists with the given ID.
	Replace(id string, fields ProductFields) (*Product, error)

	// DeleteByID removes a product and returns the removed record.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(id string) (*Product, error)
}
