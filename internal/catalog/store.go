package catalog

import (
	"context"
	"errors"
	"math"
	"strings"
)

// Product is one row of the products table. Name doubles as the join key
// for pending cart lines, which is why admin-add enforces its uniqueness.
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Image string  `json:"image"`
}

var (
	ErrDuplicateID = errors.New("duplicate product id")

	ErrBadID    = errors.New("id must be positive")
	ErrBadName  = errors.New("name required")
	ErrBadPrice = errors.New("price must be non-negative")
	ErrBadStock = errors.New("stock must be non-negative")
)

// NewProduct validates the field constraints and normalizes the price to
// cent precision.
func NewProduct(id int, name string, price float64, stock int, image string) (Product, error) {
	name = strings.TrimSpace(name)
	switch {
	case id <= 0:
		return Product{}, ErrBadID
	case name == "":
		return Product{}, ErrBadName
	case price < 0 || math.IsNaN(price) || math.IsInf(price, 0):
		return Product{}, ErrBadPrice
	case stock < 0:
		return Product{}, ErrBadStock
	}

	return Product{
		ID:    id,
		Name:  name,
		Price: Round2(price),
		Stock: stock,
		Image: strings.TrimSpace(image),
	}, nil
}

// Round2 rounds a currency amount to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Store is whole-collection access to the persisted catalog: Load reads
// every product, Save rewrites the full set. There is no row-level update.
type Store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, products []Product) error
}

// Seed is the fixed product set created when no catalog exists yet.
func Seed() []Product {
	return []Product{
		{ID: 1, Name: "Fresh Tomatoes", Price: 2.50, Stock: 50, Image: "https://images.unsplash.com/photo-1617196030429-1d395cce0421?auto=format&fit=crop&w=400&q=80"},
		{ID: 2, Name: "Organic Maize", Price: 1.20, Stock: 100, Image: "https://images.unsplash.com/photo-1617200206167-8df0aa8b1cf1?auto=format&fit=crop&w=400&q=80"},
		{ID: 3, Name: "Farm Eggs", Price: 0.50, Stock: 200, Image: "https://images.unsplash.com/photo-1565958011701-44d29c3e1653?auto=format&fit=crop&w=400&q=80"},
	}
}

// NextID returns max existing id + 1, or 1 for an empty catalog.
func NextID(products []Product) int {
	next := 1
	for _, p := range products {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}
