// Package ledger holds the pending cart: one persisted line per add-to-cart
// action, cleared wholesale by checkout.
package ledger

import (
	"context"
	"errors"
	"math"
	"strings"
)

// Line is one pending cart entry. Name is the join key back to the catalog
// at checkout time; Total is fixed at add time and is not recomputed if the
// product price changes later.
type Line struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

var (
	ErrBadName     = errors.New("name required")
	ErrBadQuantity = errors.New("quantity must be positive")
	ErrBadTotal    = errors.New("total must be non-negative")
)

// NewLine validates the field constraints.
func NewLine(name string, quantity int, total float64) (Line, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Line{}, ErrBadName
	case quantity <= 0:
		return Line{}, ErrBadQuantity
	case total < 0 || math.IsNaN(total) || math.IsInf(total, 0):
		return Line{}, ErrBadTotal
	}
	return Line{Name: name, Quantity: quantity, Total: total}, nil
}

// Store is whole-collection access to the persisted ledger, mirroring the
// catalog store contract.
type Store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

// Append is a full read-modify-write cycle: load the current ledger, add
// one line, persist the result.
func Append(ctx context.Context, s Store, l Line) error {
	lines, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, append(lines, l))
}

// Clear replaces the ledger with an empty collection.
func Clear(ctx context.Context, s Store) error {
	return s.Save(ctx, []Line{})
}
