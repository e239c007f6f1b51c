package shop

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"WestMarket/internal/catalog"
	"WestMarket/internal/ledger"
	"WestMarket/pkg/kit"
)

var (
	errUnknownProduct = errors.New("unknown product")
	errAmbiguousName  = errors.New("ambiguous product name")
	errShortStock     = errors.New("insufficient stock")
)

type receipt struct {
	ReceiptID string        `json:"receipt_id"`
	Items     []ledger.Line `json:"items"`
	Total     float64       `json:"total"`
}

// checkout commits the pending cart: every ledger line is joined to its
// product by name and the stock decremented, then the updated catalog is
// persisted and the ledger cleared. An empty ledger exposes no transition.
func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.Ledger.Load(ctx)
	if err != nil {
		s.logError("load ledger failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if len(lines) == 0 {
		kit.WriteError(w, r, http.StatusConflict, "cart is empty", nil)
		return
	}

	products, err := s.Catalog.Load(ctx)
	if err != nil {
		s.logError("load catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	updated, err := commitLines(products, lines)
	if err != nil {
		s.writeCheckoutError(w, r, err)
		return
	}

	if err := s.Catalog.Save(ctx, updated); err != nil {
		s.logError("save catalog failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if err := ledger.Clear(ctx, s.Ledger); err != nil {
		s.logError("clear ledger failed", err)
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, receipt{
		ReceiptID: "r_" + uuid.NewString(),
		Items:     lines,
		Total:     cartTotal(lines),
	})
}

// commitLines applies every ledger line against a copy of the catalog,
// rejecting the whole checkout if any line can not be satisfied. Lines for
// the same product accumulate, so a cart that double-counts a nearly
// sold-out item fails the stock check instead of driving stock negative.
func commitLines(products []catalog.Product, lines []ledger.Line) ([]catalog.Product, error) {
	out := make([]catalog.Product, len(products))
	copy(out, products)

	byName := make(map[string][]int, len(out))
	for i, p := range out {
		byName[p.Name] = append(byName[p.Name], i)
	}

	for _, l := range lines {
		pos := byName[l.Name]
		switch {
		case len(pos) == 0:
			return nil, fmt.Errorf("%w: %q", errUnknownProduct, l.Name)
		case len(pos) > 1:
			return nil, fmt.Errorf("%w: %q", errAmbiguousName, l.Name)
		}

		p := &out[pos[0]]
		if l.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: %q (want %d, have %d)", errShortStock, l.Name, l.Quantity, p.Stock)
		}
		p.Stock -= l.Quantity
	}
	return out, nil
}

func (s *Server) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errShortStock):
		kit.WriteError(w, r, http.StatusConflict, "insufficient stock", map[string]any{"cause": err.Error()})
	case errors.Is(err, errUnknownProduct):
		kit.WriteError(w, r, http.StatusConflict, "unknown product in cart", map[string]any{"cause": err.Error()})
	case errors.Is(err, errAmbiguousName):
		kit.WriteError(w, r, http.StatusConflict, "ambiguous product name in cart", map[string]any{"cause": err.Error()})
	default:
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
