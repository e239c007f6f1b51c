package ledger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"WestMarket/internal/catalog"
)

func newTestCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(filepath.Join(t.TempDir(), "orders.csv"))
}

func TestCSVStore_CreatesEmptyOnFirstLoad(t *testing.T) {
	s := newTestCSVStore(t)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("first load=%+v want empty ledger", got)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("header-only file not written: %v", err)
	}
	if string(raw) != "Name,Quantity,Total\n" {
		t.Fatalf("file=%q want header only", string(raw))
	}
}

func TestAppend_TotalsElementwise(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	adds := []struct {
		name  string
		qty   int
		price float64
	}{
		{"Fresh Tomatoes", 3, 2.50},
		{"Organic Maize", 5, 1.20},
		{"Farm Eggs", 4, 0.50},
	}

	for _, a := range adds {
		l, err := NewLine(a.name, a.qty, catalog.Round2(float64(a.qty)*a.price))
		if err != nil {
			t.Fatalf("new line %s: %v", a.name, err)
		}
		if err := Append(ctx, s, l); err != nil {
			t.Fatalf("append %s: %v", a.name, err)
		}
	}

	lines, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lines) != len(adds) {
		t.Fatalf("ledger length=%d want %d", len(lines), len(adds))
	}
	for i, a := range adds {
		want := catalog.Round2(float64(a.qty) * a.price)
		if lines[i].Name != a.name || lines[i].Quantity != a.qty || lines[i].Total != want {
			t.Fatalf("line %d=%+v want {%s %d %v}", i, lines[i], a.name, a.qty, want)
		}
	}
}

func TestClear(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	if err := Append(ctx, s, Line{Name: "Farm Eggs", Quantity: 2, Total: 1.00}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := Clear(ctx, s); err != nil {
		t.Fatalf("clear: %v", err)
	}

	lines, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("ledger=%+v want empty after clear", lines)
	}
}

func TestCSVStore_RoundTrip(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	in := []Line{
		{Name: "Eggs", Quantity: 4, Total: 2.00},
		{Name: "Milk, Whole", Quantity: 1, Total: 1.25},
	}

	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, in)
	}
}

func TestNewLine_Invalid(t *testing.T) {
	if _, err := NewLine("  ", 1, 1); !errors.Is(err, ErrBadName) {
		t.Fatalf("blank name err=%v", err)
	}
	if _, err := NewLine("Eggs", 0, 1); !errors.Is(err, ErrBadQuantity) {
		t.Fatalf("zero quantity err=%v", err)
	}
	if _, err := NewLine("Eggs", 1, -0.5); !errors.Is(err, ErrBadTotal) {
		t.Fatalf("negative total err=%v", err)
	}
}
