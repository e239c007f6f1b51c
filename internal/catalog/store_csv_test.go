package catalog

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	return NewCSVStore(filepath.Join(t.TempDir(), "products.csv"))
}

func TestCSVStore_SeedsOnFirstLoad(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if !reflect.DeepEqual(got, Seed()) {
		t.Fatalf("first load=%+v want seed set", got)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		t.Fatalf("seed file not written: %v", err)
	}
	if !strings.HasPrefix(string(raw), "ID,Name,Price,Stock,Image\n") {
		t.Fatalf("missing header, got %q", strings.SplitN(string(raw), "\n", 2)[0])
	}

	// A second load returns the persisted set, not a fresh seed.
	mutated := got
	mutated[0].Stock = 7
	if err := s.Save(ctx, mutated); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if again[0].Stock != 7 {
		t.Fatalf("second load stock=%d want 7", again[0].Stock)
	}
}

func TestCSVStore_RoundTrip(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	in := []Product{
		{ID: 1, Name: "Eggs", Price: 0.50, Stock: 10, Image: "https://img.example/eggs.jpg"},
		{ID: 2, Name: "Milk, Whole", Price: 1.25, Stock: 0, Image: ""},
		{ID: 9, Name: "Honey \"Raw\"", Price: 12.00, Stock: 3, Image: "https://img.example/honey.jpg"},
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

func TestCSVStore_SaveOverwritesWholeFile(t *testing.T) {
	s := newTestCSVStore(t)
	ctx := context.Background()

	if _, err := s.Load(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Save(ctx, []Product{{ID: 1, Name: "Only", Price: 1, Stock: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Only" {
		t.Fatalf("got %+v want the single replacement row", out)
	}
}

// Loading is tolerant of values the constructors forbid: a hand-edited
// file reads back exactly as written.
func TestCSVStore_LoadsOutOfRangeValuesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte("ID,Name,Price,Stock,Image\n1,Eggs,-0.50,-3,x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := NewCSVStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Price != -0.50 || got[0].Stock != -3 {
		t.Fatalf("got %+v want the row verbatim", got)
	}
}

func TestCSVStore_RejectsMalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	if err := os.WriteFile(path, []byte("ID,Name,Price,Stock,Image\nnope,Eggs,0.50,10,x\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := NewCSVStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for non-integer id")
	}
}
