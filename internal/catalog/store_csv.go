package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeader = []string{"ID", "Name", "Price", "Stock", "Image"}

// CSVStore persists the catalog as a flat comma-separated file with a
// header row. Load reads the whole file; Save rewrites it by writing a
// sibling temp file and renaming it over the target, so a crash mid-write
// never truncates the live file.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

// Load reads the full product set. A missing file is not an error: the
// seed set is persisted and returned.
func (s *CSVStore) Load(ctx context.Context) ([]Product, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		seed := Seed()
		if err := s.Save(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return parseRecords(records)
}

// Save rewrites the whole file.
func (s *CSVStore) Save(ctx context.Context, products []Product) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "products-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	records := make([][]string, 0, len(products)+1)
	records = append(records, csvHeader)
	for _, p := range products {
		records = append(records, []string{
			strconv.Itoa(p.ID),
			p.Name,
			strconv.FormatFloat(p.Price, 'f', 2, 64),
			strconv.Itoa(p.Stock),
			p.Image,
		})
	}

	if err := csv.NewWriter(tmp).WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func parseRecords(records [][]string) ([]Product, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("products file: missing header")
	}

	out := make([]Product, 0, len(records)-1)
	for i, rec := range records[1:] {
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("products row %d: %w", i+1, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// parseRecord only requires well-formed fields, not the constructor's
// constraints: whatever values are in the file load back exactly as
// written, so a save/load cycle never alters the collection. Constraint
// checking stays at the edges where rows are created.
func parseRecord(rec []string) (Product, error) {
	if len(rec) != len(csvHeader) {
		return Product{}, fmt.Errorf("want %d fields, got %d", len(csvHeader), len(rec))
	}

	id, err := strconv.Atoi(rec[0])
	if err != nil {
		return Product{}, fmt.Errorf("id: %w", err)
	}
	price, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Product{}, fmt.Errorf("price: %w", err)
	}
	stock, err := strconv.Atoi(rec[3])
	if err != nil {
		return Product{}, fmt.Errorf("stock: %w", err)
	}

	return Product{ID: id, Name: rec[1], Price: price, Stock: stock, Image: rec[4]}, nil
}
