package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var csvHeader = []string{"Name", "Quantity", "Total"}

// CSVStore persists the ledger as a flat comma-separated file with a
// header row, rewritten in full on every Save via temp file + rename.
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

// Load reads the pending cart. A missing file is not an error: an empty
// header-only file is created and an empty ledger returned.
func (s *CSVStore) Load(ctx context.Context) ([]Line, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		if err := s.Save(ctx, nil); err != nil {
			return nil, err
		}
		return []Line{}, nil
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

func (s *CSVStore) Save(ctx context.Context, lines []Line) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "orders-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	records := make([][]string, 0, len(lines)+1)
	records = append(records, csvHeader)
	for _, l := range lines {
		records = append(records, []string{
			l.Name,
			strconv.Itoa(l.Quantity),
			strconv.FormatFloat(l.Total, 'f', 2, 64),
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

func parseRecords(records [][]string) ([]Line, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("orders file: missing header")
	}

	out := make([]Line, 0, len(records)-1)
	for i, rec := range records[1:] {
		l, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("orders row %d: %w", i+1, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func parseRecord(rec []string) (Line, error) {
	if len(rec) != len(csvHeader) {
		return Line{}, fmt.Errorf("want %d fields, got %d", len(csvHeader), len(rec))
	}

	qty, err := strconv.Atoi(rec[1])
	if err != nil {
		return Line{}, fmt.Errorf("quantity: %w", err)
	}
	total, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Line{}, fmt.Errorf("total: %w", err)
	}

	return Line{Name: rec[0], Quantity: qty, Total: total}, nil
}
