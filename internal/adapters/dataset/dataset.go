// Package dataset serves the historical flight price data behind the price
// distribution chart.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/go-gota/gota/dataframe"

	"github.com/priyanka7411/customer-flight-prediction-app-mlflow/pkg/metrics"
)

// PriceColumn is the column the distribution is computed over.
const PriceColumn = "Price"

// Sentinel kinds for dataset errors.
var (
	ErrNoPriceColumn = errors.New("dataset has no Price column")
	ErrEmpty         = errors.New("dataset has no prices")
	ErrInvalidBins   = errors.New("invalid bin count")
)

// Dataset is an immutable, loaded price table.
type Dataset struct {
	df     dataframe.DataFrame
	prices []float64 // sorted ascending, NaNs dropped
	source string
}

// Load reads a CSV file with a header row.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ds.source = path
	metrics.UpdateDatasetRecords(ds.Rows())
	return ds, nil
}

// Read parses CSV from r.
func Read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return nil, fmt.Errorf("parse csv: %w", df.Err)
	}
	if !hasColumn(df, PriceColumn) {
		return nil, ErrNoPriceColumn
	}

	col := df.Col(PriceColumn)
	if col.Err != nil {
		return nil, fmt.Errorf("read %s: %w", PriceColumn, col.Err)
	}
	raw := col.Float()
	prices := make([]float64, 0, len(raw))
	for _, p := range raw {
		if !math.IsNaN(p) && !math.IsInf(p, 0) {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return nil, ErrEmpty
	}
	sort.Float64s(prices)
	return &Dataset{df: df, prices: prices}, nil
}

// Source returns the path the dataset was loaded from, if any.
func (d *Dataset) Source() string { return d.source }

// Rows returns the number of data rows in the file.
func (d *Dataset) Rows() int { return d.df.Nrow() }

// Columns returns the header names.
func (d *Dataset) Columns() []string { return d.df.Names() }

// Histogram is an equal-width histogram of prices.
type Histogram struct {
	Column string    `json:"column"`
	Bins   int       `json:"bins"`
	Edges  []float64 `json:"edges"` // len Bins+1
	Counts []int     `json:"counts"`
	Total  int       `json:"total"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
}

// Histogram buckets the prices into bins equal-width bins spanning
// [min, max]. The last bin is closed so the maximum is counted.
func (d *Dataset) Histogram(bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("%w: %d", ErrInvalidBins, bins)
	}

	lo, hi := d.prices[0], d.prices[len(d.prices)-1]
	width := (hi - lo) / float64(bins)
	if width == 0 {
		width = 1
	}

	h := Histogram{
		Column: PriceColumn,
		Bins:   bins,
		Edges:  make([]float64, bins+1),
		Counts: make([]int, bins),
		Total:  len(d.prices),
		Min:    lo,
		Max:    hi,
		Median: median(d.prices),
	}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}

	var sum float64
	for _, p := range d.prices {
		sum += p
		i := int((p - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	h.Mean = sum / float64(len(d.prices))
	return h, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
