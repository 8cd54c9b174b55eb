package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PriceMatrix is an immutable, date-ordered view over symbol prices.
// A symbol absent on a date (or carrying NaN) is treated as having no
// data for that date, not as zero.
type PriceMatrix struct {
	dates   []time.Time
	rows    []map[string]float64
	symbols []string
}

// NewPriceMatrix builds a matrix from parallel date and price-row slices.
// The rows are copied so the matrix stays a stable snapshot for the run.
func NewPriceMatrix(dates []time.Time, rows []map[string]float64) (*PriceMatrix, error) {
	if len(dates) != len(rows) {
		return nil, fmt.Errorf("price matrix: %d dates but %d rows", len(dates), len(rows))
	}

	m := &PriceMatrix{
		dates: append([]time.Time(nil), dates...),
		rows:  make([]map[string]float64, len(rows)),
	}

	seen := make(map[string]bool)
	for i, row := range rows {
		copied := make(map[string]float64, len(row))
		for symbol, price := range row {
			copied[symbol] = price
			if !seen[symbol] {
				seen[symbol] = true
				m.symbols = append(m.symbols, symbol)
			}
		}
		m.rows[i] = copied
	}
	sort.Strings(m.symbols)

	return m, nil
}

// Len returns the number of dates in the matrix.
func (m *PriceMatrix) Len() int {
	return len(m.rows)
}

// Date returns the date at the given day index.
func (m *PriceMatrix) Date(day int) time.Time {
	return m.dates[day]
}

// Symbols returns the sorted union of all symbols seen on any date.
func (m *PriceMatrix) Symbols() []string {
	return append([]string(nil), m.symbols...)
}

// Price returns the price of a symbol on a day. The second return value
// is false when there is no usable observation.
func (m *PriceMatrix) Price(day int, symbol string) (float64, bool) {
	if day < 0 || day >= len(m.rows) {
		return 0, false
	}
	price, ok := m.rows[day][symbol]
	if !ok || math.IsNaN(price) || price < 0 {
		return 0, false
	}
	return price, true
}

// Row returns the usable symbol→price mapping for one day.
func (m *PriceMatrix) Row(day int) map[string]float64 {
	row := make(map[string]float64, len(m.rows[day]))
	for symbol, price := range m.rows[day] {
		if !math.IsNaN(price) && price >= 0 {
			row[symbol] = price
		}
	}
	return row
}

// Series returns the full aligned price series of a symbol, with NaN on
// dates without data.
func (m *PriceMatrix) Series(symbol string) []float64 {
	series := make([]float64, len(m.rows))
	for i, row := range m.rows {
		if price, ok := row[symbol]; ok {
			series[i] = price
		} else {
			series[i] = math.NaN()
		}
	}
	return series
}

// Window returns the usable observations of a symbol in [from, to),
// oldest first. Missing dates are skipped, not zero-filled.
func (m *PriceMatrix) Window(symbol string, from, to int) []float64 {
	if from < 0 {
		from = 0
	}
	if to > len(m.rows) {
		to = len(m.rows)
	}

	window := make([]float64, 0, to-from)
	for day := from; day < to; day++ {
		if price, ok := m.Price(day, symbol); ok {
			window = append(window, price)
		}
	}
	return window
}
