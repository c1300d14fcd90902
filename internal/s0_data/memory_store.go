package s0_data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/stockreco/internal/contracts"
)

// MemoryStore is an in-process HistoryStore (CSV import, tests)
type MemoryStore struct {
	mu     sync.RWMutex
	points map[string][]contracts.PricePoint
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{points: make(map[string][]contracts.PricePoint)}
}

var _ contracts.HistoryStore = (*MemoryStore)(nil)

// Add appends observations as given; ordering problems surface in validation
func (m *MemoryStore) Add(points ...contracts.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.points[p.Symbol] = append(m.points[p.Symbol], p)
	}
}

// Symbols returns symbols with at least one observation on or before asOf
func (m *MemoryStore) Symbols(ctx context.Context, asOf time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.points))
	for symbol, pts := range m.points {
		for _, p := range pts {
			if !p.Timestamp.After(asOf) {
				symbols = append(symbols, symbol)
				break
			}
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// History returns observations with from < ts <= to in stored order
func (m *MemoryStore) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]contracts.PricePoint, 0)
	for _, p := range m.points[symbol] {
		if p.Timestamp.After(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Series returns one timestamp-ordered series per symbol, ordered by symbol
func (m *MemoryStore) Series() []contracts.HistorySeries {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.points))
	for symbol := range m.points {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	out := make([]contracts.HistorySeries, 0, len(symbols))
	for _, symbol := range symbols {
		pts := make([]contracts.PricePoint, len(m.points[symbol]))
		copy(pts, m.points[symbol])
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Timestamp.Before(pts[j].Timestamp) })
		out = append(out, contracts.HistorySeries{Symbol: symbol, Points: pts})
	}
	return out
}

// Points returns every observation ordered by symbol then timestamp
func (m *MemoryStore) Points() []contracts.PricePoint {
	var out []contracts.PricePoint
	for _, s := range m.Series() {
		out = append(out, s.Points...)
	}
	return out
}

// LoadCSV reads "symbol,date,close,volume[,market_cap]" rows with a header line
func LoadCSV(r io.Reader) (*MemoryStore, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	store := NewMemoryStore()
	for i, rec := range records {
		if i == 0 && strings.EqualFold(rec[0], "symbol") {
			continue // header
		}
		p, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", i+1, err)
		}
		store.Add(p)
	}
	return store, nil
}

func parseRecord(rec []string) (contracts.PricePoint, error) {
	if len(rec) < 4 {
		return contracts.PricePoint{}, fmt.Errorf("expected at least 4 fields, got %d", len(rec))
	}

	ts, err := time.Parse("2006-01-02", rec[1])
	if err != nil {
		return contracts.PricePoint{}, fmt.Errorf("parse date: %w", err)
	}
	closePrice, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return contracts.PricePoint{}, fmt.Errorf("parse close: %w", err)
	}
	volume, err := strconv.ParseInt(rec[3], 10, 64)
	if err != nil {
		return contracts.PricePoint{}, fmt.Errorf("parse volume: %w", err)
	}

	p := contracts.PricePoint{
		Symbol:    strings.TrimSpace(rec[0]),
		Timestamp: ts,
		Close:     closePrice,
		Volume:    volume,
	}
	if len(rec) > 4 && rec[4] != "" {
		mc, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return contracts.PricePoint{}, fmt.Errorf("parse market cap: %w", err)
		}
		p.MarketCap = &mc
	}
	return p, nil
}
