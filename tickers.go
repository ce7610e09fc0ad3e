package edgar

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// defaultTickerIndex is shared by every Client that does not bring its own,
// so the reference list is fetched at most once per process.
var defaultTickerIndex = &TickerIndex{}

// TickerSource loads the full ticker to CIK table
type TickerSource interface {
	TickerTable(ctx context.Context) (map[string]string, error)
}

// TickerIndex caches the ticker to CIK table. The table is loaded on first
// use and never refreshed. A failed load is not cached.
type TickerIndex struct {
	group singleflight.Group
	table atomic.Pointer[map[string]string]
}

// NewTickerIndex returns an index pre-populated with table. Keys are
// lower-cased.
func NewTickerIndex(table map[string]string) *TickerIndex {
	normalized := make(map[string]string, len(table))
	for ticker, cik := range table {
		normalized[strings.ToLower(ticker)] = cik
	}
	index := &TickerIndex{}
	index.table.Store(&normalized)
	return index
}

// Loaded reports whether the table is available without a fetch
func (x *TickerIndex) Loaded() bool {
	return x.table.Load() != nil
}

// Resolve returns the CIK for ticker, loading the table from src on first use.
func (x *TickerIndex) Resolve(ctx context.Context, src TickerSource, ticker string) (string, error) {
	table, err := x.load(ctx, src)
	if err != nil {
		return "", err
	}
	cik, ok := table[strings.ToLower(ticker)]
	if !ok {
		return "", &ResolutionError{Ticker: ticker}
	}
	return cik, nil
}

func (x *TickerIndex) load(ctx context.Context, src TickerSource) (map[string]string, error) {
	if table := x.table.Load(); table != nil {
		return *table, nil
	}
	// the flight outlives any one caller, so it must not inherit a caller's
	// cancellation; each caller still stops waiting when its own ctx is done
	ch := x.group.DoChan("tickers", func() (any, error) {
		// a flight that finished before we joined may already have stored it
		if table := x.table.Load(); table != nil {
			return *table, nil
		}
		table, err := src.TickerTable(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		x.table.Store(&table)
		return table, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]string), nil
	}
}

// ResolveCIK returns the CIK for a ticker symbol using the client's ticker index
func (c *Client) ResolveCIK(ctx context.Context, ticker string) (string, error) {
	return c.tickers.Resolve(ctx, c, ticker)
}

// TickerTable fetches and parses the ticker reference list
func (c *Client) TickerTable(ctx context.Context) (map[string]string, error) {
	data, err := c.FileContents(ctx, c.tickersURL)
	if err != nil {
		return nil, err
	}
	return parseTickerTable(string(data))
}

func parseTickerTable(data string) (map[string]string, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, &ParseError{What: "ticker list: empty body"}
	}

	lines := strings.Split(data, "\n")
	table := make(map[string]string, len(lines))
	for i, line := range lines {
		ticker, cik, ok := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if !ok {
			return nil, &ParseError{What: fmt.Sprintf("ticker list: line %d has no tab", i+1)}
		}
		table[strings.ToLower(ticker)] = strings.TrimSpace(cik)
	}
	return table, nil
}
