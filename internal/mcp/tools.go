package mcp

import (
	"context"
	"fmt"
	"regexp"

	edgar "github.com/joeychilson/edgar-mcp"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}([.-][A-Z0-9]{1,3})?$`)

// FilingService answers the tool queries
type FilingService interface {
	Form4(ctx context.Context, ticker string, limit int) ([]*edgar.TransactionRecord, error)
	Form4URLs(ctx context.Context, ticker string, limit int) ([]string, error)
}

// EdgarService answers tool queries with a fresh filer session per call
type EdgarService struct {
	Client      *edgar.Client
	Policy      edgar.FailurePolicy
	Concurrency int
}

func (s *EdgarService) filer(ctx context.Context, ticker string) (*edgar.Filer, error) {
	filer, err := s.Client.NewFiler(ctx, ticker)
	if err != nil {
		return nil, err
	}
	filer.Policy = s.Policy
	filer.Concurrency = s.Concurrency
	return filer, nil
}

func (s *EdgarService) Form4(ctx context.Context, ticker string, limit int) ([]*edgar.TransactionRecord, error) {
	filer, err := s.filer(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return filer.Form4(ctx, limit)
}

func (s *EdgarService) Form4URLs(ctx context.Context, ticker string, limit int) ([]string, error) {
	filer, err := s.filer(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return filer.Form4URLs(ctx, limit)
}

// filingError is a failed filing lookup for a ticker
type filingError struct {
	ticker string
	err    error
}

func (e *filingError) Error() string {
	return fmt.Sprintf("fetching form 4 filings for %s: %v", e.ticker, e.err)
}

func (e *filingError) Unwrap() error { return e.err }

// ToolHandler handles MCP tool calls
type ToolHandler struct {
	service      FilingService
	defaultLimit int
}

// NewToolHandler creates a new tool handler
func NewToolHandler(service FilingService, defaultLimit int) *ToolHandler {
	return &ToolHandler{service: service, defaultLimit: defaultLimit}
}

// Handle dispatches a tool call to the appropriate handler
func (h *ToolHandler) Handle(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "GetForm4ByTicker":
		ticker, limit, err := h.tickerArgs(args)
		if err != nil {
			return nil, err
		}
		records, err := h.service.Form4(ctx, ticker, limit)
		if err != nil {
			return nil, &filingError{ticker: ticker, err: err}
		}
		return records, nil
	case "GetForm4URLsByTicker":
		ticker, limit, err := h.tickerArgs(args)
		if err != nil {
			return nil, err
		}
		urls, err := h.service.Form4URLs(ctx, ticker, limit)
		if err != nil {
			return nil, &filingError{ticker: ticker, err: err}
		}
		return urls, nil
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

func (h *ToolHandler) tickerArgs(args map[string]any) (string, int, error) {
	ticker, _ := args["ticker"].(string)
	if ticker == "" {
		return "", 0, fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(ticker) {
		return "", 0, fmt.Errorf("ticker %q does not match %s", ticker, tickerPattern)
	}

	limit := h.defaultLimit
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}
	return ticker, limit, nil
}

func toolDefinitions() []Tool {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ticker": map[string]any{
				"type":        "string",
				"pattern":     tickerPattern.String(),
				"description": "Stock ticker symbol, e.g. AAPL or BRK-B",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of filings to return, 0 for every filing in the recent feed",
			},
		},
		"required": []string{"ticker"},
	}
	return []Tool{
		{
			Name:        "GetForm4ByTicker",
			Description: "Get the insider transactions reported on the latest Form 4 filings for a ticker symbol",
			InputSchema: schema,
		},
		{
			Name:        "GetForm4URLsByTicker",
			Description: "Get a list of URLs for the latest Form 4 filings for a ticker symbol",
			InputSchema: schema,
		},
	}
}
