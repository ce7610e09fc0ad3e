package edgar

import (
	"context"
	"sync"
)

// Filer is a per-ticker session: a resolved CIK and the filer's submission
// history, loaded on first use.
type Filer struct {
	client *Client
	ticker string
	cik    string

	// Fetcher options applied to every form query of this session.
	Policy      FailurePolicy
	Concurrency int

	mu      sync.Mutex
	history *SubmissionHistory
}

// NewFiler resolves ticker and returns a session for it. An unknown ticker
// aborts construction.
func (c *Client) NewFiler(ctx context.Context, ticker string) (*Filer, error) {
	cik, err := c.ResolveCIK(ctx, ticker)
	if err != nil {
		return nil, &RetrievalError{Context: "ticker " + ticker, Err: err}
	}
	return &Filer{client: c, ticker: ticker, cik: cik}, nil
}

// Ticker returns the ticker the session was created for
func (f *Filer) Ticker() string { return f.ticker }

// CIK returns the filer's CIK as found in the reference list
func (f *Filer) CIK() string { return f.cik }

// PaddedCIK returns the ten digit CIK
func (f *Filer) PaddedCIK() string { return PaddedCIK(f.cik) }

// Name returns the entity name from the submissions feed, or "" before the
// feed was loaded.
func (f *Filer) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.history == nil {
		return ""
	}
	return f.history.Name
}

// Submissions returns the filer's recent filings, fetching them once
func (f *Filer) Submissions(ctx context.Context) ([]Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.history != nil {
		return f.history.Submissions, nil
	}
	history, err := f.client.Submissions(ctx, f.cik)
	if err != nil {
		return nil, &RetrievalError{Context: "ticker " + f.ticker, Err: err}
	}
	f.history = history
	return history.Submissions, nil
}

// Form4Fetcher returns the fetcher used for Form 4 queries
func (f *Filer) Form4Fetcher() *FormFetcher[*TransactionRecord] {
	return &FormFetcher[*TransactionRecord]{
		Source:      f.client,
		Locator:     ArchiveLocator{BaseURL: f.client.ArchivesBaseURL()},
		FormCodes:   Form4Codes,
		Parse:       ParseForm4,
		Policy:      f.Policy,
		Concurrency: f.Concurrency,
		Logger:      f.client.logger,
	}
}

// Form4 returns the parsed transactions of the most recent Form 4 filings.
// A limit of zero or less returns every Form 4 in the recent feed.
func (f *Filer) Form4(ctx context.Context, limit int) ([]*TransactionRecord, error) {
	submissions, err := f.Submissions(ctx)
	if err != nil {
		return nil, err
	}
	return f.Form4Fetcher().Fetch(ctx, submissions, f.cik, limit)
}

// Form4URLs returns the document URLs of the most recent Form 4 filings
func (f *Filer) Form4URLs(ctx context.Context, limit int) ([]string, error) {
	submissions, err := f.Submissions(ctx)
	if err != nil {
		return nil, err
	}
	return f.Form4Fetcher().URLs(submissions, f.cik, limit), nil
}
