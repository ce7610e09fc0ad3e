package edgar

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// DocumentLocator builds the URL of a filing's primary document
type DocumentLocator interface {
	DocumentURL(cik, accessionNumber, primaryDocument string) string
}

// DocumentLocatorFunc adapts a function to a DocumentLocator
type DocumentLocatorFunc func(cik, accessionNumber, primaryDocument string) string

func (f DocumentLocatorFunc) DocumentURL(cik, accessionNumber, primaryDocument string) string {
	return f(cik, accessionNumber, primaryDocument)
}

// ArchiveLocator resolves documents inside the EDGAR archive. The path prefix
// of the primary document is dropped, which turns the rendered
// "xslF345X05/form4.xml" reference into the raw XML file.
type ArchiveLocator struct {
	BaseURL string
}

func (l ArchiveLocator) DocumentURL(cik, accessionNumber, primaryDocument string) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		strings.TrimSuffix(l.BaseURL, "/"),
		cik,
		strings.ReplaceAll(accessionNumber, "-", ""),
		path.Base(primaryDocument),
	)
}

// FailurePolicy decides what happens when one document cannot be retrieved
type FailurePolicy int

const (
	// FailFast aborts the whole fetch on the first failed document.
	FailFast FailurePolicy = iota
	// SkipFailed logs the failed document and keeps scanning.
	SkipFailed
)

// DocumentSource retrieves raw document bodies
type DocumentSource interface {
	FileContents(ctx context.Context, url string) ([]byte, error)
}

// FormFetcher selects filings by form code and parses their documents into T
type FormFetcher[T any] struct {
	Source      DocumentSource
	Locator     DocumentLocator
	FormCodes   []string
	Parse       func([]byte) (T, error)
	Policy      FailurePolicy
	Concurrency int // documents fetched at once under FailFast, defaults to 1
	Logger      *slog.Logger
}

// Matches returns the submissions whose form code the fetcher accepts,
// in scan order, capped at limit when limit > 0.
func (f *FormFetcher[T]) Matches(submissions []Submission, limit int) []Submission {
	codes := lo.SliceToMap(f.FormCodes, func(code string) (string, struct{}) {
		return code, struct{}{}
	})
	matches := lo.Filter(submissions, func(s Submission, _ int) bool {
		_, ok := codes[s.Form]
		return ok
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// URLs returns the document URLs of the matching submissions
func (f *FormFetcher[T]) URLs(submissions []Submission, cik string, limit int) []string {
	return lo.Map(f.Matches(submissions, limit), func(s Submission, _ int) string {
		return f.Locator.DocumentURL(cik, s.AccessionNumber, s.PrimaryDocument)
	})
}

// Fetch retrieves and parses the documents of matching submissions in scan
// order. A limit of zero or less scans every submission.
func (f *FormFetcher[T]) Fetch(ctx context.Context, submissions []Submission, cik string, limit int) ([]T, error) {
	if f.Policy == SkipFailed {
		return f.fetchSkipping(ctx, submissions, cik, limit)
	}

	matches := f.Matches(submissions, limit)
	output := make([]T, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Concurrency, 1))
	for i, s := range matches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := f.fetchOne(gctx, cik, s)
			if err != nil {
				return err
			}
			output[i] = record
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, &RetrievalError{Context: "CIK " + cik, Err: err}
	}
	return output, nil
}

func (f *FormFetcher[T]) fetchSkipping(ctx context.Context, submissions []Submission, cik string, limit int) ([]T, error) {
	output := make([]T, 0)
	for _, s := range f.Matches(submissions, 0) {
		if limit > 0 && len(output) >= limit {
			break
		}
		record, err := f.fetchOne(ctx, cik, s)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &RetrievalError{Context: "CIK " + cik, Err: ctx.Err()}
			}
			f.logger().Warn("skipping filing", "cik", cik, "accession", s.AccessionNumber, "error", err)
			continue
		}
		output = append(output, record)
	}
	return output, nil
}

func (f *FormFetcher[T]) fetchOne(ctx context.Context, cik string, s Submission) (T, error) {
	var zero T
	url := f.Locator.DocumentURL(cik, s.AccessionNumber, s.PrimaryDocument)
	data, err := f.Source.FileContents(ctx, url)
	if err != nil {
		return zero, fmt.Errorf("fetching %s: %w", s.AccessionNumber, err)
	}
	record, err := f.Parse(data)
	if err != nil {
		return zero, fmt.Errorf("parsing %s: %w", s.AccessionNumber, err)
	}
	return record, nil
}

func (f *FormFetcher[T]) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
