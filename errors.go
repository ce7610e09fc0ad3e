package edgar

import (
	"errors"
	"fmt"
)

// ErrMisalignedFeed is wrapped by a ParseError when the parallel arrays of the
// submissions feed differ in length.
var ErrMisalignedFeed = errors.New("filing arrays have unequal lengths")

// ResolutionError is returned when a ticker is not present in the reference list
type ResolutionError struct {
	Ticker string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("ticker %q not found", e.Ticker)
}

// FetchError is returned when EDGAR answers with a non-success status code
type FetchError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, url: %s, body: %s", e.StatusCode, e.URL, e.Body)
}

// ParseError is returned when a response lacks the structure we expect
type ParseError struct {
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "parsing " + e.What
	}
	return fmt.Sprintf("parsing %s: %v", e.What, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RetrievalError is the coarse error handed to callers of the fetcher and the
// filer facade. The underlying cause stays reachable through errors.As.
type RetrievalError struct {
	Context string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for %s: %v", e.Context, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
