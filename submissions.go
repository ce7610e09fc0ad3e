package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Submission represents a single filing from a filer's submission history
type Submission struct {
	Form            string `json:"form"`
	FilingDate      string `json:"filingDate"`
	AccessionNumber string `json:"accessionNumber"`
	PrimaryDocument string `json:"primaryDocument"`
}

// Filed parses the filing date
func (s Submission) Filed() (time.Time, error) {
	return time.Parse("2006-01-02", s.FilingDate)
}

// SubmissionHistory is the normalized recent filings feed of a filer
type SubmissionHistory struct {
	CIK         string       `json:"cik"`
	Name        string       `json:"name"`
	Tickers     []string     `json:"tickers"`
	Submissions []Submission `json:"submissions"`
}

type submissionsResponse struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings *struct {
		Recent *filingsData `json:"recent"`
	} `json:"filings"`
}

type filingsData struct {
	Forms            *[]string `json:"form"`
	FilingDates      *[]string `json:"filingDate"`
	AccessionNumbers *[]string `json:"accessionNumber"`
	PrimaryDocs      *[]string `json:"primaryDocument"`
}

// PaddedCIK left-pads a CIK with zeros to ten digits
func PaddedCIK(cik string) string {
	return fmt.Sprintf("%010s", strings.TrimLeft(cik, "0"))
}

// SubmissionsURL returns the location of the submissions feed for a CIK
func (c *Client) SubmissionsURL(cik string) string {
	return fmt.Sprintf("%s/CIK%s.json", c.submissionsURL, PaddedCIK(cik))
}

// Submissions retrieves the recent filings of a filer, most recent first
func (c *Client) Submissions(ctx context.Context, cik string) (*SubmissionHistory, error) {
	data, err := c.FileContents(ctx, c.SubmissionsURL(cik))
	if err != nil {
		return nil, err
	}

	var resp submissionsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &ParseError{What: "submissions", Err: err}
	}
	if resp.Filings == nil {
		return nil, &ParseError{What: `submissions: missing "filings"`}
	}
	if resp.Filings.Recent == nil {
		return nil, &ParseError{What: `submissions: missing "filings.recent"`}
	}

	submissions, err := parseFilings(resp.Filings.Recent)
	if err != nil {
		return nil, err
	}

	return &SubmissionHistory{
		CIK:         resp.CIK,
		Name:        resp.Name,
		Tickers:     resp.Tickers,
		Submissions: submissions,
	}, nil
}

func parseFilings(recent *filingsData) ([]Submission, error) {
	columns := []struct {
		key    string
		values *[]string
	}{
		{"form", recent.Forms},
		{"filingDate", recent.FilingDates},
		{"accessionNumber", recent.AccessionNumbers},
		{"primaryDocument", recent.PrimaryDocs},
	}
	for _, col := range columns {
		if col.values == nil {
			return nil, &ParseError{What: fmt.Sprintf("submissions: missing \"filings.recent.%s\"", col.key)}
		}
	}

	filingCount := len(*recent.Forms)
	for _, col := range columns[1:] {
		if len(*col.values) != filingCount {
			return nil, &ParseError{
				What: fmt.Sprintf("submissions: %s has %d entries, form has %d", col.key, len(*col.values), filingCount),
				Err:  ErrMisalignedFeed,
			}
		}
	}

	submissions := make([]Submission, 0, filingCount)
	for i := 0; i < filingCount; i++ {
		submissions = append(submissions, Submission{
			Form:            (*recent.Forms)[i],
			FilingDate:      (*recent.FilingDates)[i],
			AccessionNumber: (*recent.AccessionNumbers)[i],
			PrimaryDocument: (*recent.PrimaryDocs)[i],
		})
	}
	return submissions, nil
}
