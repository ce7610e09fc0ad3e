package edgar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeDoeForm4 = `<ownershipDocument>
  <reportingOwner>
    <reportingOwnerId><rptOwnerName>Jane Doe</rptOwnerName></reportingOwnerId>
    <reportingOwnerRelationship><isDirector>1</isDirector></reportingOwnerRelationship>
  </reportingOwner>
  <nonDerivativeTable>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionAmounts><transactionShares><value>100</value></transactionShares></transactionAmounts>
    </nonDerivativeTransaction>
  </nonDerivativeTable>
</ownershipDocument>`

const (
	doc1Path = "/Archives/edgar/data/320193/000032019324000010/doc1.xml"
	doc2Path = "/Archives/edgar/data/320193/000032019324000012/doc2.xml"
)

func appleFake(t *testing.T) *fakeEDGAR {
	fake := newFakeEDGAR(t)
	fake.serve(tickersPath, "aapl\t320193\n")
	fake.serve(appleSubmissionsPath, `{"name": "Apple Inc.", "filings": {"recent": {
		"form": ["4"],
		"filingDate": ["2024-04-30"],
		"accessionNumber": ["0000320193-24-000010"],
		"primaryDocument": ["doc1.xml"]}}}`)
	fake.serve(doc1Path, janeDoeForm4)
	return fake
}

func TestFilerForm4EndToEnd(t *testing.T) {
	fake := appleFake(t)
	ctx := context.Background()

	filer, err := fake.client().NewFiler(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "320193", filer.CIK())
	assert.Equal(t, "0000320193", filer.PaddedCIK())
	assert.Equal(t, "AAPL", filer.Ticker())

	records, err := filer.Form4(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, &TransactionRecord{
		ReportingOwner:             strptr("Jane Doe"),
		ReportingOwnerRelationship: RelationshipDirector,
		SecurityTitle:              strptr("Common Stock"),
		TransactionShares:          strptr("100"),
	}, records[0])
	assert.Equal(t, "Apple Inc.", filer.Name())
	assert.Equal(t, 1, fake.count(doc1Path))
}

func TestFilerLoadsSubmissionsOnce(t *testing.T) {
	fake := appleFake(t)
	ctx := context.Background()

	filer, err := fake.client().NewFiler(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "", filer.Name())
	assert.Equal(t, 0, fake.count(appleSubmissionsPath))

	_, err = filer.Form4(ctx, 1)
	require.NoError(t, err)
	urls, err := filer.Form4URLs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{fake.server.URL + doc1Path}, urls)
	assert.Equal(t, 1, fake.count(appleSubmissionsPath))
}

func TestNewFilerUnknownTicker(t *testing.T) {
	fake := appleFake(t)

	filer, err := fake.client().NewFiler(context.Background(), "MSFT")
	assert.Nil(t, filer)
	var retrievalErr *RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.Equal(t, "ticker MSFT", retrievalErr.Context)
	var resErr *ResolutionError
	assert.True(t, errors.As(err, &resErr))
	assert.Equal(t, 1, fake.total())
}

func TestFilerForm4DocumentFailure(t *testing.T) {
	fake := appleFake(t)
	fake.serve(appleSubmissionsPath, `{"filings": {"recent": {
		"form": ["4", "4"],
		"filingDate": ["2024-05-03", "2024-04-30"],
		"accessionNumber": ["0000320193-24-000012", "0000320193-24-000010"],
		"primaryDocument": ["xslF345X05/doc2.xml", "doc1.xml"]}}}`)
	ctx := context.Background()

	filer, err := fake.client().NewFiler(ctx, "AAPL")
	require.NoError(t, err)

	_, err = filer.Form4(ctx, 0)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fake.server.URL+doc2Path, fetchErr.URL)
	assert.Equal(t, 0, fake.count(doc1Path))

	filer.Policy = SkipFailed
	records, err := filer.Form4(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, strptr("Jane Doe"), records[0].ReportingOwner)
}

func TestFilerSubmissionsFailure(t *testing.T) {
	fake := appleFake(t)
	fake.fail(appleSubmissionsPath, 500)
	ctx := context.Background()

	filer, err := fake.client().NewFiler(ctx, "AAPL")
	require.NoError(t, err)

	_, err = filer.Form4(ctx, 0)
	var retrievalErr *RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.ErrorContains(t, err, "retrieval failed for ticker AAPL")
	var fetchErr *FetchError
	assert.True(t, errors.As(err, &fetchErr))
}
