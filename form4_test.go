package edgar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

const fullForm4 = `<?xml version="1.0"?>
<ownershipDocument>
  <schemaVersion>X0508</schemaVersion>
  <documentType>4</documentType>
  <issuer>
    <issuerCik>0000320193</issuerCik>
    <issuerName>Apple Inc.</issuerName>
    <issuerTradingSymbol>AAPL</issuerTradingSymbol>
  </issuer>
  <reportingOwner>
    <reportingOwnerId>
      <rptOwnerCik>0001214156</rptOwnerCik>
      <rptOwnerName>Jane Doe</rptOwnerName>
    </reportingOwnerId>
    <reportingOwnerRelationship>
      <isDirector>0</isDirector>
      <isOfficer>1</isOfficer>
      <isTenPercentOwner>0</isTenPercentOwner>
      <officerTitle>Chief Executive Officer</officerTitle>
    </reportingOwnerRelationship>
  </reportingOwner>
  <nonDerivativeTable>
    <nonDerivativeTransaction>
      <securityTitle><value>Common Stock</value></securityTitle>
      <transactionDate><value>2024-04-01</value></transactionDate>
      <transactionCoding>
        <transactionFormType>4</transactionFormType>
        <transactionCode>S</transactionCode>
      </transactionCoding>
      <transactionAmounts>
        <transactionShares><value>100</value></transactionShares>
        <transactionPricePerShare><value>170.03</value><footnoteId id="F1"/></transactionPricePerShare>
        <transactionAcquiredDisposedCode><value>D</value></transactionAcquiredDisposedCode>
      </transactionAmounts>
      <postTransactionAmounts>
        <sharesOwnedFollowingTransaction><value>3280418</value></sharesOwnedFollowingTransaction>
      </postTransactionAmounts>
    </nonDerivativeTransaction>
    <nonDerivativeTransaction>
      <securityTitle><value>Second Row</value></securityTitle>
    </nonDerivativeTransaction>
  </nonDerivativeTable>
</ownershipDocument>`

func TestParseForm4(t *testing.T) {
	record, err := ParseForm4([]byte(fullForm4))
	require.NoError(t, err)
	assert.Equal(t, &TransactionRecord{
		ReportingOwner:                  strptr("Jane Doe"),
		ReportingOwnerTitle:             strptr("Chief Executive Officer"),
		ReportingOwnerRelationship:      RelationshipOfficer,
		SecurityTitle:                   strptr("Common Stock"),
		TransactionDate:                 strptr("2024-04-01"),
		TransactionCode:                 strptr("S"),
		TransactionShares:               strptr("100"),
		TransactionPrice:                strptr("170.03"),
		SharesOwnedFollowingTransaction: strptr("3280418"),
	}, record)
}

func TestParseForm4MissingPostTransactionShares(t *testing.T) {
	doc := strings.Replace(fullForm4,
		"<sharesOwnedFollowingTransaction><value>3280418</value></sharesOwnedFollowingTransaction>", "", 1)

	record, err := ParseForm4([]byte(doc))
	require.NoError(t, err)
	assert.Nil(t, record.SharesOwnedFollowingTransaction)
	assert.Equal(t, strptr("Jane Doe"), record.ReportingOwner)
	assert.Equal(t, strptr("Common Stock"), record.SecurityTitle)
	assert.Equal(t, strptr("100"), record.TransactionShares)
	assert.Equal(t, strptr("170.03"), record.TransactionPrice)
}

func TestParseForm4BlankIsNotMissing(t *testing.T) {
	doc := strings.Replace(fullForm4, "<value>170.03</value>", "<value></value>", 1)

	record, err := ParseForm4([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, record.TransactionPrice)
	assert.Equal(t, "", *record.TransactionPrice)
}

func relationshipDoc(director, officer, tenPercent string) string {
	var b strings.Builder
	b.WriteString("<ownershipDocument><reportingOwner><reportingOwnerId><rptOwnerName>X</rptOwnerName></reportingOwnerId><reportingOwnerRelationship>")
	if director != "" {
		b.WriteString("<isDirector>" + director + "</isDirector>")
	}
	if officer != "" {
		b.WriteString("<isOfficer>" + officer + "</isOfficer>")
	}
	if tenPercent != "" {
		b.WriteString("<isTenPercentOwner>" + tenPercent + "</isTenPercentOwner>")
	}
	b.WriteString("</reportingOwnerRelationship></reportingOwner></ownershipDocument>")
	return b.String()
}

func TestParseForm4RelationshipPriority(t *testing.T) {
	tests := []struct {
		name                          string
		director, officer, tenPercent string
		want                          Relationship
	}{
		{"director and officer", "1", "1", "", RelationshipDirector},
		{"all flags", "1", "1", "1", RelationshipDirector},
		{"officer", "0", "1", "1", RelationshipOfficer},
		{"ten percent owner", "0", "0", "1", RelationshipTenPercentOwner},
		{"no flags set", "0", "0", "0", RelationshipOther},
		{"no flags present", "", "", "", RelationshipOther},
		{"boolean words are not the marker", "true", "true", "", RelationshipOther},
		{"whitespace around marker", " 1 ", "", "", RelationshipDirector},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record, err := ParseForm4([]byte(relationshipDoc(tc.director, tc.officer, tc.tenPercent)))
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.ReportingOwnerRelationship)
		})
	}
}

func TestParseForm4WithoutNonDerivativeTable(t *testing.T) {
	record, err := ParseForm4([]byte(relationshipDoc("1", "", "")))
	require.NoError(t, err)
	assert.Equal(t, strptr("X"), record.ReportingOwner)
	assert.Nil(t, record.ReportingOwnerTitle)
	assert.Equal(t, RelationshipDirector, record.ReportingOwnerRelationship)
	assert.Nil(t, record.SecurityTitle)
	assert.Nil(t, record.TransactionDate)
	assert.Nil(t, record.TransactionCode)
	assert.Nil(t, record.TransactionShares)
	assert.Nil(t, record.TransactionPrice)
	assert.Nil(t, record.SharesOwnedFollowingTransaction)
}

func TestParseForm4WithoutReportingOwner(t *testing.T) {
	record, err := ParseForm4([]byte("<ownershipDocument/>"))
	require.NoError(t, err)
	assert.Nil(t, record.ReportingOwner)
	assert.Equal(t, RelationshipOther, record.ReportingOwnerRelationship)
}

func TestParseForm4FullSubmissionText(t *testing.T) {
	doc := "<SEC-DOCUMENT>0000320193-24-000010.txt\n<DOCUMENT>\n<TYPE>4\n<TEXT>\n<XML>\n" +
		fullForm4 + "\n</XML>\n</TEXT>\n</DOCUMENT>\n</SEC-DOCUMENT>"

	record, err := ParseForm4([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, strptr("Jane Doe"), record.ReportingOwner)
	assert.Equal(t, strptr("3280418"), record.SharesOwnedFollowingTransaction)
}

func TestParseForm4Malformed(t *testing.T) {
	for _, doc := range []string{
		"<ownershipDocument><reportingOwner></ownershipDocument>",
		"<ownershipDocument><reportingOwner>",
		"<html><body>Request Rate Threshold Exceeded</body></html>",
		"plain text",
	} {
		_, err := ParseForm4([]byte(doc))
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "%q: %v", doc, err)
	}
}
