package edgar

import (
	"bytes"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Relationship is the reporting owner's relationship to the issuer
type Relationship string

const (
	RelationshipDirector        Relationship = "DIRECTOR"
	RelationshipOfficer         Relationship = "OFFICER"
	RelationshipTenPercentOwner Relationship = "10% OWNER"
	RelationshipOther           Relationship = "OTHER"
)

// Form4Codes are the form codes handled by ParseForm4
var Form4Codes = []string{"4"}

// TransactionRecord is the first non-derivative transaction reported on a
// Form 4. A nil field was absent from the document; an empty string was
// present but blank.
type TransactionRecord struct {
	ReportingOwner                  *string      `json:"reporting_owner"`
	ReportingOwnerTitle             *string      `json:"reporting_owner_title"`
	ReportingOwnerRelationship      Relationship `json:"reporting_owner_relationship"`
	SecurityTitle                   *string      `json:"security_title"`
	TransactionDate                 *string      `json:"transaction_date"`
	TransactionCode                 *string      `json:"transaction_code"`
	TransactionShares               *string      `json:"transaction_shares"`
	TransactionPrice                *string      `json:"transaction_price"`
	SharesOwnedFollowingTransaction *string      `json:"shares_owned_following_transaction"`
}

// ParseForm4 parses a Form 4 ownership document. Missing elements leave the
// corresponding field nil; only unreadable XML is an error.
func ParseForm4(data []byte) (*TransactionRecord, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(unwrapXML(data)))
	if err != nil {
		return nil, &ParseError{What: "form 4 document", Err: err}
	}

	root := xmlquery.FindOne(doc, "/ownershipDocument")
	if root == nil {
		return nil, &ParseError{What: "form 4 document: missing ownershipDocument"}
	}

	record := &TransactionRecord{
		ReportingOwnerRelationship: RelationshipOther,
	}

	if owner := xmlquery.FindOne(root, "reportingOwner"); owner != nil {
		record.ReportingOwner = text(owner, "reportingOwnerId/rptOwnerName")
		record.ReportingOwnerTitle = text(owner, "reportingOwnerRelationship/officerTitle")
		record.ReportingOwnerRelationship = relationship(owner)
	}

	if tx := xmlquery.FindOne(root, "nonDerivativeTable/nonDerivativeTransaction"); tx != nil {
		record.SecurityTitle = text(tx, "securityTitle/value")
		record.TransactionDate = text(tx, "transactionDate/value")
		record.TransactionCode = text(tx, "transactionCoding/transactionCode")
		record.TransactionShares = text(tx, "transactionAmounts/transactionShares/value")
		record.TransactionPrice = text(tx, "transactionAmounts/transactionPricePerShare/value")
		record.SharesOwnedFollowingTransaction = text(tx, "postTransactionAmounts/sharesOwnedFollowingTransaction/value")
	}

	return record, nil
}

func relationship(owner *xmlquery.Node) Relationship {
	flags := []struct {
		expr string
		rel  Relationship
	}{
		{"reportingOwnerRelationship/isDirector", RelationshipDirector},
		{"reportingOwnerRelationship/isOfficer", RelationshipOfficer},
		{"reportingOwnerRelationship/isTenPercentOwner", RelationshipTenPercentOwner},
	}
	for _, flag := range flags {
		if v := text(owner, flag.expr); v != nil && *v == "1" {
			return flag.rel
		}
	}
	return RelationshipOther
}

func text(top *xmlquery.Node, expr string) *string {
	node := xmlquery.FindOne(top, expr)
	if node == nil {
		return nil
	}
	v := strings.TrimSpace(node.InnerText())
	return &v
}

// unwrapXML extracts the XML payload of a full submission text file
func unwrapXML(data []byte) []byte {
	_, rest, ok := bytes.Cut(data, []byte("<XML>"))
	if !ok {
		return data
	}
	inner, _, ok := bytes.Cut(rest, []byte("</XML>"))
	if !ok {
		return data
	}
	return bytes.TrimSpace(inner)
}
