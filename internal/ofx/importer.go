// Package ofx ingests OFX/QFX bank statements into a conversation's
// ledger, so history that predates the bot can be queried like any other
// record. Only debits become expense records; the statement memo is
// scanned for a category mention and falls back to Diversos.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/granabot/granabot/internal/common"
	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/parse"
)

// Importer converts OFX statements to expense records.
type Importer struct {
	conversationID string
	payer          string
}

// NewImporter creates an importer writing into the given conversation on
// behalf of the given payer.
func NewImporter(conversationID, payer string) (*Importer, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}
	if payer == "" {
		payer = model.PayerUnknown
	}
	return &Importer{conversationID: conversationID, payer: payer}, nil
}

// preprocess fixes common formatting issues in OFX files before parsing.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	severityRe := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRe.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing angle bracket.
	tagFixRe := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRe.ReplaceAllString(content, "$1>")

	return content
}

// Parse reads an OFX/QFX stream and returns the debit transactions as
// ledger records, newest data untouched — timestamps come from the
// statement.
func (im *Importer) Parse(reader io.Reader) ([]model.Record, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, common.NewUserError("o arquivo OFX não pôde ser lido; confira se o extrato foi exportado no formato OFX/QFX", err)
	}

	var records []model.Record
	var skipped int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			if record, ok := im.convert(tx); ok {
				records = append(records, record)
			} else {
				skipped++
			}
		}
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, tx := range stmt.BankTranList.Transactions {
			if record, ok := im.convert(tx); ok {
				records = append(records, record)
			} else {
				skipped++
			}
		}
	}

	slog.Info("Parsed OFX statement",
		"records", len(records),
		"skipped_non_debits", skipped)
	return records, nil
}

// convert maps one OFX transaction to an expense record. Credits (money
// in) are skipped: the ledger tracks spending.
func (im *Importer) convert(tx ofxgo.Transaction) (model.Record, bool) {
	amount, _ := tx.TrnAmt.Float64()
	if amount >= 0 {
		return model.Record{}, false
	}

	memo := strings.TrimSpace(string(tx.Name))
	if m := strings.TrimSpace(string(tx.Memo)); m != "" {
		memo = strings.TrimSpace(memo + " " + m)
	}

	return model.Record{
		ConversationID: im.conversationID,
		Timestamp:      tx.DtPosted.Time,
		Amount:         -amount,
		Category:       CategoryFor(memo),
		Payer:          im.payer,
		OriginalText:   memo,
	}, true
}

// CategoryFor scans a statement memo for a category mention.
func CategoryFor(memo string) string {
	if category, ok := parse.FindCategory(memo); ok {
		return category
	}
	return model.CategoryMisc
}

// Window reports the statement's time span, for import summaries.
func Window(records []model.Record) (time.Time, time.Time) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return first, last
}
