// Package intake turns natural-language transaction sentences into ledger records.
package intake

import (
	"regexp"
	"strconv"
	"time"

	"finassist/internal/core"
)

// transactionPattern is the intake grammar:
//
//	User <digits> spent <number> ETB for <description> via <payment_method> today
//
// Literals are case-sensitive and the match is a leftmost search, so surrounding
// text ("please note: User 7 spent ...") is tolerated. The payment method takes any
// Unicode letter or digit, but the user ID and amount take ASCII digits only: they
// feed strconv and decimal parsing, which reject other digit scripts. Ethiopic
// numerals are not decimal digits and never matched either way.
var transactionPattern = regexp.MustCompile(`User ([0-9]+) spent ([0-9]+\.?[0-9]*) ETB for (.+?) via ([\p{L}\p{N}_]+) today`)

// Parser extracts candidate transactions from free text. It never touches storage.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser that stamps candidates with now's calendar date.
// A nil now uses the process-local wall clock.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse matches text against the intake grammar. On mismatch it returns a
// core.ErrParse failure carrying the expected format.
func (p *Parser) Parse(text string) (core.Transaction, error) {
	m := transactionPattern.FindStringSubmatch(text)
	if m == nil {
		return core.Transaction{}, core.Fail(core.ErrParse, core.MsgInvalidFormat, nil)
	}

	userID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return core.Transaction{}, core.Fail(core.ErrParse, core.MsgInvalidFormat, err)
	}
	amount, err := core.ParseMoney(m[2])
	if err != nil {
		return core.Transaction{}, core.Fail(core.ErrParse, core.MsgInvalidFormat, err)
	}

	return core.Transaction{
		UserID:        userID,
		Date:          core.DateOf(p.now()),
		Amount:        amount,
		Description:   m[3],
		PaymentMethod: m[4],
	}, nil
}
