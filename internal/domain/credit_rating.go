package domain

import "time"

// CreditRatingAssertion is the oracle's countersigned statement about a
// customer's rating. It travels inside the IssueLoan command and is never
// persisted as ledger state.
type CreditRatingAssertion struct {
	CustomerID   string        `json:"customerId"`
	CustomerName string        `json:"customerName"`
	Rating       int           `json:"rating"`
	AssertedAt   time.Time     `json:"assertedAt"`
	Validity     time.Duration `json:"validity"`
	OracleKey    string        `json:"oracleKey"`
}

// ValidUntil is the last instant the assertion may still cover.
func (a CreditRatingAssertion) ValidUntil() time.Time {
	return a.AssertedAt.Add(a.Validity)
}
