package domain

import "time"

// Customer owns accounts. SignerKey is the capability key those accounts
// carry as OwnerKey and present among transaction signers.
type Customer struct {
	ID                 string
	CustomerID         string
	FirstName          string
	LastName           string
	PhoneNumber        string
	SignerKey          string
	TransactionPinHash string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
