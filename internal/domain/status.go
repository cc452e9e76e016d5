package domain

type AccountStatus string

const (
	AccountStatusPending   AccountStatus = "PENDING"
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusActive, AccountStatusSuspended:
		return true
	}
	return false
}

// CanProgressTo reports whether the administrative status machine permits the
// transition. PENDING is never reachable once left; ACTIVE and SUSPENDED
// toggle freely.
func (s AccountStatus) CanProgressTo(next AccountStatus) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	return next != AccountStatusPending
}
