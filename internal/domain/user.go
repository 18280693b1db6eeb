package domain

import (
	"strings"
	"time"
)

// User is a party known to the engine. Users are never deleted, only re-flagged.
type User struct {
	Address     string
	KYCVerified bool
	RoleFlags   RoleFlag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// addresses are stored checksummed, so a case-insensitive compare is enough here
func sameAddress(a, b string) bool {
	return strings.EqualFold(a, b)
}
