package domain

import "time"

// Title is the tokenized title of a property. TokenID equals the property id.
type Title struct {
	TokenID  uint64
	Owner    string
	URI      string
	MintedAt time.Time
}
