package domain

import "time"

// DefaultMinimumTerm is the shortest lease that may be completed.
const DefaultMinimumTerm = 30 * 24 * time.Hour

// Config carries the engine settings shared by usecases and auth.
type Config struct {
	FQDN        string
	Operator    string
	MinimumTerm time.Duration
}

func (c Config) IsOperator(address string) bool {
	return c.Operator != "" && sameAddress(c.Operator, address)
}
