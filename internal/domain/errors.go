package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// AuthorizationError is returned when the caller or a party lacks the right to act.
type AuthorizationError struct {
	Reason string
}

func (e AuthorizationError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Reason
}

func (e AuthorizationError) Is(target error) bool {
	_, ok := target.(AuthorizationError)
	if ok {
		return true
	}
	_, ok = target.(*AuthorizationError)
	return ok
}

// StateError is returned for a transition the current state does not allow.
type StateError struct {
	Resource string
	Reason   string
}

func (e StateError) Error() string {
	switch {
	case e.Resource == "" && e.Reason == "":
		return "invalid state"
	case e.Resource == "":
		return "invalid state: " + e.Reason
	default:
		return fmt.Sprintf("invalid %s state: %s", e.Resource, e.Reason)
	}
}

func (e StateError) Is(target error) bool {
	_, ok := target.(StateError)
	if ok {
		return true
	}
	_, ok = target.(*StateError)
	return ok
}

// FundsError is returned for payment mismatches and insufficient balances.
type FundsError struct {
	Reason string
}

func (e FundsError) Error() string {
	if e.Reason == "" {
		return "funds error"
	}
	return "funds error: " + e.Reason
}

func (e FundsError) Is(target error) bool {
	_, ok := target.(FundsError)
	if ok {
		return true
	}
	_, ok = target.(*FundsError)
	return ok
}

// InvalidArgumentError is returned for malformed input such as a bad address.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e InvalidArgumentError) Error() string {
	if e.Field == "" {
		return "invalid argument: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e InvalidArgumentError) Is(target error) bool {
	_, ok := target.(InvalidArgumentError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidArgumentError)
	return ok
}

// Sentinels for errors.Is.
var (
	ErrNotFound        = NotFoundError{}
	ErrUnauthorized    = AuthorizationError{}
	ErrInvalidState    = StateError{}
	ErrFunds           = FundsError{}
	ErrInvalidArgument = InvalidArgumentError{}
)
