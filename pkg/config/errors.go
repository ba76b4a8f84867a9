package config

import "fmt"

// ValueError reports a setting out of range.
type ValueError struct {
	Key    string
	Reason string
}

// Error implements error.
func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
}
