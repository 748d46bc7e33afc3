package experience

import "fmt"

// LoadError reports an experience ledger that could not be read, failed
// its schema, or could not be decoded.
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ledger load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ledger load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
