package answer

import (
	"errors"
	"fmt"
)

// TransportError reports a request that never produced an HTTP response:
// connectivity, DNS, TLS or context cancellation.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("answer service unreachable (%s): %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a reachable service that answered with a
// non-success status or a body that could not be decoded.
type ProtocolError struct {
	URL        string
	StatusCode int
	Body       string // truncated
	Err        error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("answer service protocol error (%s, HTTP %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("answer service returned HTTP %d (%s): %s", e.StatusCode, e.URL, e.Body)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsRequestFailure reports whether err is a transport or protocol failure.
func IsRequestFailure(err error) bool {
	var te *TransportError
	var pe *ProtocolError
	return errors.As(err, &te) || errors.As(err, &pe)
}
