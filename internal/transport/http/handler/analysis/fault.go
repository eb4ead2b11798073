package analysis

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is reported when the server has no upstream API key.
var ErrMissingCredential = errors.New("API key is not configured on the server.")

// Kind classifies why an analysis request failed.
type Kind int

const (
	// KindMalformedBody means the inbound body could not be read or decoded.
	KindMalformedBody Kind = iota + 1
	// KindMissingCredential means no upstream API key is configured.
	KindMissingCredential
	// KindUpstreamRejected means the upstream answered with a non-2xx status.
	KindUpstreamRejected
	// KindTransport means the upstream call failed or returned an unusable body.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindMalformedBody:
		return "malformed_body"
	case KindMissingCredential:
		return "missing_credential"
	case KindUpstreamRejected:
		return "upstream_rejected"
	case KindTransport:
		return "transport"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Fault is the error returned by the analysis sequence. Message is what the
// caller sees; Err is the underlying cause.
type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func newFault(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

func (f *Fault) Error() string {
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// asFault returns err as a *Fault, classifying unknown errors as transport faults.
func asFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return newFault(KindTransport, err.Error(), err)
}
