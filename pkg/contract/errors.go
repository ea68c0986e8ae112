package contract

import "fmt"

// Kind classifies a failed contract read. The refresh loop treats every kind
// as transient, but callers can tell whether the node was unreachable,
// answered with an error, or answered with data that did not decode.
type Kind int

const (
	// KindTransport means the call never produced a response: connection
	// failure, timeout, cancelled context.
	KindTransport Kind = iota
	// KindNode means the node answered with an RPC-level error or revert.
	KindNode
	// KindPayload means the node answered but the return data was empty or
	// did not decode as a checkpoint.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport error"
	case KindNode:
		return "node error"
	case KindPayload:
		return "malformed return data"
	}
	return "unknown error"
}

// ReadError wraps a failed latestCheckpoint read with its classification.
type ReadError struct {
	Kind Kind
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
