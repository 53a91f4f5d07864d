package interchanges

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind uint16

const (
	KindInvalidInput = ErrorKind(iota + 1)
	KindUpstreamFetchFailed
	KindUndefined = ErrorKind(0)
)

func (iotaIdx ErrorKind) String() string {
	return [...]string{"undefined", "invalid_input", "upstream_fetch_failed"}[iotaIdx]
}

// Error carries machine-readable kind of failure
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns kind of the first *Error in the chain
func KindOf(err error) (ErrorKind, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return KindUndefined, false
}

// IsInvalidInput reports whether err was caused by malformed input
func IsInvalidInput(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindInvalidInput
}

// IsUpstreamFetchFailed reports whether err was caused by failing map data or facility status source
func IsUpstreamFetchFailed(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindUpstreamFetchFailed
}
