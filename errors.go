package pagecache

import "github.com/pkg/errors"

// violation panics with a stack-annotated error for programmer errors
// that have no recoverable return value: using an invalidated guard,
// dropping a guard twice, exhausting disk space, or any other state
// that should never be reachable through correct use of the pool.
func violation(msg string) {
	panic(errors.WithStack(errors.New("pagecache: contract violation: " + msg)))
}
