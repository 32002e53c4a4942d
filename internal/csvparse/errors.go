package csvparse

import "errors"

// ErrMalformedInput is the only error kind returned by Parse. Callers should
// match it with errors.Is; the wrapped message names the offending line.
var ErrMalformedInput = errors.New("Invalid CSV format")

// ErrUnknownCoercion is returned by ParseCoercion for names other than raw
// and typed.
var ErrUnknownCoercion = errors.New("unknown value coercion")
