package core

import "errors"

// Domain sentinels. None of these are fatal; callers report them and carry on.
var (
	// ErrAlreadyClaimed signals a daily claim attempted after today's
	// reward was already collected. A normal negative result, not a fault.
	ErrAlreadyClaimed = errors.New("reward already claimed today")

	// ErrUnknownUser signals an administrative operation referencing an
	// identifier that could not be resolved. No state is mutated.
	ErrUnknownUser = errors.New("unknown user")
)
