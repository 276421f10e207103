package contract

import "errors"

// Shape-level errors raised while building or deriving a Contract. Sequence
// and DNA-policy errors (ErrInvalidSequence, ErrDnaCompliance) live in
// package eventbus.
var (
	ErrInvalidContractShape = errors.New("invalid contract shape")
	ErrStoryIdTraceability  = errors.New("storyId missing from referenced path")
)
