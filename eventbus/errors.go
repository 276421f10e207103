package eventbus

import "errors"

// Error taxonomy per SPEC_FULL.md §7. Retryability is a property of the
// scheduler's Fail handling, not of the error value itself; see
// retryable() below.
var (
	ErrInvalidContractShape = errors.New("invalid contract shape")
	ErrStoryIdTraceability  = errors.New("storyId missing from referenced path")
	ErrInvalidSequence      = errors.New("illegal agent sequence transition")
	ErrDnaCompliance        = errors.New("DNA compliance policy failed")
	ErrQualityGate          = errors.New("quality gate failed")
	ErrBusinessLogic        = errors.New("agent-reported business logic failure")
	ErrExternalService      = errors.New("external service failure")
	ErrWorkTimeout          = errors.New("work item exceeded its timeout")
	ErrEventBus             = errors.New("coordinator internal invariant violation")

	ErrUnknownWork  = errors.New("unknown work item")
	ErrUnknownAgent = errors.New("unknown agent")
)

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrExternalService), errors.Is(err, ErrWorkTimeout):
		return true
	default:
		return false
	}
}
