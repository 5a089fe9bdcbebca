package contract

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	ErrDuplicateTool             = errors.New("tool already registered")
	ErrUnknownTool               = errors.New("unknown tool")
	ErrInvalidArgument           = errors.New("invalid tool argument")
	ErrDataAccess                = errors.New("data access failed")
	ErrMalformedResponse         = errors.New("malformed agent response")
	ErrUngroundedReference       = errors.New("ungrounded entity reference")
	ErrRecommendationUnavailable = errors.New("recommendation unavailable")
)

// UngroundedReferenceError names a recommendation entry whose entity was never
// returned by a tool call in the same exchange.
type UngroundedReferenceError struct {
	EntityID string
	Name     string
}

func (e *UngroundedReferenceError) Error() string {
	ref := strings.TrimSpace(e.Name)
	if id := strings.TrimSpace(e.EntityID); id != "" {
		ref = fmt.Sprintf("%s (id=%s)", ref, id)
	}
	return fmt.Sprintf("%s: %q was not returned by any tool call", ErrUngroundedReference, ref)
}

func (e *UngroundedReferenceError) Is(target error) bool {
	return target == ErrUngroundedReference
}

// ErrorKind classifies an error for the structured payload fed back to the agent.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrDataAccess):
		return "data_access"
	default:
		return "internal"
	}
}
