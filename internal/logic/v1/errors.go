// Package v1 implements the session analytics business logic for API
// version 1: pure aggregation over the session record log, goal
// evaluation, milestone classification and the ingestion service.
//
// Error Handling:
// This package defines sentinel errors for the failure classes the
// engine distinguishes. They should be wrapped with context using
// fmt.Errorf("%w") when returned from business logic methods.
//
// Example Usage:
//
//	if !domain.ValidSessionTypes[st] {
//	    return nil, fmt.Errorf("session type %q: %w", st, ErrInvalidSession)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidSession):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	case errors.Is(err, logicv1.ErrInvalidGoalConfig):
//	    c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for analytics operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidSession indicates a malformed or out-of-bounds
	// completion event. Rejected before any write occurs.
	// HTTP Status: 400 Bad Request
	ErrInvalidSession = errors.New("invalid session event")

	// ErrInvalidGoalConfig indicates a zero, negative or out-of-bounds
	// goal. Never silently defaulted: a misconfigured goal must surface.
	// HTTP Status: 422 Unprocessable Entity
	ErrInvalidGoalConfig = errors.New("invalid goal configuration")

	// ErrComputeInconsistency indicates that a cached snapshot and a
	// fresh recomputation disagree on values that cannot legally
	// diverge (the record log is append-only). Always a bug in the
	// aggregator or the store; logged and alerted, never swallowed.
	ErrComputeInconsistency = errors.New("stats recomputation inconsistency")
)
