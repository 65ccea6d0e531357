package goStepAuth

import "errors"

var (
	// ErrSequenceViolation is an exported constant or variable used by the step orchestrator.
	ErrSequenceViolation = errors.New("authentication step out of sequence")
	// ErrFlowComplete is an exported constant or variable used by the step orchestrator.
	ErrFlowComplete = errors.New("continuation token is final")
	// ErrUnknownStep is an exported constant or variable used by the step orchestrator.
	ErrUnknownStep = errors.New("continuation token references unknown step")
	// ErrTokenInvalid is an exported constant or variable used by the step orchestrator.
	ErrTokenInvalid = errors.New("invalid continuation token")
	// ErrChallengeUnsupported is an exported constant or variable used by the step orchestrator.
	ErrChallengeUnsupported = errors.New("backend does not support challenges")
	// ErrSubjectMissing is an exported constant or variable used by the step orchestrator.
	ErrSubjectMissing = errors.New("subject id required")
	// ErrOrchestratorNotReady is an exported constant or variable used by the step orchestrator.
	ErrOrchestratorNotReady = errors.New("orchestrator not initialized")
	// ErrResultInvariant is an exported constant or variable used by the step orchestrator.
	ErrResultInvariant = errors.New("auth result violates final/next invariant")
	// ErrChallengeInvariant is an exported constant or variable used by the step orchestrator.
	ErrChallengeInvariant = errors.New("auth challenge requires a method name")
)
