package goStepAuth

import (
	"context"
	"time"
)

const (
	auditEventStepSuccess          = "step_success"
	auditEventStepFailure          = "step_failure"
	auditEventSequenceViolation    = "sequence_violation"
	auditEventTokenRejected        = "token_rejected"
	auditEventFlowCompleted        = "flow_completed"
	auditEventChallengeIssued      = "challenge_issued"
	auditEventChallengeFailure     = "challenge_failure"
	auditEventChallengeUnsupported = "challenge_unsupported"
)

func (o *Orchestrator) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	subjectID string,
	method string,
	cause error,
	metadataFn func() map[string]string,
) {
	if o == nil || o.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		SubjectID: subjectID,
		Method:    method,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadataFn != nil {
		event.Metadata = metadataFn()
	}

	o.audit.Emit(ctx, event)
}
