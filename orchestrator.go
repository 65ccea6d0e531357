package goStepAuth

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goStepAuth/token"
)

// Orchestrator sequences the configured authentication steps. It holds no
// mutable state: every call derives the current position in the flow from the
// caller-supplied continuation token, delegates the credential check to the
// backend registered for the resolved step, and mints a fresh token on
// success.
//
// Orchestrator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Orchestrator struct {
	config   Config
	steps    []string
	backends map[string]Backend
	tokens   *token.Manager
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) Close() {
	if o == nil {
		return
	}
	if o.audit != nil {
		o.audit.Close()
	}
}

// Steps returns a copy of the configured step sequence.
func (o *Orchestrator) Steps() []string {
	if o == nil {
		return nil
	}
	steps := make([]string, len(o.steps))
	copy(steps, o.steps)
	return steps
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) AuditDropped() uint64 {
	if o == nil || o.audit == nil {
		return 0
	}
	return o.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *Orchestrator) MetricsSnapshot() MetricsSnapshot {
	if o == nil || o.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return o.metrics.Snapshot()
}

func (o *Orchestrator) metricInc(id MetricID) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.Inc(id)
}

// GetToken performs one authentication step. With an empty previousToken the
// step defaults to the first entry of the configured sequence; otherwise the
// token is verified against subjectID and the step immediately following its
// from claim is selected. An explicit method must match the selected step
// exactly. The backend for the step is invoked only after resolution
// succeeds, and its error is propagated unchanged; on success a new
// continuation token is minted and returned inside an [AuthResult].
//
// Empty strings stand for the absent previousToken and method arguments.
func (o *Orchestrator) GetToken(
	ctx context.Context,
	subjectID string,
	secret string,
	previousToken string,
	method string,
) (*AuthResult, error) {
	if o == nil || o.tokens == nil {
		return nil, ErrOrchestratorNotReady
	}

	step, err := o.resolveStep(ctx, subjectID, previousToken, method)
	if err != nil {
		return nil, err
	}

	idx := stepIndex(o.steps, step)
	final := idx == len(o.steps)-1

	if err := o.backends[step].Authenticate(ctx, subjectID, secret); err != nil {
		o.metricInc(MetricStepFailure)
		o.emitAudit(ctx, auditEventStepFailure, false, subjectID, step, err, nil)
		return nil, err
	}

	minted, err := o.tokens.Mint(subjectID, step, final)
	if err != nil {
		o.metricInc(MetricStepFailure)
		o.emitAudit(ctx, auditEventStepFailure, false, subjectID, step, err, func() map[string]string {
			return map[string]string{
				"reason": "token_mint_failed",
			}
		})
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var next []string
	if !final {
		next = []string{o.steps[idx+1]}
	}
	result, err := NewAuthResult(minted, final, next)
	if err != nil {
		return nil, err
	}

	o.metricInc(MetricStepSuccess)
	o.emitAudit(ctx, auditEventStepSuccess, true, subjectID, step, nil, nil)
	if final {
		o.metricInc(MetricFlowCompleted)
		o.emitAudit(ctx, auditEventFlowCompleted, true, subjectID, step, nil, nil)
	}
	return result, nil
}

// RequestChallenge resolves the current step exactly like [Orchestrator.GetToken]
// and delegates to the step's backend when it implements [ChallengeBackend],
// returning its challenge verbatim. A backend without challenge support fails
// with [ErrChallengeUnsupported].
func (o *Orchestrator) RequestChallenge(
	ctx context.Context,
	subjectID string,
	previousToken string,
	method string,
) (*AuthChallenge, error) {
	if o == nil || o.tokens == nil {
		return nil, ErrOrchestratorNotReady
	}

	step, err := o.resolveStep(ctx, subjectID, previousToken, method)
	if err != nil {
		return nil, err
	}

	cb, ok := o.backends[step].(ChallengeBackend)
	if !ok {
		o.metricInc(MetricChallengeUnsupported)
		o.emitAudit(ctx, auditEventChallengeUnsupported, false, subjectID, step, ErrChallengeUnsupported, nil)
		return nil, ErrChallengeUnsupported
	}

	challenge, err := cb.RequestChallenge(ctx, subjectID)
	if err != nil {
		o.metricInc(MetricChallengeFailure)
		o.emitAudit(ctx, auditEventChallengeFailure, false, subjectID, step, err, nil)
		return nil, err
	}

	o.metricInc(MetricChallengeIssued)
	o.emitAudit(ctx, auditEventChallengeIssued, true, subjectID, step, nil, nil)
	return challenge, nil
}

// resolveStep implements the sequencing state machine. It must complete, and
// fail if applicable, before any backend is touched, so malformed step
// requests can never probe a backend.
func (o *Orchestrator) resolveStep(
	ctx context.Context,
	subjectID string,
	previousToken string,
	method string,
) (string, error) {
	start := time.Now()
	defer func() {
		if o.metrics.LatencyEnabled() {
			o.metrics.Observe(MetricResolveLatency, time.Since(start))
		}
	}()

	if subjectID == "" {
		return "", ErrSubjectMissing
	}

	if previousToken == "" {
		first := o.steps[0]
		if method != "" && method != first {
			o.metricInc(MetricSequenceViolation)
			o.emitAudit(ctx, auditEventSequenceViolation, false, subjectID, method, ErrSequenceViolation, func() map[string]string {
				return map[string]string{
					"reason": "first_step_required",
				}
			})
			return "", ErrSequenceViolation
		}
		return first, nil
	}

	claims, err := o.tokens.Verify(previousToken, subjectID)
	if err != nil {
		o.metricInc(MetricTokenRejected)
		o.emitAudit(ctx, auditEventTokenRejected, false, subjectID, method, err, nil)
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if claims.Final {
		o.metricInc(MetricSequenceViolation)
		o.emitAudit(ctx, auditEventSequenceViolation, false, subjectID, method, ErrFlowComplete, func() map[string]string {
			return map[string]string{
				"reason": "final_token_reused",
				"from":   claims.From,
			}
		})
		return "", ErrFlowComplete
	}

	idx := stepIndex(o.steps, claims.From)
	if idx < 0 {
		o.metricInc(MetricTokenRejected)
		o.emitAudit(ctx, auditEventTokenRejected, false, subjectID, method, ErrUnknownStep, func() map[string]string {
			return map[string]string{
				"from": claims.From,
			}
		})
		return "", ErrUnknownStep
	}
	if idx+1 >= len(o.steps) {
		// Non-final token minted from the last step has no successor.
		o.metricInc(MetricSequenceViolation)
		o.emitAudit(ctx, auditEventSequenceViolation, false, subjectID, method, ErrSequenceViolation, func() map[string]string {
			return map[string]string{
				"reason": "no_successor_step",
				"from":   claims.From,
			}
		})
		return "", ErrSequenceViolation
	}

	next := o.steps[idx+1]
	if method != "" && method != next {
		o.metricInc(MetricSequenceViolation)
		o.emitAudit(ctx, auditEventSequenceViolation, false, subjectID, method, ErrSequenceViolation, func() map[string]string {
			return map[string]string{
				"reason":   "step_mismatch",
				"from":     claims.From,
				"required": next,
			}
		})
		return "", ErrSequenceViolation
	}
	return next, nil
}

func stepIndex(steps []string, name string) int {
	for i, step := range steps {
		if step == name {
			return i
		}
	}
	return -1
}
