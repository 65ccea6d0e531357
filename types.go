package goStepAuth

import "context"

// Backend validates one authentication method for a subject. Implementations
// must succeed only when the secret is valid for that subject under the
// method's own semantics and return an error otherwise; the orchestrator
// propagates backend errors to the caller unchanged.
//
// Backends own their retry policy and any per-subject state they keep (for
// example a pending challenge); the orchestrator never retries and never
// inspects backend state.
type Backend interface {
	Authenticate(ctx context.Context, subjectID, secret string) error
}

// ChallengeBackend is the optional capability implemented by backends that
// deliver a challenge through a channel outside the response (for example a
// code sent to a device). RequestChallenge must be idempotent while a
// challenge is outstanding and the challenge must be consumed by a single
// successful Authenticate call.
type ChallengeBackend interface {
	Backend
	RequestChallenge(ctx context.Context, subjectID string) (*AuthChallenge, error)
}

// AuthResult is returned by [Orchestrator.GetToken]. It is immutable once
// constructed; a final result never carries a next step and a non-final
// result always names the sole step that follows.
type AuthResult struct {
	token string
	final bool
	next  []string
}

// NewAuthResult validates the final/next invariant and fails fast on
// violation so an inconsistent result can never be observed.
func NewAuthResult(token string, final bool, next []string) (*AuthResult, error) {
	if token == "" {
		return nil, ErrResultInvariant
	}
	if final && next != nil {
		return nil, ErrResultInvariant
	}
	if !final && len(next) == 0 {
		return nil, ErrResultInvariant
	}
	r := &AuthResult{token: token, final: final}
	if !final {
		r.next = make([]string, len(next))
		copy(r.next, next)
	}
	return r, nil
}

// Token returns the freshly minted continuation token.
func (r *AuthResult) Token() string {
	return r.token
}

// Final reports whether the flow is complete and no further step remains.
func (r *AuthResult) Final() bool {
	return r.final
}

// Next returns the ordered list of legitimate next steps, or nil when the
// result is final. The returned slice is a copy.
func (r *AuthResult) Next() []string {
	if r.next == nil {
		return nil
	}
	next := make([]string, len(r.next))
	copy(next, r.next)
	return next
}

// AuthChallenge is returned by [Orchestrator.RequestChallenge]. Sent reports
// that information was pushed to the subject out of band; Content carries any
// in-band challenge data and may be nil when the subject only has to wait for
// the out-of-band code.
type AuthChallenge struct {
	content any
	method  string
	sent    bool
}

// NewAuthChallenge validates that the challenge names its method and fails
// fast otherwise.
func NewAuthChallenge(content any, method string, sent bool) (*AuthChallenge, error) {
	if method == "" {
		return nil, ErrChallengeInvariant
	}
	return &AuthChallenge{content: content, method: method, sent: sent}, nil
}

// Content returns the in-band challenge payload, which may be nil.
func (c *AuthChallenge) Content() any {
	return c.content
}

// Method returns the method name the challenge was issued for.
func (c *AuthChallenge) Method() string {
	return c.method
}

// Sent reports whether challenge data was delivered through an out-of-band
// channel.
func (c *AuthChallenge) Sent() bool {
	return c.sent
}
