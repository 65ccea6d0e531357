package goStepAuth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testTokenSecret = []byte("0123456789abcdef0123456789abcdef")

var errFakeBadSecret = errors.New("fake backend: bad secret")

type fakeBackend struct {
	secrets map[string]string
	err     error
	calls   int
}

func (f *fakeBackend) Authenticate(_ context.Context, subjectID, secret string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.secrets == nil {
		return nil
	}
	if expected, ok := f.secrets[subjectID]; !ok || expected != secret {
		return errFakeBadSecret
	}
	return nil
}

type fakeChallengeBackend struct {
	fakeBackend
	challengeCalls int
	challengeErr   error
}

func (f *fakeChallengeBackend) RequestChallenge(_ context.Context, _ string) (*AuthChallenge, error) {
	f.challengeCalls++
	if f.challengeErr != nil {
		return nil, f.challengeErr
	}
	return NewAuthChallenge(nil, "code", true)
}

func acceptAll() *fakeBackend {
	return &fakeBackend{}
}

func accept(subjectID, secret string) *fakeBackend {
	return &fakeBackend{secrets: map[string]string{subjectID: secret}}
}

func buildOrchestrator(t *testing.T, steps []string, backends map[string]Backend) *Orchestrator {
	t.Helper()

	b := New().WithSteps(steps...).WithTokenSecret(testTokenSecret)
	for name, backend := range backends {
		b.WithBackend(name, backend)
	}
	o, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(o.Close)
	return o
}

func TestSingleFactorFlowIssuesFinalToken(t *testing.T) {
	o := buildOrchestrator(t, []string{"password"}, map[string]Backend{
		"password": accept("u1", "s1"),
	})

	result, err := o.GetToken(context.Background(), "u1", "s1", "", "")
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if !result.Final() {
		t.Fatal("expected final result for single-step sequence")
	}
	if result.Next() != nil {
		t.Fatalf("expected nil next on final result, got %v", result.Next())
	}

	claims, err := o.tokens.Verify(result.Token(), "u1")
	if err != nil {
		t.Fatalf("verify minted token failed: %v", err)
	}
	if claims.From != "password" || !claims.Final {
		t.Fatalf("unexpected claims: from=%q final=%v", claims.From, claims.Final)
	}
}

func TestMultiStepWalkRequiresExactlyNCalls(t *testing.T) {
	steps := []string{"password", "code", "device", "review"}
	backends := make(map[string]Backend, len(steps))
	for _, step := range steps {
		backends[step] = acceptAll()
	}
	o := buildOrchestrator(t, steps, backends)

	previous := ""
	for i, step := range steps {
		result, err := o.GetToken(context.Background(), "u1", "", previous, "")
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}

		wantFinal := i == len(steps)-1
		if result.Final() != wantFinal {
			t.Fatalf("step %d: final=%v, want %v", i, result.Final(), wantFinal)
		}
		if !wantFinal {
			next := result.Next()
			if len(next) != 1 || next[0] != steps[i+1] {
				t.Fatalf("step %d: next=%v, want [%s]", i, next, steps[i+1])
			}
		}

		claims, err := o.tokens.Verify(result.Token(), "u1")
		if err != nil {
			t.Fatalf("step %d: verify failed: %v", i, err)
		}
		if claims.From != step {
			t.Fatalf("step %d: from=%q, want %q", i, claims.From, step)
		}

		previous = result.Token()
	}
}

func TestExplicitMethodMustMatchFirstStepWithoutToken(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	if _, err := o.GetToken(context.Background(), "u1", "", "", "code"); !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("expected ErrSequenceViolation, got %v", err)
	}

	// Naming the first step explicitly is allowed.
	if _, err := o.GetToken(context.Background(), "u1", "", "", "password"); err != nil {
		t.Fatalf("explicit first step failed: %v", err)
	}
}

func TestIntermediateTokenRejectsAnyStepButSuccessor(t *testing.T) {
	steps := []string{"one", "two", "three"}
	o := buildOrchestrator(t, steps, map[string]Backend{
		"one":   acceptAll(),
		"two":   acceptAll(),
		"three": acceptAll(),
	})

	first, err := o.GetToken(context.Background(), "u1", "", "", "")
	if err != nil {
		t.Fatalf("first step failed: %v", err)
	}

	cases := map[string]string{
		"repeat":   "one",
		"skip":     "three",
		"unlisted": "four",
	}
	for name, method := range cases {
		if _, err := o.GetToken(context.Background(), "u1", "", first.Token(), method); !errors.Is(err, ErrSequenceViolation) {
			t.Fatalf("%s: expected ErrSequenceViolation, got %v", name, err)
		}
	}

	// The exact successor still works.
	if _, err := o.GetToken(context.Background(), "u1", "", first.Token(), "two"); err != nil {
		t.Fatalf("successor step failed: %v", err)
	}
}

func TestFinalTokenGrantsNoFurtherStep(t *testing.T) {
	o := buildOrchestrator(t, []string{"password"}, map[string]Backend{
		"password": acceptAll(),
	})

	result, err := o.GetToken(context.Background(), "u1", "", "", "")
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}

	for _, method := range []string{"", "password", "anything"} {
		if _, err := o.GetToken(context.Background(), "u1", "", result.Token(), method); !errors.Is(err, ErrFlowComplete) {
			t.Fatalf("method %q: expected ErrFlowComplete, got %v", method, err)
		}
	}
}

func TestForeignFromClaimRejected(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	foreign := mintRawToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"from":  "fingerprint",
		"final": false,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})

	if _, err := o.GetToken(context.Background(), "u1", "", foreign, ""); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestNonFinalTokenFromLastStepRejected(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	crafted := mintRawToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"from":  "code",
		"final": false,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	})

	if _, err := o.GetToken(context.Background(), "u1", "", crafted, ""); !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("expected ErrSequenceViolation, got %v", err)
	}
}

func TestTokenSubjectMismatchRejected(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	result, err := o.GetToken(context.Background(), "u1", "", "", "")
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}

	if _, err := o.GetToken(context.Background(), "u2", "", result.Token(), ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenAlgorithmConfusionRejected(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	claims := jwt.MapClaims{
		"sub":   "u1",
		"from":  "password",
		"final": false,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}

	hs384 := mintRawToken(t, jwt.SigningMethodHS384, claims)
	if _, err := o.GetToken(context.Background(), "u1", "", hs384, ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("hs384: expected ErrTokenInvalid, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token failed: %v", err)
	}
	if _, err := o.GetToken(context.Background(), "u1", "", unsigned, ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("none: expected ErrTokenInvalid, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	expired := mintRawToken(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"from":  "password",
		"final": false,
		"exp":   time.Now().Add(-time.Hour).Unix(),
		"iat":   time.Now().Add(-2 * time.Hour).Unix(),
	})

	if _, err := o.GetToken(context.Background(), "u1", "", expired, ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestBackendFailurePropagatesUnchangedAndMintsNothing(t *testing.T) {
	backendErr := errors.New("credential store offline")
	o := buildOrchestrator(t, []string{"password"}, map[string]Backend{
		"password": &fakeBackend{err: backendErr},
	})

	result, err := o.GetToken(context.Background(), "u1", "s1", "", "")
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error propagated unchanged, got %v", err)
	}
	if result != nil {
		t.Fatal("expected nil result on backend failure")
	}
}

func TestResolutionFailsBeforeBackendIsInvoked(t *testing.T) {
	password := acceptAll()
	code := acceptAll()
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": password,
		"code":     code,
	})

	if _, err := o.GetToken(context.Background(), "u1", "", "", "code"); !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("expected ErrSequenceViolation, got %v", err)
	}
	if _, err := o.GetToken(context.Background(), "u1", "", "garbage-token", ""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := o.GetToken(context.Background(), "", "", "", ""); !errors.Is(err, ErrSubjectMissing) {
		t.Fatalf("expected ErrSubjectMissing, got %v", err)
	}

	if password.calls != 0 || code.calls != 0 {
		t.Fatalf("backend invoked despite failed resolution: password=%d code=%d", password.calls, code.calls)
	}
}

func TestRequestChallengeDelegatesToCapableBackend(t *testing.T) {
	capable := &fakeChallengeBackend{}
	o := buildOrchestrator(t, []string{"code"}, map[string]Backend{
		"code": capable,
	})

	challenge, err := o.RequestChallenge(context.Background(), "u1", "", "")
	if err != nil {
		t.Fatalf("RequestChallenge failed: %v", err)
	}
	if !challenge.Sent() || challenge.Method() != "code" {
		t.Fatalf("unexpected challenge: sent=%v method=%q", challenge.Sent(), challenge.Method())
	}
	if capable.challengeCalls != 1 {
		t.Fatalf("expected exactly one delegation, got %d", capable.challengeCalls)
	}
}

func TestRequestChallengeUnsupportedBackend(t *testing.T) {
	o := buildOrchestrator(t, []string{"password"}, map[string]Backend{
		"password": acceptAll(),
	})

	if _, err := o.RequestChallenge(context.Background(), "u1", "", ""); !errors.Is(err, ErrChallengeUnsupported) {
		t.Fatalf("expected ErrChallengeUnsupported, got %v", err)
	}
}

func TestRequestChallengeResolvesBeforeDelegating(t *testing.T) {
	capable := &fakeChallengeBackend{}
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     capable,
	})

	// No previous token: the current step is "password", not "code".
	if _, err := o.RequestChallenge(context.Background(), "u1", "", "code"); !errors.Is(err, ErrSequenceViolation) {
		t.Fatalf("expected ErrSequenceViolation, got %v", err)
	}
	if capable.challengeCalls != 0 {
		t.Fatal("challenge backend invoked despite failed resolution")
	}

	first, err := o.GetToken(context.Background(), "u1", "", "", "")
	if err != nil {
		t.Fatalf("first step failed: %v", err)
	}
	if _, err := o.RequestChallenge(context.Background(), "u1", first.Token(), ""); err != nil {
		t.Fatalf("RequestChallenge after first step failed: %v", err)
	}
}

func TestConcurrentStepsDeriveIndependentTokens(t *testing.T) {
	o := buildOrchestrator(t, []string{"password", "code"}, map[string]Backend{
		"password": acceptAll(),
		"code":     acceptAll(),
	})

	first, err := o.GetToken(context.Background(), "u1", "", "", "")
	if err != nil {
		t.Fatalf("first step failed: %v", err)
	}

	// Two callers completing the same step from the same prior token both
	// obtain valid final tokens; picking one path is the caller's job.
	a, err := o.GetToken(context.Background(), "u1", "", first.Token(), "")
	if err != nil {
		t.Fatalf("branch a failed: %v", err)
	}
	b, err := o.GetToken(context.Background(), "u1", "", first.Token(), "")
	if err != nil {
		t.Fatalf("branch b failed: %v", err)
	}
	if !a.Final() || !b.Final() {
		t.Fatal("expected both branches to reach the final state")
	}
}

func mintRawToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(method, claims).SignedString(testTokenSecret)
	if err != nil {
		t.Fatalf("sign raw token failed: %v", err)
	}
	return signed
}
