package backends

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goStepAuth"
	"github.com/MrEthical07/goStepAuth/internal"
)

// Sender delivers a challenge code to a subject through a channel outside
// the authentication response (SMS, email, push).
type Sender interface {
	Send(ctx context.Context, subjectID, code string) error
}

// OTPConfig defines a public type used by goStepAuth APIs.
//
// OTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OTPConfig struct {
	Method string
	Digits int
	TTL    time.Duration
}

// OTP is a challenge-capable backend: RequestChallenge issues a random
// numeric code, delivers it through the configured [Sender], and records it
// as the subject's single pending challenge. While that challenge is
// outstanding, repeated requests return it unchanged instead of issuing a new
// code. A successful Authenticate consumes the challenge; the same code can
// never succeed twice.
type OTP struct {
	config OTPConfig
	store  ChallengeStore
	sender Sender
}

// NewOTP describes the newotp operation and its observable behavior.
//
// NewOTP may return an error when input validation, dependency calls, or security checks fail.
// NewOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewOTP(cfg OTPConfig, store ChallengeStore, sender Sender) (*OTP, error) {
	if store == nil {
		return nil, errors.New("challenge store required")
	}
	if sender == nil {
		return nil, errors.New("challenge sender required")
	}
	if cfg.Method == "" {
		return nil, errors.New("method name required")
	}
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 3 * time.Minute
	}

	return &OTP{
		config: cfg,
		store:  store,
		sender: sender,
	}, nil
}

// RequestChallenge describes the requestchallenge operation and its observable behavior.
//
// RequestChallenge may return an error when input validation, dependency calls, or security checks fail.
// RequestChallenge does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *OTP) RequestChallenge(ctx context.Context, subjectID string) (*goStepAuth.AuthChallenge, error) {
	existing, err := o.store.Get(ctx, subjectID)
	switch {
	case err == nil:
		return o.challenge(existing.ChallengeID)
	case errors.Is(err, ErrChallengeNotFound), errors.Is(err, ErrChallengeExpired):
		// Fall through and issue a fresh challenge.
	default:
		return nil, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}

	code, err := internal.NewChallengeCode(o.config.Digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}

	record := &PendingChallenge{
		ChallengeID: uuid.NewString(),
		Code:        code,
		ExpiresAt:   time.Now().Add(o.config.TTL).Unix(),
	}
	if err := o.store.Save(ctx, subjectID, record, o.config.TTL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}

	if err := o.sender.Send(ctx, subjectID, code); err != nil {
		_, _ = o.store.Delete(ctx, subjectID)
		return nil, fmt.Errorf("%w: %v", ErrChallengeDelivery, err)
	}

	return o.challenge(record.ChallengeID)
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o *OTP) Authenticate(ctx context.Context, subjectID, secret string) error {
	record, err := o.store.Get(ctx, subjectID)
	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound), errors.Is(err, ErrChallengeExpired):
			return ErrInvalidSecret
		default:
			return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(secret), []byte(record.Code)) != 1 {
		return ErrInvalidSecret
	}

	deleted, err := o.store.Delete(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChallengeBackend, err)
	}
	if !deleted {
		// Lost the consume race; the code was already spent.
		return ErrInvalidSecret
	}
	return nil
}

func (o *OTP) challenge(challengeID string) (*goStepAuth.AuthChallenge, error) {
	return goStepAuth.NewAuthChallenge(
		map[string]string{"challenge_id": challengeID},
		o.config.Method,
		true,
	)
}
