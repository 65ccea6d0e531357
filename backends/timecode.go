package backends

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"strings"
	"time"
)

const timeCodeSecretBytes = 20

// SecretStore is implemented by callers to let the time-code backend look up
// the shared per-subject secret. A missing subject must be reported as
// [ErrSubjectNotFound].
type SecretStore interface {
	CodeSecret(ctx context.Context, subjectID string) ([]byte, error)
}

// TimeCodeConfig defines a public type used by goStepAuth APIs.
//
// TimeCodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TimeCodeConfig struct {
	Digits    int
	Period    int
	Skew      int
	Algorithm string // "SHA1" (default), "SHA256", "SHA512"
}

// TimeCode validates RFC 6238 style time-window codes derived from a shared
// per-subject secret.
type TimeCode struct {
	config TimeCodeConfig
	store  SecretStore
	now    func() time.Time
}

// NewTimeCode describes the newtimecode operation and its observable behavior.
//
// NewTimeCode may return an error when input validation, dependency calls, or security checks fail.
// NewTimeCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTimeCode(cfg TimeCodeConfig, store SecretStore) (*TimeCode, error) {
	if store == nil {
		return nil, errors.New("secret store required")
	}
	if cfg.Digits <= 0 {
		cfg.Digits = 6
	}
	if cfg.Period <= 0 {
		cfg.Period = 30
	}
	if cfg.Skew < 0 {
		return nil, errors.New("invalid skew configuration")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "SHA1"
	}
	if _, err := hmacFunc(cfg.Algorithm); err != nil {
		return nil, err
	}

	return &TimeCode{
		config: cfg,
		store:  store,
		now:    time.Now,
	}, nil
}

// GenerateSecret returns a fresh random shared secret and its base32 form for
// provisioning an authenticator.
func (t *TimeCode) GenerateSecret() ([]byte, string, error) {
	raw := make([]byte, timeCodeSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", err
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return raw, enc.EncodeToString(raw), nil
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *TimeCode) Authenticate(ctx context.Context, subjectID, secret string) error {
	key, err := t.store.CodeSecret(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrSubjectNotFound) {
			return ErrInvalidSecret
		}
		return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
	}
	if len(key) == 0 {
		return ErrInvalidSecret
	}

	trimmed := strings.TrimSpace(secret)
	if len(trimmed) != t.config.Digits || !isNumericString(trimmed) {
		return ErrInvalidSecret
	}

	baseCounter := t.now().Unix() / int64(t.config.Period)
	for step := -t.config.Skew; step <= t.config.Skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		generated, err := hotpCode(key, counter, t.config.Digits, t.config.Algorithm)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCredentialBackend, err)
		}
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return nil
		}
	}

	return ErrInvalidSecret
}

func hotpCode(secret []byte, counter int64, digits int, algorithm string) (string, error) {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	hf, err := hmacFunc(algorithm)
	if err != nil {
		return "", err
	}
	mac := hmac.New(hf, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod), nil
}

func hmacFunc(algorithm string) (func() hash.Hash, error) {
	switch strings.ToUpper(algorithm) {
	case "", "SHA1":
		return sha1.New, nil
	case "SHA256":
		return sha256.New, nil
	case "SHA512":
		return sha512.New, nil
	default:
		return nil, errors.New("unsupported time code algorithm")
	}
}

func isNumericString(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
