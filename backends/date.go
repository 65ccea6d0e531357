package backends

import (
	"context"
	"crypto/subtle"
	"time"
)

// DefaultDateLayout is the secret format accepted by [Date] when no layout is
// configured.
const DefaultDateLayout = "2006-01-02"

// Date accepts the current date, formatted with the configured layout, as the
// secret. The accepted value rolls over at midnight UTC, so a secret is valid
// only on the day it was produced.
type Date struct {
	layout string
	now    func() time.Time
}

// NewDate describes the newdate operation and its observable behavior.
//
// NewDate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewDate(layout string) *Date {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &Date{
		layout: layout,
		now:    time.Now,
	}
}

// Authenticate describes the authenticate operation and its observable behavior.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Date) Authenticate(_ context.Context, _ string, secret string) error {
	expected := d.now().UTC().Format(d.layout)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		return ErrInvalidSecret
	}
	return nil
}
