// Package token mints and verifies the signed continuation tokens that carry
// multi-step authentication progress between calls. A token binds a subject,
// the step it was minted from, and a finality flag under an HMAC-SHA256
// signature with a fixed time to live; verification rejects any other
// algorithm, an expired token, or a subject mismatch.
package token
