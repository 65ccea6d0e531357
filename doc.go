// Package goStepAuth chains pluggable authentication methods into an ordered
// multi-factor flow without any server-side session state. The only state
// carried between steps is a signed continuation token minted after each
// successful step; the [Orchestrator] decides from that token which method is
// legitimately next and refuses skipped, repeated, or reordered steps.
//
// The package is designed for concurrent server workloads: Orchestrator
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// goStepAuth is the public surface. It exposes [Orchestrator], [Builder],
// [Config], and the value types ([AuthResult], [AuthChallenge]). Token
// signing lives in the token subpackage; concrete method implementations live
// in backends and are registered per method name at build time. The
// orchestrator never inspects backend internals and holds no mutable state.
//
// # What this package must NOT do
//
//   - Keep a server-side session map. All flow progress is encoded in the
//     continuation token presented by the caller.
//   - Invoke a backend before the previous token has been fully verified and
//     the requested step validated against the configured sequence.
//   - Retry failed backend or verification calls. Retry policy belongs to
//     backends and callers.
package goStepAuth
