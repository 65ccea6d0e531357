// Package backends provides ready-made authentication backends for the step
// orchestrator: a static shared-secret check, Argon2id password verification
// against a pluggable credential store, a time-window code check, a same-day
// date check, and a challenge-capable one-time-code backend with in-memory
// and Redis-backed pending-challenge stores.
//
// Every backend keeps its own state discipline: the orchestrator is
// stateless, so backends that track a pending challenge must serialize their
// own issue/consume transitions.
//
// # What this package must NOT do
//
//   - Decide step ordering. Sequencing belongs to the orchestrator alone.
//   - Distinguish an unknown subject from a wrong secret in returned errors;
//     both surface as [ErrInvalidSecret] to avoid user enumeration.
package backends
