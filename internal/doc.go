// Package internal contains helper utilities that are intentionally private
// to goStepAuth, currently secure random challenge code generation.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goStepAuth API.
//   - Be imported by any package outside the goStepAuth module.
package internal
