// Package attest tracks per-connection attestation handshake state for
// the verifier side of a network-access-control endpoint.
//
// A State is created when a connection opens and destroyed when it
// closes. Across the request/response rounds of the measurement
// protocol it records which file measurements and component evidence
// have been requested but not yet answered, the handshake phase, a
// sticky measurement-error flag, and the final access recommendation.
// The surrounding transport is stateless per message; State is the one
// place where round-spanning handshake state lives.
//
// State is not safe for concurrent use. The connection dispatcher must
// serialize calls per connection; see internal/verifier for the
// session wrapper that does this.
package attest
