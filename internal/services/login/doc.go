// Package login runs the sso login state machine: pre-flight handshake,
// the optional pin challenge sub-protocol, credential submission, and
// session persistence.
//
// A Login call never blocks on human input. When the handshake demands a pin
// the flow suspends: the pin image is written to a local file, the challenge
// state is cached, and the call returns a ChallengeRequired result. The
// caller is expected to show the image to a human and re-invoke Login with
// the solution, possibly from a different process.
package login
