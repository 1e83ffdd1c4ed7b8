// Package domain defines the value types, collaborator interfaces and error
// vocabulary shared across the uploader.
//
// Contents
//
//   - Identity, Session and PendingChallenge: the persistent login state
//     (an account, its cookie set, and a suspended pin challenge)
//   - UploadConfig, UploadResult and LoginResult: the inputs and outputs of
//     the two user-facing operations
//   - CacheStore, SessionStore, ChallengeStore, Transport, Authenticator and
//     Uploader: the seams between services and their collaborators
//   - The Code-tagged Error type and ChallengeRequiredError control signal
//
// # Notes
//
// A Session is only meaningful for the Identity that produced it; stores key
// every entry by Identity.CacheKey so sessions cannot cross accounts.
package domain
