// Package crypto exposes the two primitives the uploader needs.
//
// Contents
//
//   - EncryptCredential: the RSA PKCS#1 v1.5 transform the sso login endpoint
//     mandates, keyed by per-handshake hex modulus/exponent
//   - Seal/Open: a passphrase envelope (scrypt + chacha20poly1305) protecting
//     cached session blobs at rest
//
// # Notes
//
// EncryptCredential uses randomized padding, so its output is deliberately
// not repeatable; callers must not compare ciphertexts.
package crypto
