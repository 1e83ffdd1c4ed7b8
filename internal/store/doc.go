// Package store provides the CacheStore adapters (file, memory, Redis) and
// the session/challenge persistence built on top of them.
//
// The file adapter is the default and keeps one file per cache key under the
// configured directory, written atomically (temp file then rename). Cached
// sessions are sealed with a key derived from the account credential; a blob
// that fails to unseal is reported as absent, which simply forces a fresh
// login.
package store
