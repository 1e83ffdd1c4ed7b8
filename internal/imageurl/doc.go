// Package imageurl resolves a 32-character image identifier (pid), or an
// existing sinaimg delivery URL, into the delivery URL for a requested size.
// Resolution is pure computation; no network calls are involved.
package imageurl
