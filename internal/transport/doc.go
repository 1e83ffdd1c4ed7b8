// Package transport implements the HTTP collaborator: buffered round-trips
// with form/multipart bodies, optional redirect suppression, and a cookie jar
// whose state can be snapshotted into (and restored from) a domain.Session.
package transport
