// Package commands defines the weibo-uploader CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - upload   Upload one or more images and print their delivery URLs
//   - login    Establish and cache a session without uploading
//   - logout   Drop the cached session and any pending challenge
//   - url      Resolve a pid or existing URL to a delivery URL, offline
//
// # Implementation
//
// The root command builds the dependency graph (cache, stores, transport,
// services) before any subcommand runs, so handlers share one app context.
// Account state lives under --home, or in redis when --redis is given.
package commands
