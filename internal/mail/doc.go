// Package mail delivers rendered messages through a pluggable transport.
//
// Four transports are available: the Mailtrap sending API (HTTPS, bearer token),
// Postmark, authenticated SMTP and a file outbox for local development. New picks one
// from Config; when nothing usable is configured it returns a transport whose Send
// fails with a *ConfigurationError without touching the network.
//
// Transports are built once per process and are safe for concurrent use.
package mail
