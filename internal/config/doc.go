// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml file. Every key can
// be overridden with a LOYALTY_ prefixed variable, for example
// LOYALTY_SERVER_PORT or LOYALTY_AUTH_JWT_SECRET.
package config
