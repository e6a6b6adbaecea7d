// Package config handles configuration for the keyshare CLI, including
// defaults, JSON overlay, and command-line flags.
package config
