// Package config resolves exnote settings from defaults, .exnote.yaml, the
// environment and command-line flags, in increasing priority.
package config
