// Package config provides configuration management for go-proc-supervisor.
package config

import (
	"syscall"
	"time"
)

// Child describes one supervised process. The table of children is fixed for
// the lifetime of a run; nothing mutates a Child after startup.
type Child struct {
	// Command is the executable path followed by its arguments.
	Command []string `json:"command"`

	// Name tags every log line produced by this child.
	Name string `json:"name"`

	// StartupCheck places the child in the check phase: it must exit zero
	// before any normal-phase child is spawned.
	StartupCheck bool `json:"startup_check"`

	// ForwardUSR1 and ForwardUSR2 opt the child in to relayed user signals.
	ForwardUSR1 bool `json:"forward_usr1"`
	ForwardUSR2 bool `json:"forward_usr2"`

	// TermSignal is sent to ask the child to exit gracefully.
	TermSignal syscall.Signal `json:"term_signal"`
}

// Forwards reports whether the child opted in to relays of sig.
func (c Child) Forwards(sig syscall.Signal) bool {
	switch sig {
	case syscall.SIGUSR1:
		return c.ForwardUSR1
	case syscall.SIGUSR2:
		return c.ForwardUSR2
	default:
		return false
	}
}

// Config holds all configuration options for the supervisor.
type Config struct {
	Children []Child `json:"children"`

	// ShutdownTimeout bounds the graceful teardown window. When it elapses,
	// every remaining child is killed and the supervisor exits.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`

	// MaxLineLength is the multiplexer buffer capacity: a line that grows to
	// this many bytes without a newline is force-wrapped.
	MaxLineLength int `json:"max_line_length"`

	// DrainTimeout bounds how long to wait for output pumps to finish after
	// a phase's children have all exited.
	DrainTimeout time.Duration `json:"drain_timeout"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = metrics server disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text

	// Diagnostic modes
	SkipPreflight bool `json:"skip_preflight"`
}

// Default returns the built-in configuration. The child table plays the role
// of compile-time configuration: edit it and rebuild.
func Default() *Config {
	return &Config{
		Children: []Child{
			{
				Command:    []string{"/bin/sh", "-c", "while true; do sleep 5; echo 'hello'; done"},
				Name:       "SLEEPER",
				TermSignal: syscall.SIGTERM,
			},
			{
				Command:      []string{"/usr/bin/echo", "check done!"},
				Name:         "CHECK",
				StartupCheck: true,
				TermSignal:   syscall.SIGTERM,
			},
			{
				Command:      []string{"/bin/sh", "-c", "echo doing check...; sleep 6"},
				Name:         "CHECK2",
				StartupCheck: true,
				TermSignal:   syscall.SIGTERM,
			},
		},

		ShutdownTimeout: 10 * time.Second,
		MaxLineLength:   120,
		DrainTimeout:    5 * time.Second,

		MetricsAddr: "",
		Verbose:     false,
		LogFormat:   "text",
	}
}
