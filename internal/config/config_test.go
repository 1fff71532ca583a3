package config

import (
	"strings"
	"syscall"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Children: []Child{
			{
				Command:    []string{"/bin/true"},
				Name:       "TRUE",
				TermSignal: syscall.SIGTERM,
			},
		},
		ShutdownTimeout: 10 * time.Second,
		MaxLineLength:   120,
		DrainTimeout:    5 * time.Second,
		LogFormat:       "text",
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Default() config should be valid, got: %v", err)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestValidateEmptyChildTable(t *testing.T) {
	cfg := validConfig()
	cfg.Children = nil

	// An empty table is legal: both phases spawn nothing and are skipped.
	if err := Validate(cfg); err != nil {
		t.Errorf("empty child table should be valid, got: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "zero line length",
			mutate: func(c *Config) { c.MaxLineLength = 0 },
			want:   "max_line_length",
		},
		{
			name:   "negative shutdown timeout",
			mutate: func(c *Config) { c.ShutdownTimeout = -time.Second },
			want:   "shutdown_timeout",
		},
		{
			name:   "zero drain timeout",
			mutate: func(c *Config) { c.DrainTimeout = 0 },
			want:   "drain_timeout",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.LogFormat = "xml" },
			want:   "log_format",
		},
		{
			name:   "empty command",
			mutate: func(c *Config) { c.Children[0].Command = nil },
			want:   "command",
		},
		{
			name:   "empty executable",
			mutate: func(c *Config) { c.Children[0].Command = []string{""} },
			want:   "command",
		},
		{
			name:   "empty name",
			mutate: func(c *Config) { c.Children[0].Name = "" },
			want:   "name",
		},
		{
			name: "duplicate name",
			mutate: func(c *Config) {
				c.Children = append(c.Children, Child{
					Command:    []string{"/bin/true"},
					Name:       "TRUE",
					TermSignal: syscall.SIGTERM,
				})
			},
			want: "duplicate",
		},
		{
			name:   "zero termination signal",
			mutate: func(c *Config) { c.Children[0].TermSignal = 0 },
			want:   "term_signal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.MaxLineLength = 0
	cfg.ShutdownTimeout = 0
	cfg.Children[0].Name = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	for _, want := range []string{"max_line_length", "shutdown_timeout", "name"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("combined error should mention %q, got: %v", want, err)
		}
	}
}
