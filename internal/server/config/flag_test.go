package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "db",
			"-i", "http://identity/profile", "-s", "http://identity/session",
			"-t", "http://media/token", "-k", "id", "-x", "secret", "-r", "http://redirect",
			"-o", "overlaysecret", "-u", "10", "-w", "5",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:   "127.0.0.1:9090",
				DatabaseDSN:        "db",
				IdentityProfileURL: "http://identity/profile",
				IdentitySessionURL: "http://identity/session",
				MediaTokenURL:      "http://media/token",
				MediaClientID:      "id",
				MediaClientSecret:  "secret",
				MediaRedirectURI:   "http://redirect",
				OverlaySecret:      "overlaysecret",
				UpstreamTimeout:    10 * time.Second,
				ShutdownTimeout:    5 * time.Second,
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {

				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
