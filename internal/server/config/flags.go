package config

import (
	"flag"
	"os"
	"time"

	"github.com/listenalong/backend/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3001")
//	-d string   PostgreSQL DSN
//	-i string   identity profile lookup base URL
//	-s string   identity possession-check base URL
//	-t string   media OAuth token endpoint
//	-k string   media OAuth client id
//	-x string   media OAuth client secret
//	-r string   media OAuth redirect URI
//	-o string   overlay service shared secret
//	-u int      upstream call timeout, seconds
//	-w int      shutdown grace period, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in seconds and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-s", "-t", "-k", "-x", "-r", "-o", "-u", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.IdentityProfileURL, "i", config.IdentityProfileURL, "identity profile lookup URL")
	fs.StringVar(&config.IdentitySessionURL, "s", config.IdentitySessionURL, "identity possession check URL")
	fs.StringVar(&config.MediaTokenURL, "t", config.MediaTokenURL, "media OAuth token URL")
	fs.StringVar(&config.MediaClientID, "k", config.MediaClientID, "media OAuth client id")
	fs.StringVar(&config.MediaClientSecret, "x", config.MediaClientSecret, "media OAuth client secret")
	fs.StringVar(&config.MediaRedirectURI, "r", config.MediaRedirectURI, "media OAuth redirect URI")
	fs.StringVar(&config.OverlaySecret, "o", config.OverlaySecret, "overlay service shared secret")

	upstreamTimeout := fs.Int("u", int(config.UpstreamTimeout.Seconds()), "upstream call timeout (in seconds)")
	shutdownTimeout := fs.Int("w", int(config.ShutdownTimeout.Seconds()), "shutdown grace period (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UpstreamTimeout = time.Duration(*upstreamTimeout) * time.Second
	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
