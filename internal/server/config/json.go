package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/listenalong/backend/internal/flagx"
	"github.com/listenalong/backend/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	IdentityProfileURL string         `json:"identity_profile_url"`
	IdentitySessionURL string         `json:"identity_session_url"`
	MediaTokenURL      string         `json:"media_token_url"`
	MediaClientID      string         `json:"media_client_id"`
	MediaClientSecret  string         `json:"media_client_secret"`
	MediaRedirectURI   string         `json:"media_redirect_uri"`
	OverlaySecret      string         `json:"overlay_secret"`
	UpstreamTimeout    timex.Duration `json:"upstream_timeout"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. The resulting values are copied into the target Config.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.IdentityProfileURL = c.IdentityProfileURL
	config.IdentitySessionURL = c.IdentitySessionURL
	config.MediaTokenURL = c.MediaTokenURL
	config.MediaClientID = c.MediaClientID
	config.MediaClientSecret = c.MediaClientSecret
	config.MediaRedirectURI = c.MediaRedirectURI
	config.OverlaySecret = c.OverlaySecret
	config.UpstreamTimeout = time.Duration(c.UpstreamTimeout.Duration)
	config.ShutdownTimeout = time.Duration(c.ShutdownTimeout.Duration)
}
