package config

import (
	"fmt"
	"time"
)

// ClientSite holds the site address and credentials in the form consumed by
// the connection layer.
type ClientSite struct {
	// URL is the site root every relative request path hangs off.
	URL string
	// Username and Password drive on-demand token generation.
	Username string
	Password string
	// Token is a pre-acquired token used as-is.
	Token string
	// Referer binds generated tokens to a referer instead of an IP.
	Referer string
}

// ClientHTTP holds transport behaviour settings for outbound requests.
type ClientHTTP struct {
	// RequestTimeout bounds a single round trip. Zero keeps the transport
	// default.
	RequestTimeout time.Duration
	// RetryCount is how many times a failed request is retried.
	RetryCount int
	// RetryWaitTime is the pause between retries.
	RetryWaitTime time.Duration
}

// ClientReplica holds replica job handling settings.
type ClientReplica struct {
	// PollInitialInterval, PollMaxInterval and PollMaxElapsedTime shape the
	// status poll backoff. Zeroes keep the library defaults.
	PollInitialInterval time.Duration
	PollMaxInterval     time.Duration
	PollMaxElapsedTime  time.Duration
	// OutDir is where exported replica files are downloaded.
	OutDir string
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Site contains the remote site address and credentials.
	Site ClientSite
	// HTTP contains transport behaviour settings.
	HTTP ClientHTTP
	// Replica contains replica poll and export settings.
	Replica ClientReplica
}

// GetClientConfig builds and validates a client-specific config view from
// the merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		Site: ClientSite{
			URL:      cfg.Site.URL,
			Username: cfg.Site.Username,
			Password: cfg.Site.Password,
			Token:    cfg.Site.Token,
			Referer:  cfg.Site.Referer,
		},
		HTTP: ClientHTTP{
			RequestTimeout: cfg.Client.RequestTimeout,
			RetryCount:     cfg.Client.RetryCount,
			RetryWaitTime:  cfg.Client.RetryWaitTime,
		},
		Replica: ClientReplica{
			PollInitialInterval: cfg.Replica.PollInitialInterval,
			PollMaxInterval:     cfg.Replica.PollMaxInterval,
			PollMaxElapsedTime:  cfg.Replica.PollMaxElapsedTime,
			OutDir:              cfg.Replica.OutDir,
		},
	}

	return clientCfg, clientCfg.validate()
}
