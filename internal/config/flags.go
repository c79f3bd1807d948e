package config

import (
	"errors"
	"flag"
	"net/url"
	"time"
)

// SiteURL holds a validated ArcGIS site root URL.
// It implements the flag.Value interface.
type SiteURL struct {
	raw string
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-url site root URL, e.g. https://gis.example.com/arcgis
//	-username/-password credentials for token generation
//	-token pre-acquired token
//	-referer referer value generated tokens are bound to
//	-request-timeout single request timeout (e.g., "30s", "1m")
//	-retry-count retry attempts for failed requests
//	-retry-wait pause between retries (e.g., "500ms")
//	-poll-initial first replica status re-poll delay
//	-poll-max-interval cap on the replica poll delay
//	-poll-max-elapsed total replica poll budget
//	-out-dir directory replica exports are downloaded into
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var siteURL SiteURL
	var username string
	var password string
	var token string
	var referer string
	var requestTimeout time.Duration
	var retryCount int
	var retryWait time.Duration
	var pollInitial time.Duration
	var pollMaxInterval time.Duration
	var pollMaxElapsed time.Duration
	var outDir string
	var jsonConfigPath string

	flag.Var(&siteURL, "url", "Site root URL")
	flag.StringVar(&username, "username", "", "Username for token generation")
	flag.StringVar(&password, "password", "", "Password for token generation")
	flag.StringVar(&token, "token", "", "Pre-acquired token")
	flag.StringVar(&referer, "referer", "", "Referer generated tokens are bound to")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.IntVar(&retryCount, "retry-count", 0, "Retry attempts for failed requests")
	flag.DurationVar(&retryWait, "retry-wait", 0, "Pause between retries (e.g., 500ms)")
	flag.DurationVar(&pollInitial, "poll-initial", 0, "First replica status re-poll delay")
	flag.DurationVar(&pollMaxInterval, "poll-max-interval", 0, "Cap on the replica poll delay")
	flag.DurationVar(&pollMaxElapsed, "poll-max-elapsed", 0, "Total replica poll budget")
	flag.StringVar(&outDir, "out-dir", "", "Directory replica exports land in")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Site: Site{
			URL:      siteURL.String(),
			Username: username,
			Password: password,
			Token:    token,
			Referer:  referer,
		},
		Client: Client{
			RequestTimeout: requestTimeout,
			RetryCount:     retryCount,
			RetryWaitTime:  retryWait,
		},
		Replica: Replica{
			PollInitialInterval: pollInitial,
			PollMaxInterval:     pollMaxInterval,
			PollMaxElapsedTime:  pollMaxElapsed,
			OutDir:              outDir,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns the raw URL, empty when the flag was never set.
func (s *SiteURL) String() string {
	return s.raw
}

// Set parses and validates the input as an absolute http or https URL and
// stores it. It returns an error when the scheme or host is missing.
func (s *SiteURL) Set(v string) error {
	u, err := url.Parse(v)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("site URL needs an http or https scheme")
	}
	if u.Host == "" {
		return errors.New("site URL needs a host")
	}

	s.raw = v
	return nil
}
