package config

import "net/url"

// validate checks that the merged [StructuredConfig] is syntactically sound.
//
// Only the site URL shape is checked here; presence rules live in
// [ClientConfig.validate] so that partial configs can still be built and
// inspected by tooling.
func (cfg *StructuredConfig) validate() error {
	if cfg.Site.URL != "" {
		if _, err := url.Parse(cfg.Site.URL); err != nil {
			return ErrInvalidSiteConfigs
		}
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Site.URL == "" {
		return ErrInvalidSiteConfigs
	}

	if (cfg.Site.Username == "") != (cfg.Site.Password == "") {
		return ErrInvalidSiteConfigs
	}

	if cfg.HTTP.RetryCount < 0 || cfg.HTTP.RetryWaitTime < 0 {
		return ErrInvalidClientConfigs
	}

	if cfg.Replica.PollMaxInterval != 0 && cfg.Replica.PollInitialInterval > cfg.Replica.PollMaxInterval {
		return ErrInvalidReplicaConfigs
	}

	return nil
}
