package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidSiteConfigs indicates invalid site settings (for example, a
	// missing or unparseable site URL, or half of a credential pair).
	ErrInvalidSiteConfigs = errors.New("invalid site configuration")
	// ErrInvalidClientConfigs indicates invalid transport settings (for
	// example, a negative retry count).
	ErrInvalidClientConfigs = errors.New("invalid client configuration")
	// ErrInvalidReplicaConfigs indicates invalid replica poll settings (for
	// example, a poll interval above the poll cap).
	ErrInvalidReplicaConfigs = errors.New("invalid replica configuration")
)
