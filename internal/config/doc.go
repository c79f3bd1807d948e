// Package config provides configuration loading, merging, and validation
// facilities for command-line tooling built on the client library.
//
// Configuration is assembled from multiple sources in the following priority
// order (a field set by a higher source is never overwritten by a lower one):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry points are [GetStructuredConfig] for the raw merged
// configuration and [GetClientConfig] for the client-specific view.
package config
