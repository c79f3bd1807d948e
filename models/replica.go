// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Data formats a replica can be exported in.
const (
	ReplicaFormatFileGDB   = "filegdb"
	ReplicaFormatJSON      = "json"
	ReplicaFormatSQLite    = "sqlite"
	ReplicaFormatShapefile = "shapefile"
)

// Sync models a replica can be registered with.
const (
	SyncModelNone       = "none"
	SyncModelPerLayer   = "perLayer"
	SyncModelPerReplica = "perReplica"
)

// Attachment sync directions.
const (
	AttachmentsSyncNone          = "none"
	AttachmentsSyncUpload        = "upload"
	AttachmentsSyncBidirectional = "bidirectional"
)

// Replica transport types.
const (
	TransportTypeURL      = "esriTransportTypeUrl"
	TransportTypeEmbedded = "esriTransportTypeEmbedded"
)

// Sync directions for replica synchronization.
const (
	SyncDirectionSnapshot      = "snapshot"
	SyncDirectionDownload      = "download"
	SyncDirectionUpload        = "upload"
	SyncDirectionBidirectional = "bidirectional"
)

// Terminal status values reported by an async job's status resource. Any
// other status, and an absent status field, means the job is still running.
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// CreateReplicaOptions holds the parameters of a replica creation call.
type CreateReplicaOptions struct {
	// ReplicaName identifies the replica on the server.
	ReplicaName string
	// Layers lists the layer ids included in the replica.
	Layers []int
	// LayerQueries narrows per-layer content; keys are layer ids as strings.
	LayerQueries map[string]any
	// Geometry filters the replica spatially.
	Geometry *GeometryFilter
	// ReplicaSR is the replica's spatial reference. Omitted when nil.
	ReplicaSR any
	// TransportType is one of the TransportType* constants.
	TransportType string
	// AttachmentsSyncDirection is one of the AttachmentsSync* constants.
	AttachmentsSyncDirection string
	// SyncModel is one of the SyncModel* constants.
	SyncModel string
	// DataFormat is one of the ReplicaFormat* constants, matched
	// case-insensitively. Anything else fails validation before a request
	// is made.
	DataFormat string
	// ReplicaOptions passes additional replica parameters through verbatim.
	ReplicaOptions map[string]any

	ReturnAttachments          bool
	ReturnAttachmentsDataByURL bool

	// Async requests server-side job execution; Wait additionally polls the
	// job to a terminal state before returning.
	Async bool
	Wait  bool
	// OutDir, when set, downloads the exported replica file into the
	// directory once the result URL is known.
	OutDir string
}

// NewCreateReplicaOptions returns replica options with the service defaults:
// JSON payload, no sync registration, no attachment sync, URL transport.
func NewCreateReplicaOptions(name string, layers ...int) *CreateReplicaOptions {
	return &CreateReplicaOptions{
		ReplicaName:              name,
		Layers:                   layers,
		TransportType:            TransportTypeURL,
		AttachmentsSyncDirection: AttachmentsSyncNone,
		SyncModel:                SyncModelNone,
		DataFormat:               ReplicaFormatJSON,
	}
}

// Validate rejects options that must never reach the server, most notably a
// data format outside the supported set.
func (o CreateReplicaOptions) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.ReplicaName, validation.Required),
		validation.Field(&o.DataFormat, validation.Required,
			validation.In(
				ReplicaFormatFileGDB,
				ReplicaFormatJSON,
				ReplicaFormatSQLite,
				ReplicaFormatShapefile,
			)),
	)
}

// Normalized returns a copy with the case-insensitive enums lowered and zero
// fields replaced by the defaults, ready for validation and encoding.
func (o CreateReplicaOptions) Normalized() CreateReplicaOptions {
	o.DataFormat = strings.ToLower(o.DataFormat)
	if o.DataFormat == "" {
		o.DataFormat = ReplicaFormatJSON
	}
	if o.SyncModel == "" {
		o.SyncModel = SyncModelNone
	}
	if o.AttachmentsSyncDirection == "" {
		o.AttachmentsSyncDirection = AttachmentsSyncNone
	}
	if o.TransportType == "" {
		o.TransportType = TransportTypeURL
	}
	return o
}

// SynchronizeReplicaOptions defines the full parameter shape of a replica
// synchronization call. The operation itself is not implemented; the type
// documents the contract.
type SynchronizeReplicaOptions struct {
	ReplicaID                 string
	TransportType             string
	ReplicaServerGen          int64
	ReturnIDsForAdds          bool
	Edits                     any
	ReturnAttachmentDataByURL bool
	Async                     bool
	SyncDirection             string
	SyncLayers                string
	EditsUploadID             string
	EditsUploadFormat         string
	DataFormat                string
	RollbackOnFailure         bool
}

// NewSynchronizeReplicaOptions returns the documented synchronization
// defaults for the given replica.
func NewSynchronizeReplicaOptions(replicaID string) *SynchronizeReplicaOptions {
	return &SynchronizeReplicaOptions{
		ReplicaID:         replicaID,
		TransportType:     TransportTypeURL,
		SyncDirection:     SyncDirectionSnapshot,
		SyncLayers:        SyncModelPerReplica,
		DataFormat:        ReplicaFormatJSON,
		RollbackOnFailure: true,
	}
}

// PollPolicy bounds how an async job is polled to completion.
type PollPolicy struct {
	// InitialInterval is the delay before the first re-poll.
	InitialInterval time.Duration
	// MaxInterval caps the delay between polls as backoff grows.
	MaxInterval time.Duration
	// Multiplier grows the delay after every poll.
	Multiplier float64
	// MaxElapsedTime bounds the whole wait. Zero means no bound.
	MaxElapsedTime time.Duration
}

// DefaultPollPolicy returns the polling defaults: start at one second, back
// off by half each round up to thirty seconds, give up after fifteen minutes.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      1.5,
		MaxElapsedTime:  15 * time.Minute,
	}
}
