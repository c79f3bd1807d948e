// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package featureservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akochman/ArcREST/models"
)

// ReplicaResult carries a replica operation's response payload and, when an
// exported file was downloaded, its local path.
type ReplicaResult struct {
	Payload models.Record
	Path    string
}

// ListReplicas lists the replicas registered with the service. The endpoint
// answers with a bare array, so the result holds it under the "items" key.
func (s *FeatureService) ListReplicas(ctx context.Context) (models.Record, error) {
	rec, err := s.con.Get(ctx, s.url+"/replicas", models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("list replicas: %w", err)
	}
	return rec, nil
}

// ReplicaInfo fetches the descriptor of one registered replica.
func (s *FeatureService) ReplicaInfo(ctx context.Context, replicaID string) (models.Record, error) {
	rec, err := s.con.Get(ctx, s.url+"/replicas/"+replicaID, models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("replica info: %w", err)
	}
	return rec, nil
}

// UnregisterReplica removes a replica registration from the service.
func (s *FeatureService) UnregisterReplica(ctx context.Context, replicaID string) (models.Record, error) {
	p := models.Params{
		"f":         "json",
		"replicaID": replicaID,
	}
	rec, err := s.con.Post(ctx, s.url+"/unRegisterReplica", p)
	if err != nil {
		return nil, fmt.Errorf("unregister replica: %w", err)
	}
	return rec, nil
}

// ReplicaStatus reads the status resource of an asynchronous replica job.
// jobURL is the job endpoint from the create response; "/status" is
// appended here.
func (s *FeatureService) ReplicaStatus(ctx context.Context, jobURL string) (models.Record, error) {
	rec, err := s.con.Get(ctx, jobURL+"/status", models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("replica status: %w", err)
	}
	return rec, nil
}

// CreateReplica registers a replica covering the given layers and returns
// the server's payload. Services with sync disabled and no Extract
// capability fail with ErrSyncNotSupported before any request is made, as
// does an options set with an unsupported DataFormat.
//
// With Async and Wait both set, the call polls the job's status resource
// until it completes or the poll policy gives up; a failed job is returned
// as an ordinary payload for the caller to inspect. When OutDir is set and
// the final payload carries a result URL, the exported file is downloaded
// there and its path is returned alongside the payload.
func (s *FeatureService) CreateReplica(ctx context.Context, opts *models.CreateReplicaOptions) (*ReplicaResult, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	if !info.SyncEnabled && !info.HasCapability("Extract") {
		return nil, ErrSyncNotSupported
	}

	if opts == nil {
		opts = &models.CreateReplicaOptions{}
	}
	o := opts.Normalized()
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("create replica: %w", err)
	}

	p := models.Params{
		"f":                          "json",
		"replicaName":                o.ReplicaName,
		"layers":                     models.JoinIDs(o.Layers),
		"returnAttachments":          o.ReturnAttachments,
		"returnAttachmentsDatabyURL": o.ReturnAttachmentsDataByURL,
		"attachmentsSyncDirection":   o.AttachmentsSyncDirection,
		"async":                      o.Async,
		"syncModel":                  o.SyncModel,
		"dataFormat":                 o.DataFormat,
		"transportType":              o.TransportType,
	}
	if len(o.LayerQueries) > 0 {
		p["layerQueries"] = o.LayerQueries
	}
	o.Geometry.ApplyTo(p, models.SpatialRelKeyService)
	if v := models.SpatialRefValue(o.ReplicaSR); v != nil {
		p["replicaSR"] = v
	}
	if len(o.ReplicaOptions) > 0 {
		p["replicaOptions"] = o.ReplicaOptions
	}

	res, err := s.con.Post(ctx, s.url+"/createReplica", p)
	if err != nil {
		return nil, fmt.Errorf("create replica: %w", err)
	}

	if o.Async && o.Wait {
		res, err = s.waitForJob(ctx, res)
		if err != nil {
			return nil, fmt.Errorf("create replica: %w", err)
		}
	}

	result := &ReplicaResult{Payload: res}
	if o.OutDir != "" {
		if dl := downloadURL(res); dl != "" {
			path, err := s.con.Download(ctx, dl, nil, o.OutDir)
			if err != nil {
				return nil, fmt.Errorf("download replica: %w", err)
			}
			result.Path = path
		}
	}
	return result, nil
}

// ExportReplica snapshots the given layers into a downloadable replica file
// under outDir. The replica is created asynchronously under a generated
// name and the call blocks until the export job finishes and the file is
// fetched.
func (s *FeatureService) ExportReplica(ctx context.Context, layers []int, outDir string) (*ReplicaResult, error) {
	opts := models.NewCreateReplicaOptions("export_"+uuid.NewString(), layers...)
	opts.Async = true
	opts.Wait = true
	opts.OutDir = outDir
	opts.ReturnAttachments = true
	return s.CreateReplica(ctx, opts)
}

// SynchronizeReplica is not wired to the remote API. The options type
// documents the full parameter contract, but calling this performs no
// request and always returns ErrNotImplemented.
func (s *FeatureService) SynchronizeReplica(ctx context.Context, opts *models.SynchronizeReplicaOptions) (models.Record, error) {
	return nil, fmt.Errorf("synchronize replica: %w", ErrNotImplemented)
}

// downloadURL picks the exported file's URL out of a terminal job payload.
func downloadURL(rec models.Record) string {
	if u := rec.Str("resultUrl"); u != "" {
		return u
	}
	return rec.Str("responseUrl")
}
