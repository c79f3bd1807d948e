// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package featureservice

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akochman/ArcREST/connection"
	"github.com/akochman/ArcREST/logger"
	"github.com/akochman/ArcREST/models"
)

// Option configures a FeatureService.
type Option func(*FeatureService)

// WithLogger routes the service's diagnostics to log instead of the no-op
// default. The logger is propagated to every layer the service builds.
func WithLogger(log *logger.Logger) Option {
	return func(s *FeatureService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPollPolicy overrides the default backoff schedule used while waiting
// for asynchronous replica jobs.
func WithPollPolicy(p models.PollPolicy) Option {
	return func(s *FeatureService) { s.poll = p }
}

// FeatureService is a client-side view of one feature service endpoint.
// It caches the service metadata and the layer and table bindings built
// from it; both are loaded on first use and survive until Refresh.
type FeatureService struct {
	con  connection.Connection
	url  string
	log  *logger.Logger
	poll models.PollPolicy

	mu     sync.RWMutex
	info   *models.ServiceInfo
	layers []*FeatureLayer
	tables []*TableLayer
}

// New binds the feature service at url over con. The URL addresses the
// service root, for example
// https://host/arcgis/rest/services/Roads/FeatureServer.
func New(con connection.Connection, url string, opts ...Option) *FeatureService {
	s := &FeatureService{
		con:  con,
		url:  strings.TrimRight(url, "/"),
		log:  logger.Nop(),
		poll: models.DefaultPollPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the service endpoint this client is bound to.
func (s *FeatureService) URL() string { return s.url }

// Load fetches the service metadata and rebuilds the layer and table
// bindings from the descriptor's layer lists.
func (s *FeatureService) Load(ctx context.Context) error {
	rec, err := s.con.Get(ctx, s.url, models.Params{"f": "json"})
	if err != nil {
		return fmt.Errorf("load service %s: %w", s.url, err)
	}
	if serr := serverErrorFromRecord(rec); serr != nil {
		return fmt.Errorf("load service %s: %w", s.url, serr)
	}
	info, err := models.DecodeServiceInfo(rec)
	if err != nil {
		return fmt.Errorf("decode service metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.info = info
	s.layers = make([]*FeatureLayer, 0, len(info.Layers))
	for _, ref := range info.Layers {
		s.layers = append(s.layers, NewLayer(s.con, childURL(s.url, ref.ID), s.log))
	}
	s.tables = make([]*TableLayer, 0, len(info.Tables))
	for _, ref := range info.Tables {
		s.tables = append(s.tables, NewTable(s.con, childURL(s.url, ref.ID), s.log))
	}
	return nil
}

// Refresh drops every cached view of the service and loads it again.
func (s *FeatureService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.info = nil
	s.layers = nil
	s.tables = nil
	s.mu.Unlock()
	return s.Load(ctx)
}

// Info returns the service metadata, loading it on first access.
func (s *FeatureService) Info(ctx context.Context) (*models.ServiceInfo, error) {
	s.mu.RLock()
	info := s.info
	s.mu.RUnlock()
	if info != nil {
		return info, nil
	}
	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info, nil
}

// Layers returns one FeatureLayer per layer the service declares, in
// descriptor order.
func (s *FeatureService) Layers(ctx context.Context) ([]*FeatureLayer, error) {
	if _, err := s.Info(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers, nil
}

// Tables returns one TableLayer per table the service declares, in
// descriptor order.
func (s *FeatureService) Tables(ctx context.Context) ([]*TableLayer, error) {
	if _, err := s.Info(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables, nil
}

// Uploads returns the uploads collaborator for sync-enabled services and
// nil for everything else. No request is made for services without sync.
func (s *FeatureService) Uploads(ctx context.Context) (*Uploads, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return nil, err
	}
	if !info.SyncEnabled {
		return nil, nil
	}
	return newUploads(s.con, s.url+"/uploads", s.log), nil
}

// Query runs a service-wide query across the layers selected by
// q.LayerDefs. A nil q queries with the defaults.
func (s *FeatureService) Query(ctx context.Context, q *models.ServiceQuery) (models.Record, error) {
	if q == nil {
		q = models.NewServiceQuery()
	}
	p := models.Params{
		"f":               "json",
		"returnGeometry":  q.ReturnGeometry,
		"returnIdsOnly":   q.ReturnIDsOnly,
		"returnCountOnly": q.ReturnCountOnly,
		"returnZ":         q.ReturnZ,
		"returnM":         q.ReturnM,
	}
	if len(q.LayerDefs) > 0 {
		p["layerDefs"] = q.LayerDefs
	}
	q.Geometry.ApplyTo(p, models.SpatialRelKeyService)
	if v := models.SpatialRefValue(q.OutSR); v != nil {
		p["outSR"] = v
	}
	if t := q.Time.Value(); t != "" {
		p["time"] = t
	}

	rec, err := s.con.Get(ctx, s.url+"/query", p)
	if err != nil {
		return nil, fmt.Errorf("service query: %w", err)
	}
	return rec, nil
}

// QueryRelatedRecords fetches records related to the given objects through
// one relationship. The query must name at least one object id.
func (s *FeatureService) QueryRelatedRecords(ctx context.Context, q *models.RelatedRecordsQuery) (models.Record, error) {
	return queryRelatedRecords(ctx, s.con, s.url, q)
}

func queryRelatedRecords(ctx context.Context, con connection.Connection, baseURL string, q *models.RelatedRecordsQuery) (models.Record, error) {
	if q == nil {
		q = &models.RelatedRecordsQuery{}
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("related records query: %w", err)
	}

	p := models.Params{
		"f":              "json",
		"objectIds":      models.JoinIDs(q.ObjectIDs),
		"relationshipId": q.RelationshipID,
		"returnGeometry": q.ReturnGeometry,
	}
	if q.OutFields != "" {
		p["outFields"] = q.OutFields
	}
	if q.DefinitionExpression != "" {
		p["definitionExpression"] = q.DefinitionExpression
	}
	if q.GDBVersion != "" {
		p["gdbVersion"] = q.GDBVersion
	}
	if v := models.SpatialRefValue(q.OutSR); v != nil {
		p["outSR"] = v
	}
	if q.MaxAllowableOffset != nil {
		p["maxAllowableOffset"] = *q.MaxAllowableOffset
	}
	if q.GeometryPrecision != nil {
		p["geometryPrecision"] = *q.GeometryPrecision
	}
	if q.ReturnZ != nil {
		p["returnZ"] = *q.ReturnZ
	}
	if q.ReturnM != nil {
		p["returnM"] = *q.ReturnM
	}

	rec, err := con.Get(ctx, baseURL+"/queryRelatedRecords", p)
	if err != nil {
		return nil, fmt.Errorf("related records query: %w", err)
	}
	return rec, nil
}

func childURL(base string, id int) string {
	return fmt.Sprintf("%s/%d", base, id)
}
