// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package featureservice

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akochman/ArcREST/connection"
	"github.com/akochman/ArcREST/internal/arcgistest"
	"github.com/akochman/ArcREST/models"
)

const svcPath = "/rest/services/Roads/FeatureServer"

// ── Helpers ──────────────────────────────────────────────────────────────────

func newTestConnection(t *testing.T, srv *arcgistest.Server, fs afero.Fs) *connection.SiteConnection {
	t.Helper()

	cfg := connection.Config{BaseURL: srv.URL()}
	if fs != nil {
		cfg.FS = fs
	}
	con, err := connection.New(cfg)
	require.NoError(t, err)
	return con
}

func newTestService(t *testing.T, srv *arcgistest.Server, opts ...Option) *FeatureService {
	t.Helper()
	return New(newTestConnection(t, srv, nil), srv.URL()+svcPath, opts...)
}

func serviceDoc(syncEnabled bool, capabilities string) map[string]any {
	return map[string]any{
		"currentVersion":     10.81,
		"serviceDescription": "Road network",
		"capabilities":       capabilities,
		"syncEnabled":        syncEnabled,
		"maxRecordCount":     1000,
		"layers": []map[string]any{
			{"id": 0, "name": "Roads"},
		},
		"tables": []map[string]any{
			{"id": 1, "name": "Inspections"},
		},
	}
}

// ── Metadata ─────────────────────────────────────────────────────────────────

func TestService_InfoLoadsOnceAndCaches(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath, serviceDoc(false, "Query"))
	svc := newTestService(t, srv)

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Road network", info.ServiceDescription)
	assert.Equal(t, 1000, info.MaxRecordCount)
	assert.False(t, info.SyncEnabled)

	_, err = svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count(svcPath), "metadata must be fetched once")

	last, ok := srv.Last(svcPath)
	require.True(t, ok)
	assert.Equal(t, "json", last.Param("f"))
}

func TestService_RefreshDropsCache(t *testing.T) {
	srv := arcgistest.New(t)
	first := serviceDoc(false, "Query")
	second := serviceDoc(false, "Query")
	second["serviceDescription"] = "Road network v2"
	srv.HandleSeq(svcPath, first, second)
	svc := newTestService(t, srv)

	info, err := svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Road network", info.ServiceDescription)

	require.NoError(t, svc.Refresh(context.Background()))

	info, err = svc.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Road network v2", info.ServiceDescription)
	assert.Equal(t, 2, srv.Count(svcPath))
}

func TestService_LoadSurfacesServerError(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath, map[string]any{
		"error": map[string]any{"code": 499, "message": "Token Required"},
	})
	svc := newTestService(t, srv)

	err := svc.Load(context.Background())
	require.Error(t, err)

	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 499, serr.Code)
	assert.Equal(t, "Token Required", serr.Message)
}

func TestService_DiscoveryBuildsChildrenInOrder(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath, serviceDoc(false, "Query"))
	svc := newTestService(t, srv)

	layers, err := svc.Layers(context.Background())
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, svc.URL()+"/0", layers[0].URL())

	tables, err := svc.Tables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, svc.URL()+"/1", tables[0].URL())

	assert.Equal(t, 1, srv.Count(svcPath), "layers and tables share one metadata fetch")
}

// ── Service-wide query ───────────────────────────────────────────────────────

func TestService_QueryDefaults(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath+"/query", map[string]any{"layers": []any{}})
	svc := newTestService(t, srv)

	_, err := svc.Query(context.Background(), nil)
	require.NoError(t, err)

	last, ok := srv.Last(svcPath + "/query")
	require.True(t, ok)
	assert.Equal(t, "GET", last.Method)
	assert.Equal(t, "json", last.Param("f"))
	assert.Equal(t, "true", last.Param("returnGeometry"))
	assert.Equal(t, "false", last.Param("returnIdsOnly"))
	assert.Equal(t, "false", last.Param("returnCountOnly"))
	assert.Equal(t, "false", last.Param("returnZ"))
	assert.Equal(t, "false", last.Param("returnM"))

	for _, key := range []string{"geometry", "geometryType", "spatialRel", "inSR", "layerDefs", "time", "outSR"} {
		assert.False(t, last.HasParam(key), "unexpected parameter %s", key)
	}
}

func TestService_QueryComposesFilters(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath+"/query", map[string]any{"layers": []any{}})
	svc := newTestService(t, srv)

	q := models.NewServiceQuery()
	q.LayerDefs = map[int]string{0: "STATUS='OPEN'"}
	q.Geometry = models.NewEnvelopeFilter(models.Envelope{
		XMin: -104, YMin: 35, XMax: -94, YMax: 41,
		SpatialReference: &models.SpatialReference{WKID: 4326},
	})
	q.OutSR = 3857
	q.ReturnCountOnly = true

	_, err := svc.Query(context.Background(), q)
	require.NoError(t, err)

	last, ok := srv.Last(svcPath + "/query")
	require.True(t, ok)
	assert.JSONEq(t, `{"0":"STATUS='OPEN'"}`, last.Param("layerDefs"))
	assert.Equal(t, models.GeometryEnvelope, last.Param("geometryType"))
	assert.Equal(t, models.SpatialRelIntersects, last.Param("spatialRel"))
	assert.JSONEq(t, `{"wkid":4326}`, last.Param("inSR"))
	assert.Equal(t, "3857", last.Param("outSR"))
	assert.Equal(t, "true", last.Param("returnCountOnly"))
	assert.False(t, last.HasParam("spatialRelationship"),
		"service queries use the spatialRel key")
}

// ── Related records ──────────────────────────────────────────────────────────

func TestService_QueryRelatedRecordsParams(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath+"/queryRelatedRecords", map[string]any{"relatedRecordGroups": []any{}})
	svc := newTestService(t, srv)

	q := models.NewRelatedRecordsQuery(3, 10, 11)
	_, err := svc.QueryRelatedRecords(context.Background(), q)
	require.NoError(t, err)

	last, ok := srv.Last(svcPath + "/queryRelatedRecords")
	require.True(t, ok)
	assert.Equal(t, "GET", last.Method)
	assert.Equal(t, "10,11", last.Param("objectIds"))
	assert.Equal(t, "3", last.Param("relationshipId"))
	assert.Equal(t, "*", last.Param("outFields"))
	assert.Equal(t, "true", last.Param("returnGeometry"))
	for _, key := range []string{"definitionExpression", "gdbVersion", "outSR", "maxAllowableOffset", "geometryPrecision", "returnZ", "returnM"} {
		assert.False(t, last.HasParam(key), "unexpected parameter %s", key)
	}
}

func TestService_QueryRelatedRecordsOptionals(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath+"/queryRelatedRecords", map[string]any{"relatedRecordGroups": []any{}})
	svc := newTestService(t, srv)

	offset := 0.5
	precision := 3
	z, m := true, false

	q := models.NewRelatedRecordsQuery(3, 10)
	q.DefinitionExpression = "STATUS='OPEN'"
	q.GDBVersion = "SDE.dev"
	q.OutSR = 4326
	q.MaxAllowableOffset = &offset
	q.GeometryPrecision = &precision
	q.ReturnZ = &z
	q.ReturnM = &m

	_, err := svc.QueryRelatedRecords(context.Background(), q)
	require.NoError(t, err)

	last, ok := srv.Last(svcPath + "/queryRelatedRecords")
	require.True(t, ok)
	assert.Equal(t, "STATUS='OPEN'", last.Param("definitionExpression"))
	assert.Equal(t, "SDE.dev", last.Param("gdbVersion"))
	assert.Equal(t, "4326", last.Param("outSR"))
	assert.Equal(t, "0.5", last.Param("maxAllowableOffset"))
	assert.Equal(t, "3", last.Param("geometryPrecision"))
	assert.Equal(t, "true", last.Param("returnZ"))
	assert.Equal(t, "false", last.Param("returnM"))
}

func TestService_QueryRelatedRecordsRequiresObjectIDs(t *testing.T) {
	srv := arcgistest.New(t)
	svc := newTestService(t, srv)

	_, err := svc.QueryRelatedRecords(context.Background(), &models.RelatedRecordsQuery{RelationshipID: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ObjectIDs")
	assert.Equal(t, 0, srv.Count(""), "invalid queries must not reach the server")
}

// ── Uploads gating ───────────────────────────────────────────────────────────

func TestService_UploadsNilWithoutSync(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath, serviceDoc(false, "Query"))
	svc := newTestService(t, srv)

	up, err := svc.Uploads(context.Background())
	require.NoError(t, err)
	assert.Nil(t, up)
}

func TestService_UploadsRoundTrip(t *testing.T) {
	srv := arcgistest.New(t)
	srv.Handle(svcPath, serviceDoc(true, "Query,Sync"))
	srv.Handle(svcPath+"/uploads/upload", map[string]any{
		"success": true,
		"item":    map[string]any{"itemID": "ab12"},
	})
	srv.Handle(svcPath+"/uploads/ab12", map[string]any{"itemID": "ab12"})
	srv.Handle(svcPath+"/uploads/ab12/delete", map[string]any{"success": true})

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/edits.sqlite", []byte("edits"), 0o644))
	svc := New(newTestConnection(t, srv, fs), srv.URL()+svcPath)

	up, err := svc.Uploads(context.Background())
	require.NoError(t, err)
	require.NotNil(t, up)
	assert.Equal(t, svc.URL()+"/uploads", up.URL())

	rec, err := up.Upload(context.Background(), "/tmp/edits.sqlite", "nightly edits")
	require.NoError(t, err)
	assert.Equal(t, true, rec["success"])

	last, ok := srv.Last(svcPath + "/uploads/upload")
	require.True(t, ok)
	assert.Equal(t, "nightly edits", last.Param("description"))
	assert.Equal(t, "edits.sqlite", last.Files["file"])

	_, err = up.Info(context.Background(), "ab12")
	require.NoError(t, err)
	_, err = up.Delete(context.Background(), "ab12")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count(svcPath+"/uploads/ab12"))
	assert.Equal(t, 1, srv.Count(svcPath+"/uploads/ab12/delete"))
}
