// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package featureservice

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/akochman/ArcREST/connection"
	"github.com/akochman/ArcREST/logger"
	"github.com/akochman/ArcREST/models"
)

// FeatureLayer is a client-side view of one layer endpoint. Metadata is
// loaded lazily and cached until Refresh.
type FeatureLayer struct {
	con connection.Connection
	url string
	log *logger.Logger

	mu   sync.RWMutex
	info *models.LayerInfo
}

// TableLayer is a non-spatial layer. It behaves exactly like FeatureLayer.
type TableLayer struct {
	FeatureLayer
}

// NewLayer binds the layer at url over con. A nil log disables diagnostics.
func NewLayer(con connection.Connection, url string, log *logger.Logger) *FeatureLayer {
	if log == nil {
		log = logger.Nop()
	}
	return &FeatureLayer{
		con: con,
		url: strings.TrimRight(url, "/"),
		log: log,
	}
}

// NewTable binds the table at url over con. A nil log disables diagnostics.
func NewTable(con connection.Connection, url string, log *logger.Logger) *TableLayer {
	if log == nil {
		log = logger.Nop()
	}
	t := &TableLayer{}
	t.con = con
	t.url = strings.TrimRight(url, "/")
	t.log = log
	return t
}

// URL returns the layer endpoint this client is bound to.
func (l *FeatureLayer) URL() string { return l.url }

// Load fetches the layer metadata and replaces the cached copy.
func (l *FeatureLayer) Load(ctx context.Context) error {
	rec, err := l.con.Get(ctx, l.url, models.Params{"f": "json"})
	if err != nil {
		return fmt.Errorf("load layer %s: %w", l.url, err)
	}
	if serr := serverErrorFromRecord(rec); serr != nil {
		return fmt.Errorf("load layer %s: %w", l.url, serr)
	}
	info, err := models.DecodeLayerInfo(rec)
	if err != nil {
		return fmt.Errorf("decode layer metadata: %w", err)
	}

	l.mu.Lock()
	l.info = info
	l.mu.Unlock()
	return nil
}

// Refresh drops the cached metadata and loads it again.
func (l *FeatureLayer) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.info = nil
	l.mu.Unlock()
	return l.Load(ctx)
}

// Info returns the layer metadata, loading it on first access.
func (l *FeatureLayer) Info(ctx context.Context) (*models.LayerInfo, error) {
	l.mu.RLock()
	info := l.info
	l.mu.RUnlock()
	if info != nil {
		return info, nil
	}
	if err := l.Load(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.info, nil
}

// Query runs the layer's query operation. A nil q selects everything with
// the defaults; empty Where and OutFields fall back to "1=1" and "*".
//
// Unlike the transport-level errors, a failure the service reports inside a
// 200 response is surfaced here as a *ServerError.
func (l *FeatureLayer) Query(ctx context.Context, q *models.LayerQuery) (models.Record, error) {
	if q == nil {
		q = models.NewLayerQuery()
	}
	where := q.Where
	if where == "" {
		where = "1=1"
	}
	outFields := q.OutFields
	if outFields == "" {
		outFields = "*"
	}

	p := models.Params{
		"f":                    "json",
		"where":                where,
		"outFields":            outFields,
		"returnGeometry":       q.ReturnGeometry,
		"returnIdsOnly":        q.ReturnIDsOnly,
		"returnCountOnly":      q.ReturnCountOnly,
		"returnDistinctValues": q.ReturnDistinct,
		"returnExtentOnly":     q.ReturnExtentOnly,
	}
	for k, v := range q.Extra {
		p[k] = v
	}
	if t := q.Time.Value(); t != "" {
		p["time"] = t
	}
	q.Geometry.ApplyTo(p, models.SpatialRelKeyLayer)
	if len(q.ObjectIDs) > 0 {
		p["objectIds"] = models.JoinIDs(q.ObjectIDs)
	}
	if q.ResultOffset != nil {
		p["resultOffset"] = *q.ResultOffset
	}
	if q.ResultRecordCount != nil {
		p["resultRecordCount"] = *q.ResultRecordCount
	}
	if q.GroupByFields != "" {
		p["groupByFieldsForStatistics"] = q.GroupByFields
	}
	if len(q.Statistics) > 0 {
		p["outStatistics"] = q.Statistics
	}

	rec, err := l.con.Post(ctx, l.url+"/query", p)
	if err != nil {
		return nil, fmt.Errorf("layer query: %w", err)
	}
	if serr := serverErrorFromRecord(rec); serr != nil {
		return nil, serr
	}
	return rec, nil
}

// QueryRelatedRecords fetches records related to the given objects through
// one relationship. The query must name at least one object id.
func (l *FeatureLayer) QueryRelatedRecords(ctx context.Context, q *models.RelatedRecordsQuery) (models.Record, error) {
	return queryRelatedRecords(ctx, l.con, l.url, q)
}

// AddFeatures inserts features into the layer. features may be a single
// feature or a list; see models.NormalizeFeatures for the accepted shapes.
func (l *FeatureLayer) AddFeatures(ctx context.Context, features any, opts *models.EditOptions) (models.Record, error) {
	return l.postFeatures(ctx, "addFeatures", features, opts)
}

// UpdateFeatures rewrites existing features in the layer. features may be a
// single feature or a list, each carrying its object id attribute.
func (l *FeatureLayer) UpdateFeatures(ctx context.Context, features any, opts *models.EditOptions) (models.Record, error) {
	return l.postFeatures(ctx, "updateFeatures", features, opts)
}

func (l *FeatureLayer) postFeatures(ctx context.Context, op string, features any, opts *models.EditOptions) (models.Record, error) {
	list, err := models.NormalizeFeatures(features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if opts == nil {
		opts = models.NewEditOptions()
	}

	p := models.Params{
		"f":                 "json",
		"features":          list,
		"rollbackOnFailure": opts.RollbackOnFailure,
	}
	if opts.GDBVersion != "" {
		p["gdbVersion"] = opts.GDBVersion
	}

	rec, err := l.con.Post(ctx, l.url+"/"+op, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// DeleteFeatures removes the features selected by opts. Empty selectors are
// omitted from the request; the server decides what an unconstrained delete
// means.
func (l *FeatureLayer) DeleteFeatures(ctx context.Context, opts *models.DeleteOptions) (models.Record, error) {
	if opts == nil {
		opts = models.NewDeleteOptions()
	}

	p := models.Params{
		"f":                 "json",
		"rollbackOnFailure": opts.RollbackOnFailure,
	}
	opts.Geometry.ApplyTo(p, models.SpatialRelKeyService)
	if opts.Where != "" {
		p["where"] = opts.Where
	}
	if len(opts.ObjectIDs) > 0 {
		p["objectIds"] = models.JoinIDs(opts.ObjectIDs)
	}
	if opts.GDBVersion != "" {
		p["gdbVersion"] = opts.GDBVersion
	}

	rec, err := l.con.Post(ctx, l.url+"/deleteFeatures", p)
	if err != nil {
		return nil, fmt.Errorf("delete features: %w", err)
	}
	return rec, nil
}

// ApplyEdits posts adds, updates and deletes in one call. Empty edit sets
// are left out of the request entirely; Deletes is the comma-separated
// object id form the API expects.
func (l *FeatureLayer) ApplyEdits(ctx context.Context, opts *models.ApplyEditsOptions) (models.Record, error) {
	if opts == nil {
		opts = models.NewApplyEditsOptions()
	}

	p := models.Params{
		"f":                 "json",
		"useGlobalIds":      opts.UseGlobalIDs,
		"rollbackOnFailure": opts.RollbackOnFailure,
	}
	if opts.GDBVersion != "" {
		p["gdbVersion"] = opts.GDBVersion
	}
	if len(opts.Adds) > 0 {
		p["adds"] = opts.Adds
	}
	if len(opts.Updates) > 0 {
		p["updates"] = opts.Updates
	}
	if opts.Deletes != "" {
		p["deletes"] = opts.Deletes
	}

	rec, err := l.con.Post(ctx, l.url+"/applyEdits", p)
	if err != nil {
		return nil, fmt.Errorf("apply edits: %w", err)
	}
	return rec, nil
}

// Calculate updates field values on the features matched by where.
// expressions may be a single expression mapping or a list; sqlFormat
// outside {standard, native} is coerced to standard.
func (l *FeatureLayer) Calculate(ctx context.Context, where string, expressions any, sqlFormat string) (models.Record, error) {
	exprs, err := models.NormalizeCalcExpressions(expressions)
	if err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}

	format := strings.ToLower(sqlFormat)
	switch format {
	case models.SQLFormatStandard, models.SQLFormatNative:
	case "":
		format = models.SQLFormatStandard
	default:
		l.log.Warn().Str("sqlFormat", sqlFormat).Msg("unsupported sqlFormat coerced to standard")
		format = models.SQLFormatStandard
	}

	p := models.Params{
		"f":              "json",
		"where":          where,
		"calcExpression": exprs,
		"sqlFormat":      format,
	}

	rec, err := l.con.Post(ctx, l.url+"/calculate", p)
	if err != nil {
		return nil, fmt.Errorf("calculate: %w", err)
	}
	return rec, nil
}

// HTMLPopup fetches the popup document for one feature. Layers whose
// declared popup type is none yield (nil, nil) without a request.
func (l *FeatureLayer) HTMLPopup(ctx context.Context, objectID int) (models.Record, error) {
	info, err := l.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info.HTMLPopupType == "" || info.HTMLPopupType == models.HTMLPopupTypeNone {
		return nil, nil
	}

	rec, err := l.con.Get(ctx, l.featureURL(objectID, "htmlPopup"), models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("html popup: %w", err)
	}
	return rec, nil
}

// ListAttachments lists the attachments of one feature.
func (l *FeatureLayer) ListAttachments(ctx context.Context, objectID int) (models.Record, error) {
	rec, err := l.con.Get(ctx, l.featureURL(objectID, "attachments"), models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return rec, nil
}

// AddAttachment uploads the file at path as a new attachment of one
// feature. Layers without attachment support fail with
// ErrAttachmentsNotSupported before any request is made.
func (l *FeatureLayer) AddAttachment(ctx context.Context, objectID int, path string) (models.Record, error) {
	if err := l.requireAttachments(ctx); err != nil {
		return nil, err
	}

	rec, err := l.con.Post(ctx, l.featureURL(objectID, "addAttachment"),
		models.Params{"f": "json"},
		models.File{Param: "attachment", Path: path})
	if err != nil {
		return nil, fmt.Errorf("add attachment: %w", err)
	}
	return rec, nil
}

// UpdateAttachment replaces the content of an existing attachment with the
// file at path.
func (l *FeatureLayer) UpdateAttachment(ctx context.Context, objectID, attachmentID int, path string) (models.Record, error) {
	if err := l.requireAttachments(ctx); err != nil {
		return nil, err
	}

	rec, err := l.con.Post(ctx, l.featureURL(objectID, "updateAttachment"),
		models.Params{"f": "json", "attachmentId": attachmentID},
		models.File{Param: "attachment", Path: path})
	if err != nil {
		return nil, fmt.Errorf("update attachment: %w", err)
	}
	return rec, nil
}

// DeleteAttachments removes the given attachments from one feature.
func (l *FeatureLayer) DeleteAttachments(ctx context.Context, objectID int, attachmentIDs ...int) (models.Record, error) {
	if err := l.requireAttachments(ctx); err != nil {
		return nil, err
	}

	rec, err := l.con.Post(ctx, l.featureURL(objectID, "deleteAttachments"),
		models.Params{"f": "json", "attachmentIds": models.JoinIDs(attachmentIDs)})
	if err != nil {
		return nil, fmt.Errorf("delete attachments: %w", err)
	}
	return rec, nil
}

func (l *FeatureLayer) requireAttachments(ctx context.Context) error {
	info, err := l.Info(ctx)
	if err != nil {
		return err
	}
	if !info.HasAttachments {
		return ErrAttachmentsNotSupported
	}
	return nil
}

func (l *FeatureLayer) featureURL(objectID int, op string) string {
	return l.url + "/" + strconv.Itoa(objectID) + "/" + op
}
