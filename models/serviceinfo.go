// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The ArcREST Authors

package models

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

// HTML popup types a layer may declare.
const (
	HTMLPopupTypeNone       = "esriServerHTMLPopupTypeNone"
	HTMLPopupTypeAsHTMLText = "esriServerHTMLPopupTypeAsHTMLText"
	HTMLPopupTypeAsURL      = "esriServerHTMLPopupTypeAsURL"
)

// LayerRef is the short layer or table descriptor embedded in a service's
// metadata document.
type LayerRef struct {
	ID   int    `mapstructure:"id" json:"id"`
	Name string `mapstructure:"name" json:"name,omitempty"`
}

// ServiceInfo is the typed view of a feature service's metadata document.
// Keys the struct does not name survive in Extra, so nothing the server
// reports is lost to the typing.
type ServiceInfo struct {
	CurrentVersion              float64           `mapstructure:"currentVersion"`
	ServiceDescription          string            `mapstructure:"serviceDescription"`
	Description                 string            `mapstructure:"description"`
	CopyrightText               string            `mapstructure:"copyrightText"`
	Capabilities                string            `mapstructure:"capabilities"`
	SupportedQueryFormats       string            `mapstructure:"supportedQueryFormats"`
	MaxRecordCount              int               `mapstructure:"maxRecordCount"`
	HasVersionedData            bool              `mapstructure:"hasVersionedData"`
	SupportsDisconnectedEditing bool              `mapstructure:"supportsDisconnectedEditing"`
	SyncEnabled                 bool              `mapstructure:"syncEnabled"`
	SyncCapabilities            map[string]any    `mapstructure:"syncCapabilities"`
	AllowGeometryUpdates        bool              `mapstructure:"allowGeometryUpdates"`
	Units                       string            `mapstructure:"units"`
	SpatialReference            *SpatialReference `mapstructure:"spatialReference"`
	InitialExtent               *Envelope         `mapstructure:"initialExtent"`
	FullExtent                  *Envelope         `mapstructure:"fullExtent"`
	Layers                      []LayerRef        `mapstructure:"layers"`
	Tables                      []LayerRef        `mapstructure:"tables"`

	// Extra holds every metadata key not mapped to a field above.
	Extra map[string]any `mapstructure:",remain"`
}

// HasCapability reports whether the service's comma-delimited capability list
// names the given capability, compared case-insensitively.
func (si *ServiceInfo) HasCapability(name string) bool {
	if si == nil {
		return false
	}
	return capabilityListed(si.Capabilities, name)
}

// FieldInfo describes one attribute field of a layer.
type FieldInfo struct {
	Name     string `mapstructure:"name" json:"name"`
	Type     string `mapstructure:"type" json:"type"`
	Alias    string `mapstructure:"alias" json:"alias,omitempty"`
	Length   int    `mapstructure:"length" json:"length,omitempty"`
	Editable bool   `mapstructure:"editable" json:"editable,omitempty"`
	Nullable bool   `mapstructure:"nullable" json:"nullable,omitempty"`
	Domain   any    `mapstructure:"domain" json:"domain,omitempty"`
}

// RelationshipInfo describes a relationship a layer participates in.
type RelationshipInfo struct {
	ID             int    `mapstructure:"id" json:"id"`
	Name           string `mapstructure:"name" json:"name,omitempty"`
	RelatedTableID int    `mapstructure:"relatedTableId" json:"relatedTableId"`
	Role           string `mapstructure:"role" json:"role,omitempty"`
	Cardinality    string `mapstructure:"cardinality" json:"cardinality,omitempty"`
	KeyField       string `mapstructure:"keyField" json:"keyField,omitempty"`
}

// LayerInfo is the typed view of a single layer or table metadata document.
type LayerInfo struct {
	ID                        int                `mapstructure:"id"`
	Name                      string             `mapstructure:"name"`
	Type                      string             `mapstructure:"type"`
	Description               string             `mapstructure:"description"`
	GeometryType              string             `mapstructure:"geometryType"`
	DefaultVisibility         bool               `mapstructure:"defaultVisibility"`
	MinScale                  float64            `mapstructure:"minScale"`
	MaxScale                  float64            `mapstructure:"maxScale"`
	MaxRecordCount            int                `mapstructure:"maxRecordCount"`
	HasAttachments            bool               `mapstructure:"hasAttachments"`
	HTMLPopupType             string             `mapstructure:"htmlPopupType"`
	ObjectIDField             string             `mapstructure:"objectIdField"`
	GlobalIDField             string             `mapstructure:"globalIdField"`
	TypeIDField               string             `mapstructure:"typeIdField"`
	Capabilities              string             `mapstructure:"capabilities"`
	SupportsCalculate         bool               `mapstructure:"supportsCalculate"`
	SupportsStatistics        bool               `mapstructure:"supportsStatistics"`
	SupportsAdvancedQueries   bool               `mapstructure:"supportsAdvancedQueries"`
	SupportsRollbackOnFailure bool               `mapstructure:"supportsRollbackOnFailureParameter"`
	SupportsValidateSQL       bool               `mapstructure:"supportsValidateSql"`
	Extent                    *Envelope          `mapstructure:"extent"`
	Fields                    []FieldInfo        `mapstructure:"fields"`
	Relationships             []RelationshipInfo `mapstructure:"relationships"`

	// Extra holds every metadata key not mapped to a field above.
	Extra map[string]any `mapstructure:",remain"`
}

// HasCapability reports whether the layer's comma-delimited capability list
// names the given capability, compared case-insensitively.
func (li *LayerInfo) HasCapability(name string) bool {
	if li == nil {
		return false
	}
	return capabilityListed(li.Capabilities, name)
}

func capabilityListed(list, name string) bool {
	for _, c := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return true
		}
	}
	return false
}

// DecodeServiceInfo converts a raw metadata record into a typed ServiceInfo.
func DecodeServiceInfo(rec Record) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := decodeRecord(rec, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// DecodeLayerInfo converts a raw layer metadata record into a typed
// LayerInfo.
func DecodeLayerInfo(rec Record) (*LayerInfo, error) {
	var info LayerInfo
	if err := decodeRecord(rec, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func decodeRecord(rec Record, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(rec))
}
