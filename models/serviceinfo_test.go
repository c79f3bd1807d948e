package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceMetadataJSON = `{
	"currentVersion": 10.91,
	"serviceDescription": "City assets",
	"hasVersionedData": true,
	"supportsDisconnectedEditing": false,
	"syncEnabled": true,
	"syncCapabilities": {"supportsAsync": true, "supportsRegisteringExistingData": true},
	"supportedQueryFormats": "JSON, AMF",
	"maxRecordCount": 1000,
	"capabilities": "Query,Editing,Sync",
	"description": "",
	"copyrightText": "",
	"spatialReference": {"wkid": 102100, "latestWkid": 3857},
	"initialExtent": {"xmin": -1.3e7, "ymin": 3.9e6, "xmax": -1.2e7, "ymax": 5.2e6},
	"fullExtent": {"xmin": -1.4e7, "ymin": 3.5e6, "xmax": -1.1e7, "ymax": 5.5e6},
	"allowGeometryUpdates": true,
	"units": "esriMeters",
	"layers": [{"id": 0, "name": "Hydrants"}, {"id": 2, "name": "Mains"}],
	"tables": [{"id": 5, "name": "Inspections"}],
	"enableZDefaults": false,
	"supportsApplyEditsWithGlobalIds": true
}`

func TestDecodeServiceInfo(t *testing.T) {
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(serviceMetadataJSON), &rec))

	info, err := DecodeServiceInfo(rec)
	require.NoError(t, err)

	assert.InDelta(t, 10.91, info.CurrentVersion, 1e-9)
	assert.Equal(t, "City assets", info.ServiceDescription)
	assert.True(t, info.SyncEnabled)
	assert.True(t, info.HasVersionedData)
	assert.Equal(t, 1000, info.MaxRecordCount)
	require.NotNil(t, info.SpatialReference)
	assert.Equal(t, 102100, info.SpatialReference.WKID)
	assert.Equal(t, 3857, info.SpatialReference.LatestWKID)
	require.NotNil(t, info.FullExtent)
	assert.InDelta(t, -1.4e7, info.FullExtent.XMin, 1e-3)

	require.Len(t, info.Layers, 2)
	assert.Equal(t, LayerRef{ID: 0, Name: "Hydrants"}, info.Layers[0])
	assert.Equal(t, LayerRef{ID: 2, Name: "Mains"}, info.Layers[1])
	require.Len(t, info.Tables, 1)
	assert.Equal(t, 5, info.Tables[0].ID)

	// Keys without a named field stay reachable.
	assert.Equal(t, true, info.Extra["supportsApplyEditsWithGlobalIds"])
	assert.Equal(t, false, info.Extra["enableZDefaults"])
	assert.NotContains(t, info.Extra, "syncEnabled")
}

func TestServiceInfoHasCapability(t *testing.T) {
	info := &ServiceInfo{Capabilities: "Query, Editing,Extract"}

	assert.True(t, info.HasCapability("Query"))
	assert.True(t, info.HasCapability("editing"))
	assert.True(t, info.HasCapability("EXTRACT"))
	assert.False(t, info.HasCapability("Sync"))

	var missing *ServiceInfo
	assert.False(t, missing.HasCapability("Query"))
}

func TestDecodeLayerInfo(t *testing.T) {
	rec := Record{
		"id":                0,
		"name":              "Hydrants",
		"type":              "Feature Layer",
		"geometryType":      "esriGeometryPoint",
		"htmlPopupType":     "esriServerHTMLPopupTypeAsHTMLText",
		"objectIdField":     "OBJECTID",
		"globalIdField":     "GlobalID",
		"hasAttachments":    true,
		"maxRecordCount":    float64(2000),
		"supportsCalculate": true,
		"capabilities":      "Query,Editing",
		"fields": []any{
			map[string]any{"name": "OBJECTID", "type": "esriFieldTypeOID", "alias": "OBJECTID"},
			map[string]any{"name": "NAME", "type": "esriFieldTypeString", "length": float64(64)},
		},
		"relationships": []any{
			map[string]any{"id": float64(1), "name": "inspections", "relatedTableId": float64(5)},
		},
		"ownershipBasedAccessControlForFeatures": map[string]any{"allowOthersToQuery": true},
	}

	info, err := DecodeLayerInfo(rec)
	require.NoError(t, err)

	assert.Equal(t, 0, info.ID)
	assert.Equal(t, "Feature Layer", info.Type)
	assert.Equal(t, GeometryPoint, info.GeometryType)
	assert.True(t, info.HasAttachments)
	assert.Equal(t, 2000, info.MaxRecordCount)
	assert.Equal(t, "OBJECTID", info.ObjectIDField)
	assert.True(t, info.SupportsCalculate)

	require.Len(t, info.Fields, 2)
	assert.Equal(t, "esriFieldTypeString", info.Fields[1].Type)
	assert.Equal(t, 64, info.Fields[1].Length)

	require.Len(t, info.Relationships, 1)
	assert.Equal(t, 5, info.Relationships[0].RelatedTableID)

	assert.Contains(t, info.Extra, "ownershipBasedAccessControlForFeatures")
	assert.NotContains(t, info.Extra, "htmlPopupType")
}
