package featureservice

import (
	"context"
	"fmt"

	"github.com/akochman/ArcREST/connection"
	"github.com/akochman/ArcREST/logger"
	"github.com/akochman/ArcREST/models"
)

// Uploads manages the upload items of a sync-enabled feature service. It is
// obtained from FeatureService.Uploads and is only available when the
// service has sync enabled.
type Uploads struct {
	con connection.Connection
	url string
	log *logger.Logger
}

func newUploads(con connection.Connection, url string, log *logger.Logger) *Uploads {
	return &Uploads{con: con, url: url, log: log}
}

// URL returns the uploads endpoint this client is bound to.
func (u *Uploads) URL() string { return u.url }

// Upload sends the file at path to the service and returns the upload item
// descriptor, including the item id used by edit-by-upload workflows.
func (u *Uploads) Upload(ctx context.Context, path, description string) (models.Record, error) {
	p := models.Params{"f": "json"}
	if description != "" {
		p["description"] = description
	}

	rec, err := u.con.Post(ctx, u.url+"/upload", p, models.File{Param: "file", Path: path})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}
	return rec, nil
}

// Info fetches the descriptor of one uploaded item.
func (u *Uploads) Info(ctx context.Context, itemID string) (models.Record, error) {
	rec, err := u.con.Get(ctx, u.url+"/"+itemID, models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("upload info: %w", err)
	}
	return rec, nil
}

// Delete removes one uploaded item from the service.
func (u *Uploads) Delete(ctx context.Context, itemID string) (models.Record, error) {
	rec, err := u.con.Post(ctx, u.url+"/"+itemID+"/delete", models.Params{"f": "json"})
	if err != nil {
		return nil, fmt.Errorf("delete upload: %w", err)
	}
	return rec, nil
}
