package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akochman/ArcREST/connection"
	"github.com/akochman/ArcREST/featureservice"
	"github.com/akochman/ArcREST/internal/config"
	"github.com/akochman/ArcREST/logger"
	"github.com/akochman/ArcREST/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	// Operation flags must be registered before GetClientConfig runs the
	// single flag.Parse for the whole binary.
	serviceURL := flag.String("service", "", "Feature service URL (required)")
	op := flag.String("op", "info", "Operation: info, layers, query, count, replicas, export")
	layerID := flag.Int("layer", 0, "Layer or table id for query and count")
	where := flag.String("where", "1=1", "Attribute filter for query and count")
	outFields := flag.String("out-fields", "*", "Comma-delimited output field list")

	log := logger.NewWithWriter("arcquery", os.Stderr)

	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if *serviceURL == "" {
		log.Fatal().Msg("-service is required")
	}

	con, err := connection.New(connection.Config{
		BaseURL:        cfg.Site.URL,
		Username:       cfg.Site.Username,
		Password:       cfg.Site.Password,
		Token:          cfg.Site.Token,
		Referer:        cfg.Site.Referer,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		RetryCount:     cfg.HTTP.RetryCount,
		RetryWaitTime:  cfg.HTTP.RetryWaitTime,
		Logger:         log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create site connection")
	}

	svc := featureservice.New(con, *serviceURL,
		featureservice.WithLogger(log),
		featureservice.WithPollPolicy(pollPolicy(cfg)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := run(ctx, svc, *op, *layerID, *where, *outFields, cfg.Replica.OutDir)
	if err != nil {
		log.Fatal().Err(err).Str("op", *op).Msg("operation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("encode result")
	}
}

func run(ctx context.Context, svc *featureservice.FeatureService, op string, layerID int, where, outFields, outDir string) (any, error) {
	switch op {
	case "info":
		return svc.Info(ctx)

	case "layers":
		info, err := svc.Info(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"layers": info.Layers, "tables": info.Tables}, nil

	case "query":
		lay, err := pickLayer(ctx, svc, layerID)
		if err != nil {
			return nil, err
		}
		q := models.NewLayerQuery()
		q.Where = where
		q.OutFields = outFields
		return lay.Query(ctx, q)

	case "count":
		lay, err := pickLayer(ctx, svc, layerID)
		if err != nil {
			return nil, err
		}
		q := models.NewLayerQuery()
		q.Where = where
		q.ReturnCountOnly = true
		return lay.Query(ctx, q)

	case "replicas":
		return svc.ListReplicas(ctx)

	case "export":
		info, err := svc.Info(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(info.Layers))
		for _, ref := range info.Layers {
			ids = append(ids, ref.ID)
		}
		return svc.ExportReplica(ctx, ids, outDir)

	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// pickLayer resolves a layer or table child by its id. The service metadata
// lists children in the same order the accessors return them.
func pickLayer(ctx context.Context, svc *featureservice.FeatureService, id int) (*featureservice.FeatureLayer, error) {
	info, err := svc.Info(ctx)
	if err != nil {
		return nil, err
	}

	layers, err := svc.Layers(ctx)
	if err != nil {
		return nil, err
	}
	for i, ref := range info.Layers {
		if ref.ID == id {
			return layers[i], nil
		}
	}

	tables, err := svc.Tables(ctx)
	if err != nil {
		return nil, err
	}
	for i, ref := range info.Tables {
		if ref.ID == id {
			return &tables[i].FeatureLayer, nil
		}
	}

	return nil, fmt.Errorf("no layer or table with id %d", id)
}

func pollPolicy(cfg *config.ClientConfig) models.PollPolicy {
	p := models.DefaultPollPolicy()
	if cfg.Replica.PollInitialInterval > 0 {
		p.InitialInterval = cfg.Replica.PollInitialInterval
	}
	if cfg.Replica.PollMaxInterval > 0 {
		p.MaxInterval = cfg.Replica.PollMaxInterval
	}
	if cfg.Replica.PollMaxElapsedTime > 0 {
		p.MaxElapsedTime = cfg.Replica.PollMaxElapsedTime
	}
	return p
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	// Stdout is reserved for the operation result.
	fmt.Fprintf(os.Stderr, "Build version: %s\n", buildVersion)
	fmt.Fprintf(os.Stderr, "Build date: %s\n", buildDate)
	fmt.Fprintf(os.Stderr, "Build commit: %s\n", buildCommit)
}
