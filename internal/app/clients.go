package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/execudex-backend/internal/config"
	"github.com/yungbote/execudex-backend/internal/platform/edgefn"
	"github.com/yungbote/execudex-backend/internal/platform/gcp"
	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

type Clients struct {
	Edge      *edgefn.Client
	Functions *edgefn.Functions
	Artifacts gcp.ArtifactStore
	// Redis is nil when no address is configured.
	Redis goredis.UniversalClient
}

func wireClients(log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")

	edge, err := edgefn.New(cfg.Edge, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init edge functions client: %w", err)
	}

	artifacts, err := gcp.NewArtifactStore(log, gcp.ObjectStorageConfigFrom(cfg.Storage))
	if err != nil {
		return Clients{}, fmt.Errorf("init artifact store: %w", err)
	}

	var rdb goredis.UniversalClient
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		rdb = goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{addr}})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return Clients{}, fmt.Errorf("ping redis %s: %w", addr, err)
		}
	}

	return Clients{
		Edge:      edge,
		Functions: edgefn.NewFunctions(edge, cfg.Edge.Timeout.Duration),
		Artifacts: artifacts,
		Redis:     rdb,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
