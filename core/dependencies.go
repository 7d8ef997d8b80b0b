package core

import (
	"context"
	"fmt"
	"io"

	"github.com/awantoch/visitorcount/config"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/counter"
	"github.com/awantoch/visitorcount/event"
	"github.com/awantoch/visitorcount/storage"
	"github.com/awantoch/visitorcount/telemetry"
	"github.com/awantoch/visitorcount/utils"
)

// Dependencies is everything a front end (HTTP, serverless, CLI, MCP) needs
// to serve visitor counts.
type Dependencies struct {
	Table   storage.Table
	Bus     event.EventBus
	Counter *counter.Service
}

// GetTableFromConfig opens the table named by the storage config.
func GetTableFromConfig(ctx context.Context, cfg *config.Config) (storage.Table, error) {
	table, err := storage.NewTableFromConnectionString(ctx, cfg.Storage.ConnectionString, cfg.Storage.Table)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrStorageCreateFailed, err)
	}
	return table, nil
}

// InitializeDependencies sets up storage, the event bus and tracing.
// Returns a cleanup function that should be called when shutting down.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	if err := utils.SetLevel(cfg.Log.Level); err != nil {
		return nil, nil, err
	}
	if driver, _, _ := storage.ParseConnectionString(cfg.Storage.ConnectionString); driver == constants.StorageDriverMemory {
		utils.WarnCtx(ctx, constants.LogMemoryStorage)
	}

	table, err := GetTableFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize event bus
	var bus event.EventBus
	if cfg.Event != nil {
		bus, err = event.NewEventBusFromConfig(cfg.Event)
		if err != nil {
			utils.WarnCtx(ctx, "Failed to create event bus, using in-memory fallback", "error", err)
			bus = event.NewInProcEventBus()
		}
	} else {
		bus = event.NewInProcEventBus()
	}

	shutdownTracing, err := telemetry.Init(cfg)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to initialize tracing, continuing without it", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}

	deps := &Dependencies{
		Table:   table,
		Bus:     bus,
		Counter: counter.NewService(table, counter.WithEventBus(bus)),
	}

	// Return cleanup function
	cleanup := func() {
		if err := bus.Close(); err != nil {
			utils.Error("Failed to close event bus: %v", err)
		}
		if closer, ok := table.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				utils.Error("Failed to close storage: %v", err)
			}
		}
		if err := shutdownTracing(context.Background()); err != nil {
			utils.Error("Failed to flush traces: %v", err)
		}
	}

	return deps, cleanup, nil
}
