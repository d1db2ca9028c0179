// Liftnet Core - elevator network coordination daemon
//
// liftnetd is one client in a shared virtual space: it keeps the
// elevator network registry and current-level state for its world,
// exchanges level changes with other clients over the messaging
// channel, and routes moves the local user may not perform through the
// approval workflow. Run with role "gm" it is the authority and owns
// every persisted write; run as "player" it is a read-only observer
// that raises requests instead.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/waypointworks/liftnet-core/migrations"

	"github.com/waypointworks/liftnet-core/internal/approval"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/config"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/database"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/influxdb"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/logging"
	"github.com/waypointworks/liftnet-core/internal/infrastructure/mqtt"
	"github.com/waypointworks/liftnet-core/internal/journal"
	"github.com/waypointworks/liftnet-core/internal/level"
	"github.com/waypointworks/liftnet-core/internal/messaging"
	"github.com/waypointworks/liftnet-core/internal/network"
	"github.com/waypointworks/liftnet-core/internal/panel"
	"github.com/waypointworks/liftnet-core/internal/world"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Liftnet Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	role := world.ParseRole(cfg.World.Role)
	log.Info("world identity resolved",
		"client_id", cfg.World.ClientID,
		"display_name", cfg.World.DisplayName,
		"role", string(role),
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional journal mirror)
	var influxClient *influxdb.Client
	if cfg.Journal.Influx.Enabled {
		influxClient, err = influxdb.Connect(cfg.Journal.Influx)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.Journal.Influx.URL,
			"bucket", cfg.Journal.Influx.Bucket,
		)
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// World documents and registries
	worldStore := world.NewSQLiteStore(db.DB)
	registry := network.NewSQLiteRepository(db)
	levelStore := level.NewSQLiteStore(db)

	// Journal: SQLite always, time-series mirror when enabled
	var mirror journal.Mirror
	if influxClient != nil {
		mirror = influxClient
	}
	travelJournal := journal.New(journal.NewSQLiteRepository(db), mirror, log)

	// Messaging: optimistic cache, rerender coalescing, dedup, courier
	cache := level.NewCache()
	coalescer := level.NewCoalescer(cfg.RerenderWindow(), func(networkID string) {
		log.Debug("panel rerender", "network_id", networkID)
	})
	defer coalescer.Stop()

	courier := messaging.NewCourier(
		mqttClient, role, cfg.World.DisplayName,
		levelStore, cache, coalescer,
		messaging.NewDedup(cfg.DedupWindow()), log,
	)
	courier.SetOnLevelPersisted(func(networkID, stopUUID, requester string) {
		floor := 0
		if entry, entryErr := registry.Entry(ctx, networkID); entryErr == nil {
			if f, ok := entry.FloorOf(stopUUID); ok {
				floor = f
			}
		}
		travelJournal.LevelChanged(ctx, networkID, stopUUID, floor, requester)
	})
	if err := courier.Start(); err != nil {
		return fmt.Errorf("starting courier: %w", err)
	}
	log.Info("courier subscribed",
		"socket", mqtt.Topics{}.Socket(),
		"legacy", mqtt.Topics{}.AllLegacy(),
	)

	// Approval workflow and panel controller
	notifier := approval.NewChannelNotifier(mqttClient, cfg.World.DisplayName)
	workflow := approval.NewWorkflow(worldStore, approval.NewSQLiteMessageRepository(db),
		courier, notifier, log)
	workflow.SetOnRequested(func(networkID, requesterID string, messages int) {
		travelJournal.ApprovalRequested(ctx, networkID, requesterID, messages)
	})
	workflow.SetOnResolved(func(networkID, userID string, approved bool, moved int) {
		travelJournal.ApprovalResolved(ctx, networkID, userID, approved, moved)
	})

	controller := panel.NewController(worldStore, registry, courier, workflow,
		nil, cfg.ArrivalDelay(), cfg.SoundFallbackTimeout(), log)

	// The authority reconciles every network on startup so display
	// names, sibling lists and return pointers are consistent before
	// any traffic arrives.
	if role.IsAuthority() {
		engine := network.NewEngine(registry, worldStore, log)
		entries, listErr := registry.List(ctx)
		if listErr != nil {
			return fmt.Errorf("listing networks: %w", listErr)
		}
		for _, entry := range entries {
			if syncErr := engine.Sync(ctx, role, entry.NetworkID); syncErr != nil {
				log.Error("startup sync failed",
					"network_id", entry.NetworkID, "error", syncErr)
				continue
			}
			travelJournal.NetworkSynced(ctx, entry.NetworkID, len(entry.Stops))
		}
		log.Info("startup network sync complete", "networks", len(entries))
	}

	// Every client re-requests levels when the connection comes back.
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, requesting level sync")
		if syncErr := controller.SyncOnReconnect(ctx); syncErr != nil {
			log.Warn("reconnect level sync failed", "error", syncErr)
		}
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Liftnet Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses LIFTNET_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("LIFTNET_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
