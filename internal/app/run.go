package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"powertrack/internal/config"
	"powertrack/internal/db"
	"powertrack/internal/httpapi"
	"powertrack/internal/migrate"
	"powertrack/internal/modules/records"
	"powertrack/internal/modules/records/store"
	"powertrack/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"storeDriver", cfg.StoreDriver,
		"dataFile", cfg.DataFile,
		"sqlitePath", cfg.SQLitePath,
		"allowZeroReading", cfg.AllowZeroReading,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	recordStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	metrics := httpapi.NewMetrics()

	// The handler must be attached before Connect: the broker can deliver
	// queued messages right after CONNACK.
	var subscriber *mqtt.Subscriber
	var ingest mqtt.MQTTSubscriber
	if cfg.MQTTEnabled() {
		subscriber = mqtt.NewSubscriber(cfg, logger)
		ingest = subscriber
	}

	mux := httpapi.NewMux(recordStore, metrics)
	records.RegisterFeature(mux, recordStore, cfg.AllowZeroReading, ingest, logger)

	if subscriber != nil {
		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Warn("mqtt broker not reachable yet, retrying in background", "error", err)
		}
		defer func() {
			logger.Info("mqtt disconnecting")
			subscriber.Disconnect()
		}()
	}

	srv := httpapi.NewServer(cfg, mux, metrics)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openStore builds the configured record store. The returned func releases
// whatever the store holds open.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverFile:
		fs, err := store.NewFileStore(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using file record store", "path", fs.Path())
		return fs, func() {}, nil

	case config.StoreDriverSQLite:
		conn, err := db.Open(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := db.Close(conn); err != nil {
				logger.Error("db close", "error", err)
			}
		}
		applied, err := migrate.Run(ctx, conn)
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		for _, v := range applied {
			logger.Info("migration applied", "version", v)
		}
		logger.Info("using sqlite record store", "path", cfg.SQLitePath)
		return store.NewSQLiteStore(conn), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
