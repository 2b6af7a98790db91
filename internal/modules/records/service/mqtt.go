package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"powertrack/internal/mqtt"
)

const ingestTimeout = 10 * time.Second

// RegisterMQTTHandler feeds each payload on the subscriber's topic through
// Create, the same path a POST /records body takes.
func (s *Service) RegisterMQTTHandler(subscriber mqtt.MQTTSubscriber, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(payload []byte) error {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		return s.ingest(ctx, payload, logger)
	})
}

func (s *Service) ingest(ctx context.Context, payload []byte, logger *slog.Logger) error {
	var candidate any
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	rec, err := s.Create(ctx, candidate)
	if err != nil {
		return err
	}

	logger.Debug("stored ingested reading",
		"id", rec.ID,
		"date", rec.Date,
		"reading", rec.Reading,
	)
	return nil
}
