package records

import (
	"log/slog"
	"net/http"

	"powertrack/internal/modules/records/controller"
	"powertrack/internal/modules/records/service"
	"powertrack/internal/modules/records/store"
	"powertrack/internal/modules/records/validator"
	"powertrack/internal/mqtt"
)

// RegisterFeature mounts the /records routes on mux and, when subscriber is
// non-nil, routes its payloads into the same service.
func RegisterFeature(mux *http.ServeMux, s store.Store, allowZeroReading bool, subscriber mqtt.MQTTSubscriber, logger *slog.Logger) {
	recordsService := service.NewService(s, validator.New(allowZeroReading))
	recordsController := controller.NewRecordsController(recordsService)
	recordsController.RegisterRoutes(mux)

	if subscriber != nil {
		recordsService.RegisterMQTTHandler(subscriber, logger)
	}
}
