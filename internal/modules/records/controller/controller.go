package controller

import (
	"context"
	"net/http"

	"powertrack/internal/modules/records/types"
)

// maxBodyBytes caps POST /records bodies.
const maxBodyBytes = 1 << 20

type recordsService interface {
	List(ctx context.Context) (types.Collection, error)
	Create(ctx context.Context, candidate any) (types.Record, error)
	Get(ctx context.Context, id string) (types.Record, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type RecordsController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type recordsControllerImpl struct {
	service recordsService
}

func NewRecordsController(service recordsService) RecordsController {
	return &recordsControllerImpl{service: service}
}

func (c *recordsControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /records", c.handleList)
	mux.HandleFunc("POST /records", c.handleCreate)
	mux.HandleFunc("DELETE /records", c.handleDeleteAll)
	mux.HandleFunc("GET /records/{id}", c.handleGet)
	mux.HandleFunc("DELETE /records/{id}", c.handleDelete)
}
