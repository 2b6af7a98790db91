package controller

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"powertrack/internal/modules/records/service"
	"powertrack/internal/modules/records/types"
	"powertrack/internal/modules/records/validator"
	"powertrack/internal/utils"
)

func (c *recordsControllerImpl) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := c.service.List(r.Context())
	if err != nil {
		writeServiceError(w, "list records", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, types.ListResponse{Items: records.OrEmpty()})
}

func (c *recordsControllerImpl) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	candidate, err := decodeBody(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "request body must be a single JSON object")
		return
	}

	rec, err := c.service.Create(r.Context(), candidate)
	if err != nil {
		writeServiceError(w, "create record", err)
		return
	}

	w.Header().Set("Location", utils.ResourceURL(r, "records", rec.ID))
	w.WriteHeader(http.StatusCreated)
}

func (c *recordsControllerImpl) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing record id")
		return
	}

	rec, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get record", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rec)
}

func (c *recordsControllerImpl) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing record id")
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *recordsControllerImpl) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := c.service.DeleteAll(r.Context()); err != nil {
		writeServiceError(w, "delete all records", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads exactly one JSON value; anything but whitespace after it
// is an error.
func decodeBody(body io.Reader) (any, error) {
	dec := json.NewDecoder(body)
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
		return nil, err
	}
	return v, nil
}

// writeServiceError maps service errors onto status codes. Storage failures
// are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var vErr *validator.ValidationError
	switch {
	case errors.As(err, &vErr):
		utils.WriteError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "record not found")
	default:
		slog.Error(op+" failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to access record storage")
	}
}
