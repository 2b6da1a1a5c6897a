package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

// RecordService is the record API the handler serves
type RecordService interface {
	List(ctx context.Context) ([]model.Document, error)
	Get(ctx context.Context, respondentID string) (*model.Document, error)
	Update(ctx context.Context, respondentID string, upd *model.DocumentUpdate) (*model.Document, error)
	Delete(ctx context.Context, respondentID string) error
	Validate(ctx context.Context, respondentID string) ([]model.ValidationIssue, error)
}

// RecordHandler handles respondent document endpoints
type RecordHandler struct {
	svc RecordService
}

func NewRecordHandler(svc RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// List handles GET /v1/data
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": docs})
}

// Get handles GET /v1/data/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": doc})
}

// Update handles PUT /v1/data/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.DocumentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": doc})
}

// Delete handles DELETE /v1/data/{id}
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles POST /v1/data/{id}/validate
func (h *RecordHandler) Validate(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.Validate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
