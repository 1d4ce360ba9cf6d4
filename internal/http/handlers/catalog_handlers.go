package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qualityveda/attendance-hub/internal/domain"
	"github.com/qualityveda/attendance-hub/internal/http/response"
)

// ListLabs returns the lab catalog in insertion order.
func (h *Handlers) ListLabs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"labs": h.catalog.ListLabs()})
}

func (h *Handlers) ListTrainings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"trainings": h.catalog.ListTrainings()})
}

// Admin catalog management

func (h *Handlers) CreateLab(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLabRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	lab, err := h.catalog.AddLab(r.Context(), req.Name, req.Location)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lab)
}

func (h *Handlers) UpdateLab(w http.ResponseWriter, r *http.Request) {
	var patch domain.LabPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	lab, err := h.catalog.UpdateLab(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		// Absent ids surface as a no-op, not a failure.
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "no_op"})
			return
		}
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lab)
}

func (h *Handlers) DeleteLab(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.RemoveLab(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handlers) CreateTraining(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	training, err := h.catalog.AddTraining(r.Context(), req.Name)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, training)
}

func (h *Handlers) UpdateTraining(w http.ResponseWriter, r *http.Request) {
	var patch domain.TrainingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	training, err := h.catalog.UpdateTraining(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "no_op"})
			return
		}
		response.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, training)
}

func (h *Handlers) DeleteTraining(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.RemoveTraining(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
