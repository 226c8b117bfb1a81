package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

// TurnoService defines the interface for turno operations
type TurnoService interface {
	Reservar(ctx context.Context, turno *entities.Turno) error
	Cancelar(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entities.Turno, error)
	TurnosDelDia(ctx context.Context, doctorID, consultorioID, fecha string) ([]entities.Turno, error)
}

// TurnoHandler handles turno requests
type TurnoHandler struct {
	service TurnoService
}

// NewTurnoHandler creates a new turno handler
func NewTurnoHandler(service TurnoService) *TurnoHandler {
	return &TurnoHandler{
		service: service,
	}
}

// Reservar handles POST /api/turnos
func (h *TurnoHandler) Reservar(w http.ResponseWriter, r *http.Request) {
	var turno entities.Turno
	if err := json.NewDecoder(r.Body).Decode(&turno); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.service.Reservar(r.Context(), &turno); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, turno)
}

// GetTurno handles GET /api/turnos/{id}
func (h *TurnoHandler) GetTurno(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "turno ID is required")
		return
	}

	turno, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, turno)
}

// Cancelar handles DELETE /api/turnos/{id}
func (h *TurnoHandler) Cancelar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "turno ID is required")
		return
	}

	if err := h.service.Cancelar(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "cancelado",
	})
}

// TurnosDelDia handles GET /api/agenda/{doctorId}/turnos
func (h *TurnoHandler) TurnosDelDia(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("doctorId")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	fecha := r.URL.Query().Get("fecha")
	if fecha == "" {
		fecha = time.Now().UTC().Format("2006-01-02")
	}
	consultorioID := r.URL.Query().Get("consultorio")

	turnos, err := h.service.TurnosDelDia(r.Context(), doctorID, consultorioID, fecha)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"fecha":  fecha,
		"turnos": turnos,
	})
}
