package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/application/services"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

// AvailabilityService defines the interface for availability operations
type AvailabilityService interface {
	GetDisponibilidad(ctx context.Context, req services.DisponibilidadRequest) (*availability.ScanResult, error)
	AnalizarTurnos(ctx context.Context, doctorID, consultorioID, fecha string) ([]entities.TurnoDisponibilidad, error)
}

// AvailabilityHandler handles availability requests
type AvailabilityHandler struct {
	service AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
	}
}

// GetDisponibilidad handles GET /api/turnos/disponibilidad
func (h *AvailabilityHandler) GetDisponibilidad(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetDisponibilidad(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetDisponibilidadFecha handles GET /api/turnos/disponibilidad/{fecha}
func (h *AvailabilityHandler) GetDisponibilidadFecha(w http.ResponseWriter, r *http.Request) {
	fecha := r.PathValue("fecha")
	if fecha == "" {
		respondWithError(w, http.StatusBadRequest, "fecha is required")
		return
	}

	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	req.Fecha = fecha

	result, err := h.service.GetDisponibilidad(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// AnalizarTurnos handles GET /api/agenda/{doctorId}/consultorio/{consultorioId}/analisis
func (h *AvailabilityHandler) AnalizarTurnos(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("doctorId")
	consultorioID := r.PathValue("consultorioId")
	if doctorID == "" || consultorioID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor and consultorio are required")
		return
	}

	fecha := r.URL.Query().Get("fecha")
	if fecha == "" {
		fecha = time.Now().UTC().Format("2006-01-02")
	}

	turnos, err := h.service.AnalizarTurnos(r.Context(), doctorID, consultorioID, fecha)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"fecha":  fecha,
		"turnos": turnos,
	})
}

func (h *AvailabilityHandler) parseRequest(w http.ResponseWriter, r *http.Request) (services.DisponibilidadRequest, bool) {
	q := r.URL.Query()

	req := services.DisponibilidadRequest{
		DoctorID:      q.Get("doctor"),
		TipoDeTurnoID: q.Get("tipo"),
		ASA:           parseBool(q.Get("asa")),
		CCR:           parseBool(q.Get("ccr")),
	}

	if raw := q.Get("consultorios"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.ConsultorioIDs = append(req.ConsultorioIDs, id)
			}
		}
	}

	if raw := q.Get("duracion"); raw != "" {
		duracion, err := strconv.Atoi(raw)
		if err != nil || duracion <= 0 {
			respondWithError(w, http.StatusBadRequest, "duracion must be a positive number of minutes")
			return req, false
		}
		req.Duracion = duracion
	}

	if raw := q.Get("desde"); raw != "" {
		desde, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			desde, err = time.Parse("2006-01-02", raw)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid desde date format (use RFC3339 or YYYY-MM-DD)")
				return req, false
			}
		}
		req.Desde = desde.UTC()
	}

	return req, true
}

func parseBool(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "si", "sí":
		return true
	}
	return false
}
