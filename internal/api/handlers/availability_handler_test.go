package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/jmauas/consultorio-sub000/internal/api/handlers"
	"github.com/jmauas/consultorio-sub000/internal/application/services"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

// MockAvailabilityService defines the mock service
type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) GetDisponibilidad(ctx context.Context, req services.DisponibilidadRequest) (*availability.ScanResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.ScanResult), args.Error(1)
}

func (m *MockAvailabilityService) AnalizarTurnos(ctx context.Context, doctorID, consultorioID, fecha string) ([]entities.TurnoDisponibilidad, error) {
	args := m.Called(ctx, doctorID, consultorioID, fecha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TurnoDisponibilidad), args.Error(1)
}

func fixtureResult() *availability.ScanResult {
	return &availability.ScanResult{
		OK: true,
		Dias: []entities.DayAvailability{{
			Fecha:     "2025-06-02",
			DiaSemana: "lunes",
			Turnos: []entities.Slot{{
				Hora:          9,
				Minuto:        0,
				Doctor:        entities.SlotDoctor{ID: "doc-1", Nombre: "Dra. García"},
				ConsultorioID: "cons-1",
				Duracion:      30,
			}},
		}},
	}
}

func TestAvailabilityHandler_GetDisponibilidad(t *testing.T) {
	t.Run("successfully returns availability", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/turnos/disponibilidad?doctor=doc-1&consultorios=cons-1&duracion=30&asa=true", nil)
		w := httptest.NewRecorder()

		mockService.On("GetDisponibilidad", mock.Anything, mock.MatchedBy(func(r services.DisponibilidadRequest) bool {
			return r.DoctorID == "doc-1" && r.Duracion == 30 && r.ASA && !r.CCR &&
				len(r.ConsultorioIDs) == 1 && r.ConsultorioIDs[0] == "cons-1"
		})).Return(fixtureResult(), nil)

		handler.GetDisponibilidad(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body availability.ScanResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.OK)
		require.Len(t, body.Dias, 1)
		assert.Equal(t, "2025-06-02", body.Dias[0].Fecha)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a non-numeric duracion", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/turnos/disponibilidad?duracion=treinta", nil)
		w := httptest.NewRecorder()

		handler.GetDisponibilidad(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetDisponibilidad", mock.Anything, mock.Anything)
	})

	t.Run("maps validation errors to bad request", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/turnos/disponibilidad", nil)
		w := httptest.NewRecorder()

		mockService.On("GetDisponibilidad", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("at least one consultorio is required"))

		handler.GetDisponibilidad(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAvailabilityHandler_GetDisponibilidadFecha(t *testing.T) {
	t.Run("passes the path fecha to the service", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/turnos/disponibilidad/2025-06-02?tipo=tipo-1", nil)
		req.SetPathValue("fecha", "2025-06-02")
		w := httptest.NewRecorder()

		mockService.On("GetDisponibilidad", mock.Anything, mock.MatchedBy(func(r services.DisponibilidadRequest) bool {
			return r.Fecha == "2025-06-02" && r.TipoDeTurnoID == "tipo-1"
		})).Return(fixtureResult(), nil)

		handler.GetDisponibilidadFecha(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestAvailabilityHandler_AnalizarTurnos(t *testing.T) {
	t.Run("successfully analyzes the day", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/agenda/doc-1/consultorio/cons-1/analisis?fecha=2025-06-02", nil)
		req.SetPathValue("doctorId", "doc-1")
		req.SetPathValue("consultorioId", "cons-1")
		w := httptest.NewRecorder()

		mockService.On("AnalizarTurnos", mock.Anything, "doc-1", "cons-1", "2025-06-02").
			Return([]entities.TurnoDisponibilidad{}, nil)

		handler.AnalizarTurnos(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("maps a missing doctor to not found", func(t *testing.T) {
		mockService := new(MockAvailabilityService)
		handler := handlers.NewAvailabilityHandler(mockService)

		req := httptest.NewRequest("GET", "/api/agenda/nope/consultorio/cons-1/analisis?fecha=2025-06-02", nil)
		req.SetPathValue("doctorId", "nope")
		req.SetPathValue("consultorioId", "cons-1")
		w := httptest.NewRecorder()

		mockService.On("AnalizarTurnos", mock.Anything, "nope", "cons-1", "2025-06-02").
			Return(nil, apperrors.NewNotFoundError("doctor with id nope not found"))

		handler.AnalizarTurnos(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
