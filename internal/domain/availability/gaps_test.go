package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

func TestEngine_Analyze(t *testing.T) {
	// 2025-06-02 is a Monday.
	lunes := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine(t, nil)

	at := func(h, m int) time.Time {
		return lunes.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	analyze := func(t *testing.T, rd *availability.ResolvedDoctor, turnos ...entities.Turno) []entities.TurnoDisponibilidad {
		t.Helper()
		out, err := engine.Analyze(availability.GapRequest{
			Doctor:        rd,
			ConsultorioID: "cons-1",
			Turnos:        turnos,
		})
		require.NoError(t, err)
		require.Len(t, out, len(turnos))
		return out
	}

	t.Run("isolated turno gets hugging slots on both sides", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd, turno("t-1", at(10, 0), at(10, 30), entities.TurnoStatusConfirmado))

		require.NotNil(t, out[0].DisponibilidadAnterior)
		assert.Equal(t, at(9, 30), out[0].DisponibilidadAnterior.Desde)
		assert.Equal(t, at(10, 0), out[0].DisponibilidadAnterior.Hasta)
		assert.Equal(t, 30, out[0].DisponibilidadAnterior.Duracion)
		assert.Equal(t, "doc-1", out[0].DisponibilidadAnterior.Doctor.ID)
		assert.Equal(t, "cons-1", out[0].DisponibilidadAnterior.ConsultorioID)

		require.NotNil(t, out[0].DisponibilidadPosterior)
		assert.Equal(t, at(10, 30), out[0].DisponibilidadPosterior.Desde)
		assert.Equal(t, at(11, 0), out[0].DisponibilidadPosterior.Hasta)
	})

	t.Run("back-to-back turnos offer no slot between them", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd,
			turno("t-1", at(9, 0), at(9, 30), entities.TurnoStatusConfirmado),
			turno("t-2", at(9, 30), at(10, 0), entities.TurnoStatusConfirmado),
		)

		assert.Nil(t, out[0].DisponibilidadAnterior) // window starts here
		assert.Nil(t, out[0].DisponibilidadPosterior)
		assert.Nil(t, out[1].DisponibilidadAnterior)

		require.NotNil(t, out[1].DisponibilidadPosterior)
		assert.Equal(t, at(10, 0), out[1].DisponibilidadPosterior.Desde)
	})

	t.Run("gap shorter than the duration is not offered", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd,
			turno("t-1", at(9, 0), at(9, 30), entities.TurnoStatusConfirmado),
			turno("t-2", at(9, 45), at(10, 15), entities.TurnoStatusConfirmado),
		)

		assert.Nil(t, out[1].DisponibilidadAnterior)
	})

	t.Run("cancelled turno offers its own interval as replacement", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd, turno("t-1", at(11, 0), at(11, 30), entities.TurnoStatusCancelado))

		require.NotNil(t, out[0].DisponibilidadAnterior)
		assert.Equal(t, at(11, 0), out[0].DisponibilidadAnterior.Desde)
		assert.Equal(t, at(11, 30), out[0].DisponibilidadAnterior.Hasta)
		assert.Nil(t, out[0].DisponibilidadPosterior)
	})

	t.Run("cancelled neighbours do not bound the gap", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd,
			turno("t-1", at(9, 0), at(9, 30), entities.TurnoStatusConfirmado),
			turno("t-2", at(9, 30), at(10, 0), entities.TurnoStatusCancelado),
			turno("t-3", at(10, 0), at(10, 30), entities.TurnoStatusConfirmado),
		)

		// t-3's gap runs back to t-1's end, through the cancelled t-2.
		require.NotNil(t, out[2].DisponibilidadAnterior)
		assert.Equal(t, at(9, 30), out[2].DisponibilidadAnterior.Desde)
		assert.Equal(t, at(10, 0), out[2].DisponibilidadAnterior.Hasta)
	})

	t.Run("slots never cross the corte", func(t *testing.T) {
		agenda := semanal(time.Monday, "09:00", "18:00")
		agenda.CorteDesde = "13:00"
		agenda.CorteHasta = "14:00"
		rd := resolvedDoctor(t, testDoctor(), agenda)

		out := analyze(t, rd, turno("t-1", at(14, 0), at(14, 30), entities.TurnoStatusConfirmado))

		// The free stretch before 14:00 spans the corte, so nothing
		// before; the slot after is clean.
		assert.Nil(t, out[0].DisponibilidadAnterior)
		require.NotNil(t, out[0].DisponibilidadPosterior)
		assert.Equal(t, at(14, 30), out[0].DisponibilidadPosterior.Desde)
	})

	t.Run("closed day yields turnos without annotations", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Tuesday, "09:00", "12:00"))

		out := analyze(t, rd, turno("t-1", at(10, 0), at(10, 30), entities.TurnoStatusConfirmado))

		assert.Nil(t, out[0].DisponibilidadAnterior)
		assert.Nil(t, out[0].DisponibilidadPosterior)
	})

	t.Run("turno outside the window gets no annotations", func(t *testing.T) {
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		out := analyze(t, rd, turno("t-1", at(8, 0), at(8, 30), entities.TurnoStatusConfirmado))

		assert.Nil(t, out[0].DisponibilidadAnterior)
		assert.Nil(t, out[0].DisponibilidadPosterior)
	})
}
