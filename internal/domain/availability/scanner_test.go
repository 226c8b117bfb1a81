package availability_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

func newTestEngine(t *testing.T, cfg *entities.SchedulingConfig) *availability.Engine {
	t.Helper()
	if cfg == nil {
		cfg = &entities.SchedulingConfig{
			Limite: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	engine, err := availability.NewEngine(cfg)
	require.NoError(t, err)
	return engine
}

func resolvedDoctor(t *testing.T, doctor *entities.Doctor, rules ...entities.AgendaRule) *availability.ResolvedDoctor {
	t.Helper()
	rd, err := availability.NewResolvedDoctor(doctor, rules)
	require.NoError(t, err)
	return rd
}

func slotTimes(dias []entities.DayAvailability, fecha string) []string {
	var out []string
	for _, d := range dias {
		if d.Fecha != fecha {
			continue
		}
		for _, s := range d.Turnos {
			out = append(out, fmt.Sprintf("%02d:%02d", s.Hora, s.Minuto))
		}
	}
	return out
}

func turno(id string, desde, hasta time.Time, status entities.TurnoStatus) entities.Turno {
	return entities.Turno{
		ID:            id,
		DoctorID:      "doc-1",
		ConsultorioID: "cons-1",
		Desde:         desde,
		Hasta:         hasta,
		Duracion:      int(hasta.Sub(desde) / time.Minute),
		Status:        status,
	}
}

func TestEngine_ScanDate(t *testing.T) {
	// 2025-06-02 is a Monday.
	lunes := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	agenda := semanal(time.Monday, "09:00", "18:00")
	agenda.CorteDesde = "13:00"
	agenda.CorteHasta = "14:00"

	baseReq := func(rd *availability.ResolvedDoctor, turnos []entities.Turno) availability.ScanRequest {
		return availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			TipoDeTurnoID:  "tipo-1",
			Duracion:       30,
			Now:            now,
			Turnos:         turnos,
		}
	}

	t.Run("slots stay inside the window and outside the corte", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		result, err := engine.ScanDate(baseReq(rd, nil), lunes)
		require.NoError(t, err)
		require.True(t, result.OK)
		require.Len(t, result.Dias, 1)

		times := slotTimes(result.Dias, "2025-06-02")
		// 09:00..12:00 before the corte, 14:00..17:30 after it.
		assert.Len(t, times, 15)
		assert.Equal(t, "09:00", times[0])
		assert.Contains(t, times, "12:00")
		assert.NotContains(t, times, "12:30") // would touch the corte start
		assert.NotContains(t, times, "12:45")
		assert.NotContains(t, times, "13:30")
		assert.Contains(t, times, "14:00")
		assert.Equal(t, "17:30", times[len(times)-1])
		assert.Equal(t, "lunes", result.Dias[0].DiaSemana)
	})

	t.Run("same-day scan starts at the current time, not the window start", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		req := baseReq(rd, nil)
		req.Now = lunes.Add(16 * time.Hour)

		result, err := engine.ScanDate(req, lunes)
		require.NoError(t, err)

		times := slotTimes(result.Dias, "2025-06-02")
		require.NotEmpty(t, times)
		assert.Equal(t, "16:00", times[0])
		assert.NotContains(t, times, "09:00")
		assert.NotContains(t, times, "15:30")
	})

	t.Run("a requested start in the past is floored at now", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		req := baseReq(rd, nil)
		req.Now = lunes.Add(14 * time.Hour)
		req.Desde = lunes.AddDate(0, 0, -7)

		result, err := engine.ScanDate(req, lunes)
		require.NoError(t, err)

		times := slotTimes(result.Dias, "2025-06-02")
		require.NotEmpty(t, times)
		assert.Equal(t, "14:00", times[0])
	})

	t.Run("slots carry doctor, consultorio and tipo", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		result, err := engine.ScanDate(baseReq(rd, nil), lunes)
		require.NoError(t, err)

		slot := result.Dias[0].Turnos[0]
		assert.Equal(t, "doc-1", slot.Doctor.ID)
		assert.Equal(t, "Dra. García", slot.Doctor.Nombre)
		assert.Equal(t, "cons-1", slot.ConsultorioID)
		assert.Equal(t, "tipo-1", slot.TipoDeTurnoID)
		assert.Equal(t, 30, slot.Duracion)
	})

	t.Run("booked turnos are skipped, cancelled ones are not", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		turnos := []entities.Turno{
			turno("t-1", lunes.Add(10*time.Hour), lunes.Add(10*time.Hour+30*time.Minute), entities.TurnoStatusConfirmado),
			turno("t-2", lunes.Add(11*time.Hour), lunes.Add(11*time.Hour+30*time.Minute), entities.TurnoStatusCancelado),
		}

		result, err := engine.ScanDate(baseReq(rd, turnos), lunes)
		require.NoError(t, err)

		times := slotTimes(result.Dias, "2025-06-02")
		assert.NotContains(t, times, "10:00")
		assert.Contains(t, times, "09:30")
		assert.Contains(t, times, "10:30")
		assert.Contains(t, times, "11:00") // cancelled booking does not occupy
	})

	t.Run("partial overlap snaps past the latest-ending booking", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		// Back-to-back overlapping bookings; the scan must resume after
		// the one ending last.
		turnos := []entities.Turno{
			turno("t-1", lunes.Add(9*time.Hour+15*time.Minute), lunes.Add(10*time.Hour), entities.TurnoStatusConfirmado),
			turno("t-2", lunes.Add(9*time.Hour+30*time.Minute), lunes.Add(10*time.Hour+15*time.Minute), entities.TurnoStatusConfirmado),
		}

		result, err := engine.ScanDate(baseReq(rd, turnos), lunes)
		require.NoError(t, err)

		times := slotTimes(result.Dias, "2025-06-02")
		assert.NotContains(t, times, "09:00")
		assert.NotContains(t, times, "09:30")
		assert.NotContains(t, times, "10:00")
		assert.Contains(t, times, "10:15")
	})

	t.Run("no emitted slot overlaps any occupied booking", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		turnos := []entities.Turno{
			turno("t-1", lunes.Add(9*time.Hour+45*time.Minute), lunes.Add(10*time.Hour+30*time.Minute), entities.TurnoStatusConfirmado),
			turno("t-2", lunes.Add(15*time.Hour), lunes.Add(16*time.Hour), entities.TurnoStatusPendiente),
		}

		result, err := engine.ScanDate(baseReq(rd, turnos), lunes)
		require.NoError(t, err)

		for _, d := range result.Dias {
			for _, s := range d.Turnos {
				desde := lunes.Add(time.Duration(s.Hora)*time.Hour + time.Duration(s.Minuto)*time.Minute)
				hasta := desde.Add(30 * time.Minute)
				for _, tr := range turnos {
					overlap := tr.Desde.Before(hasta) && tr.Hasta.After(desde)
					assert.False(t, overlap, "slot %02d:%02d overlaps %s", s.Hora, s.Minuto, tr.ID)
				}
			}
		}
	})

	t.Run("scan is idempotent over the same snapshot", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		turnos := []entities.Turno{
			turno("t-1", lunes.Add(10*time.Hour), lunes.Add(10*time.Hour+30*time.Minute), entities.TurnoStatusConfirmado),
		}

		first, err := engine.ScanDate(baseReq(rd, turnos), lunes)
		require.NoError(t, err)
		second, err := engine.ScanDate(baseReq(rd, turnos), lunes)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor(), agenda)

		req := baseReq(rd, nil)
		req.Duracion = 0
		_, err := engine.ScanDate(req, lunes)
		assert.Error(t, err)
	})
}

func TestEngine_Scan(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	t.Run("doctor with no agenda yields an empty result, not an error", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		rd := resolvedDoctor(t, testDoctor())

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			Now:            now,
		})
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Empty(t, result.Dias)
		assert.NotEmpty(t, result.Message)
	})

	t.Run("doctor closed every day terminates with no slots", func(t *testing.T) {
		engine := newTestEngine(t, nil)
		cerrado := semanal(time.Monday, "09:00", "18:00")
		cerrado.Atiende = false
		rd := resolvedDoctor(t, testDoctor(), cerrado)

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			Now:            now,
		})
		require.NoError(t, err)
		assert.True(t, result.OK)
		assert.Empty(t, result.Dias)
		assert.Equal(t, "sin disponibilidad de turnos", result.Message)
	})

	t.Run("penalty lead time pushes the first available date", func(t *testing.T) {
		engine := newTestEngine(t, &entities.SchedulingConfig{
			Limite:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			DiasAsa: 30,
			DiasCcr: 15,
		})
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			ASA:            true,
			Now:            now,
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Dias)

		minFecha := availability.DateKey(now.AddDate(0, 0, 30))
		for _, d := range result.Dias {
			assert.GreaterOrEqual(t, d.Fecha, minFecha)
		}
	})

	t.Run("both penalties apply the larger offset", func(t *testing.T) {
		engine := newTestEngine(t, &entities.SchedulingConfig{
			Limite:  time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			DiasAsa: 30,
			DiasCcr: 15,
		})
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			ASA:            true,
			CCR:            true,
			Now:            now,
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Dias)
		assert.GreaterOrEqual(t, result.Dias[0].Fecha, availability.DateKey(now.AddDate(0, 0, 30)))
	})

	t.Run("no slot extends past the horizon limit", func(t *testing.T) {
		limite := time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)
		engine := newTestEngine(t, &entities.SchedulingConfig{Limite: limite})
		rd := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "12:00"))

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			Now:            now,
		})
		require.NoError(t, err)

		for _, d := range result.Dias {
			assert.LessOrEqual(t, d.Fecha, "2025-06-16")
			if d.Fecha == "2025-06-16" {
				for _, s := range d.Turnos {
					// Last slot on the limit day must end by 10:00.
					assert.LessOrEqual(t, s.Hora*60+s.Minuto+s.Duracion, 10*60)
				}
			}
		}
	})

	t.Run("any-doctor scope merges doctors into shared dates", func(t *testing.T) {
		engine := newTestEngine(t, nil)

		otro := &entities.Doctor{ID: "doc-2", Nombre: "Dr. Pérez", Emoji: "🧑‍⚕️"}
		reglaOtro := entities.AgendaRule{
			ID:            "rule-otro",
			DoctorID:      "doc-2",
			ConsultorioID: "cons-1",
			Kind:          entities.RuleKindSemanal,
			Dia:           time.Monday,
			Atiende:       true,
			Desde:         "09:00",
			Hasta:         "10:00",
		}

		rd1 := resolvedDoctor(t, testDoctor(), semanal(time.Monday, "09:00", "10:00"))
		rd2, err := availability.NewResolvedDoctor(otro, []entities.AgendaRule{reglaOtro})
		require.NoError(t, err)

		result, err := engine.Scan(availability.ScanRequest{
			Doctors:        []*availability.ResolvedDoctor{rd1, rd2},
			ConsultorioIDs: []string{"cons-1"},
			Duracion:       30,
			Now:            now,
		})
		require.NoError(t, err)
		require.NotEmpty(t, result.Dias)

		doctores := map[string]bool{}
		for _, s := range result.Dias[0].Turnos {
			doctores[s.Doctor.ID] = true
		}
		assert.True(t, doctores["doc-1"])
		assert.True(t, doctores["doc-2"])
	})

	t.Run("missing horizon limit is a configuration fault", func(t *testing.T) {
		_, err := availability.NewEngine(&entities.SchedulingConfig{})
		assert.Error(t, err)
	})
}
