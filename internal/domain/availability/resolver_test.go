package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/jmauas/consultorio-sub000/internal/domain/availability"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

func testDoctor(feriados ...string) *entities.Doctor {
	return &entities.Doctor{
		ID:       "doc-1",
		Nombre:   "Dra. García",
		Emoji:    "🩺",
		Feriados: feriados,
		Activo:   true,
	}
}

func semanal(dia time.Weekday, desde, hasta string) entities.AgendaRule {
	return entities.AgendaRule{
		ID:            "rule-" + desde,
		DoctorID:      "doc-1",
		ConsultorioID: "cons-1",
		Kind:          entities.RuleKindSemanal,
		Dia:           dia,
		Atiende:       true,
		Desde:         desde,
		Hasta:         hasta,
	}
}

func TestResolver_Resolve(t *testing.T) {
	// 2025-06-02 is a Monday.
	lunes := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	t.Run("weekly baseline applies on its weekday", func(t *testing.T) {
		rd, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{
			semanal(time.Monday, "09:00", "18:00"),
		})
		require.NoError(t, err)

		resolver, err := availability.NewResolver(nil)
		require.NoError(t, err)

		win := resolver.Resolve(rd, "cons-1", lunes)
		assert.True(t, win.Atiende)
		assert.Equal(t, 9*60, win.Desde)
		assert.Equal(t, 18*60, win.Hasta)

		// No rule for Tuesday.
		win = resolver.Resolve(rd, "cons-1", lunes.AddDate(0, 0, 1))
		assert.False(t, win.Atiende)
	})

	t.Run("office holiday closes the day", func(t *testing.T) {
		rd, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{
			semanal(time.Monday, "09:00", "18:00"),
		})
		require.NoError(t, err)

		resolver, err := availability.NewResolver([]string{"2025-06-02"})
		require.NoError(t, err)

		win := resolver.Resolve(rd, "cons-1", lunes)
		assert.False(t, win.Atiende)
	})

	t.Run("feriado rule reopens an office holiday with its own hours", func(t *testing.T) {
		rules := []entities.AgendaRule{
			semanal(time.Monday, "09:00", "18:00"),
			{
				ID:            "rule-feriado",
				DoctorID:      "doc-1",
				ConsultorioID: "cons-1",
				Kind:          entities.RuleKindFeriado,
				Atiende:       true,
				Desde:         "10:00",
				Hasta:         "13:00",
			},
		}
		rd, err := availability.NewResolvedDoctor(testDoctor(), rules)
		require.NoError(t, err)

		resolver, err := availability.NewResolver([]string{"2025-06-02"})
		require.NoError(t, err)

		win := resolver.Resolve(rd, "cons-1", lunes)
		assert.True(t, win.Atiende)
		assert.Equal(t, 10*60, win.Desde)
		assert.Equal(t, 13*60, win.Hasta)
	})

	t.Run("date override reopens a closed day", func(t *testing.T) {
		rules := []entities.AgendaRule{
			{
				ID:            "rule-fecha",
				DoctorID:      "doc-1",
				ConsultorioID: "cons-1",
				Kind:          entities.RuleKindFecha,
				Fecha:         "2025-06-03",
				Atiende:       true,
				Desde:         "14:00",
				Hasta:         "17:00",
			},
		}
		rd, err := availability.NewResolvedDoctor(testDoctor(), rules)
		require.NoError(t, err)

		resolver, err := availability.NewResolver(nil)
		require.NoError(t, err)

		martes := lunes.AddDate(0, 0, 1)
		win := resolver.Resolve(rd, "cons-1", martes)
		assert.True(t, win.Atiende)
		assert.Equal(t, 14*60, win.Desde)
	})

	t.Run("doctor personal feriado always wins", func(t *testing.T) {
		rules := []entities.AgendaRule{
			semanal(time.Monday, "09:00", "18:00"),
			{
				ID:            "rule-feriado",
				DoctorID:      "doc-1",
				ConsultorioID: "cons-1",
				Kind:          entities.RuleKindFeriado,
				Atiende:       true,
				Desde:         "10:00",
				Hasta:         "13:00",
			},
		}
		rd, err := availability.NewResolvedDoctor(testDoctor("2025-06-02"), rules)
		require.NoError(t, err)

		// Even with an office holiday reopened by the feriado rule, the
		// doctor's own non-working date forces the day closed.
		resolver, err := availability.NewResolver([]string{"2025-06-02"})
		require.NoError(t, err)

		win := resolver.Resolve(rd, "cons-1", lunes)
		assert.False(t, win.Atiende)
	})

	t.Run("personal feriado range covers every day inside it", func(t *testing.T) {
		rd, err := availability.NewResolvedDoctor(
			testDoctor("2025-06-02|2025-06-06"),
			[]entities.AgendaRule{semanal(time.Wednesday, "09:00", "18:00")},
		)
		require.NoError(t, err)

		resolver, err := availability.NewResolver(nil)
		require.NoError(t, err)

		miercoles := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
		assert.False(t, resolver.Resolve(rd, "cons-1", miercoles).Atiende)

		siguiente := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC)
		assert.True(t, resolver.Resolve(rd, "cons-1", siguiente).Atiende)
	})

	t.Run("office holiday matching uses the office local day", func(t *testing.T) {
		rd, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{
			semanal(time.Monday, "00:00", "23:00"),
		})
		require.NoError(t, err)

		resolver, err := availability.NewResolver([]string{"2025-06-02"})
		require.NoError(t, err)

		// 02:00 UTC still belongs to the previous office day (UTC-3).
		temprano := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
		assert.True(t, resolver.Resolve(rd, "cons-1", temprano).Atiende)

		mediodia := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
		assert.False(t, resolver.Resolve(rd, "cons-1", mediodia).Atiende)
	})

	t.Run("unknown consultorio resolves to closed", func(t *testing.T) {
		rd, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{
			semanal(time.Monday, "09:00", "18:00"),
		})
		require.NoError(t, err)

		resolver, err := availability.NewResolver(nil)
		require.NoError(t, err)

		assert.False(t, resolver.Resolve(rd, "cons-2", lunes).Atiende)
	})
}

func TestNewResolvedDoctor_Validation(t *testing.T) {
	t.Run("rejects malformed agenda times", func(t *testing.T) {
		rule := semanal(time.Monday, "9am", "18:00")
		_, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{rule})
		assert.Error(t, err)
	})

	t.Run("rejects malformed feriado dates", func(t *testing.T) {
		_, err := availability.NewResolvedDoctor(testDoctor("not-a-date"), nil)
		assert.Error(t, err)
	})

	t.Run("closed rule without hours is accepted", func(t *testing.T) {
		rule := entities.AgendaRule{
			ID:            "rule-off",
			DoctorID:      "doc-1",
			ConsultorioID: "cons-1",
			Kind:          entities.RuleKindSemanal,
			Dia:           time.Sunday,
			Atiende:       false,
		}
		_, err := availability.NewResolvedDoctor(testDoctor(), []entities.AgendaRule{rule})
		assert.NoError(t, err)
	})
}

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"0900", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := availability.ParseHHMM(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
