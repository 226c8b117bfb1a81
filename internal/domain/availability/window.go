package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WorkingWindow is the resolved working period for one doctor, consultorio
// and calendar date. All fields are minutes since midnight.
type WorkingWindow struct {
	Atiende    bool
	Desde      int
	Hasta      int
	CorteDesde int
	CorteHasta int
	TieneCorte bool
}

var diasSemana = [7]string{
	"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado",
}

// DiaSemana returns the Spanish weekday name for a date
func DiaSemana(t time.Time) string {
	return diasSemana[int(t.UTC().Weekday())]
}

// DateKey formats a date as the "2006-01-02" key used to group slots
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseHHMM parses an "HH:MM" agenda time into minutes since midnight.
// Malformed strings are a configuration fault and fail the computation.
func ParseHHMM(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return hour*60 + minute, nil
}

func minuteOfDay(t time.Time) int {
	t = t.UTC()
	return t.Hour()*60 + t.Minute()
}

func dayStart(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func nextDay(t time.Time) time.Time {
	return dayStart(t).Add(24 * time.Hour)
}

// overlapsCorte applies the scanner's inclusive boundary rule: an interval
// ending exactly at the cut start is still excluded, one starting exactly at
// the cut end is not.
func (w WorkingWindow) overlapsCorte(desde, hasta int) bool {
	return w.TieneCorte && hasta >= w.CorteDesde && desde < w.CorteHasta
}

// contiene reports whether the minute interval lies fully inside the window
func (w WorkingWindow) contiene(desde, hasta int) bool {
	return desde >= w.Desde && hasta <= w.Hasta
}

// dateRange is a parsed feriado entry, a single day or an inclusive span
type dateRange struct {
	desde string
	hasta string
}

func (r dateRange) contains(key string) bool {
	return key >= r.desde && key <= r.hasta
}

// parseFeriados parses feriado entries: "2006-01-02" or "2006-01-02|2006-01-09"
func parseFeriados(entries []string) ([]dateRange, error) {
	ranges := make([]dateRange, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		parts := strings.SplitN(e, "|", 2)
		desde, err := parseFecha(parts[0])
		if err != nil {
			return nil, err
		}
		hasta := desde
		if len(parts) == 2 {
			hasta, err = parseFecha(parts[1])
			if err != nil {
				return nil, err
			}
		}
		ranges = append(ranges, dateRange{desde: desde, hasta: hasta})
	}
	return ranges, nil
}

func parseFecha(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("invalid feriado date %q: %w", s, err)
	}
	return t.Format("2006-01-02"), nil
}

func containsDate(ranges []dateRange, day time.Time) bool {
	key := DateKey(day)
	for _, r := range ranges {
		if r.contains(key) {
			return true
		}
	}
	return false
}
