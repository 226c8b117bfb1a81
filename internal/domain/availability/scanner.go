package availability

import (
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

// defaultMaxIterations bounds the scan loop. The loop provably advances on
// every branch, so the cap only trips on a broken build; it is surfaced as
// an internal fault instead of truncating results silently.
const defaultMaxIterations = 500000

// Engine computes turno availability over an immutable snapshot supplied by
// the caller. It performs no I/O and is safe for concurrent use.
type Engine struct {
	resolver      *Resolver
	limite        time.Time
	diasAsa       int
	diasCcr       int
	maxIterations int
}

// NewEngine builds an engine from the office scheduling configuration
func NewEngine(cfg *entities.SchedulingConfig) (*Engine, error) {
	if cfg == nil {
		return nil, apperrors.NewValidationError("scheduling config is required")
	}
	if cfg.Limite.IsZero() {
		return nil, apperrors.NewValidationError("scheduling config has no horizon limit")
	}
	resolver, err := NewResolver(cfg.Feriados)
	if err != nil {
		return nil, err
	}
	return &Engine{
		resolver:      resolver,
		limite:        cfg.Limite.UTC(),
		diasAsa:       cfg.DiasAsa,
		diasCcr:       cfg.DiasCcr,
		maxIterations: defaultMaxIterations,
	}, nil
}

// ScanRequest is one availability computation over a booking snapshot.
// Doctors are pre-resolved by the caller; "any doctor" expansion happens
// before the engine is invoked.
type ScanRequest struct {
	Doctors        []*ResolvedDoctor
	ConsultorioIDs []string
	TipoDeTurnoID  string
	Duracion       int // minutes
	ASA            bool
	CCR            bool
	Desde          time.Time // search start; Now when zero
	Now            time.Time
	Turnos         []entities.Turno // booking snapshot
}

// ScanResult is the engine output. OK is true for "no availability"
// outcomes; only genuine configuration faults return an error instead.
type ScanResult struct {
	OK      bool                       `json:"ok"`
	Message string                     `json:"message,omitempty"`
	Dias    []entities.DayAvailability `json:"disponibilidad"`
}

// Scan walks the horizon from the request's effective start date to the
// configured limit, emitting every free slot of the requested duration.
func (e *Engine) Scan(req ScanRequest) (*ScanResult, error) {
	return e.scan(req, e.limite)
}

// ScanDate bounds the scan to a single calendar date. Used by the
// per-day availability view.
func (e *Engine) ScanDate(req ScanRequest, fecha time.Time) (*ScanResult, error) {
	day := dayStart(fecha)
	if req.Desde.IsZero() || req.Desde.Before(day) {
		req.Desde = day
	}
	limite := nextDay(day)
	if limite.After(e.limite) {
		limite = e.limite
	}
	return e.scan(req, limite)
}

func (e *Engine) scan(req ScanRequest, limite time.Time) (*ScanResult, error) {
	if req.Duracion <= 0 {
		return nil, apperrors.NewValidationError("slot duration must be positive")
	}

	start := e.effectiveStart(req)

	result := &ScanResult{OK: true, Dias: []entities.DayAvailability{}}

	scoped := false
	byDate := make(map[string]int)
	for _, rd := range req.Doctors {
		for _, consultorioID := range req.ConsultorioIDs {
			if !rd.HasAgenda(consultorioID) {
				continue
			}
			scoped = true
			turnos := occupiedTurnos(req.Turnos, rd.Doctor.ID, consultorioID)
			if err := e.scanDoctor(rd, consultorioID, req, start, limite, turnos, result, byDate); err != nil {
				return nil, err
			}
		}
	}

	if !scoped {
		result.Message = "sin agenda para los consultorios solicitados"
		return result, nil
	}
	if len(result.Dias) == 0 {
		result.Message = "sin disponibilidad de turnos"
	}
	return result, nil
}

// effectiveStart floors the search start at the current instant, then
// applies the penalty lead-time policy: a patient with an ASA or CCR
// penalty cannot book before now plus the configured offset. When both
// penalties apply, the larger offset wins. A requested start in the past
// never widens the scan.
func (e *Engine) effectiveStart(req ScanRequest) time.Time {
	start := req.Desde
	if start.IsZero() || start.Before(req.Now) {
		start = req.Now
	}

	dias := 0
	if req.ASA && e.diasAsa > dias {
		dias = e.diasAsa
	}
	if req.CCR && e.diasCcr > dias {
		dias = e.diasCcr
	}
	if dias > 0 {
		minStart := req.Now.Add(time.Duration(dias) * 24 * time.Hour)
		if start.Before(minStart) {
			start = minStart
		}
	}

	return start.UTC().Truncate(time.Minute)
}

func (e *Engine) scanDoctor(
	rd *ResolvedDoctor,
	consultorioID string,
	req ScanRequest,
	start, limite time.Time,
	turnos []entities.Turno,
	result *ScanResult,
	byDate map[string]int,
) error {
	dur := time.Duration(req.Duracion) * time.Minute

	// The first increment lands exactly on the start instant.
	cur := start.Add(-dur)

	for it := 0; ; it++ {
		if it >= e.maxIterations {
			return apperrors.NewInternalError("slot scan exceeded iteration limit", nil)
		}

		cur = cur.Add(dur)
		if cur.Add(dur).After(limite) {
			return nil
		}

		win := e.resolver.Resolve(rd, consultorioID, cur)
		if !win.Atiende {
			cur = nextDay(cur).Add(-dur)
			continue
		}

		min := minuteOfDay(cur)
		if min < win.Desde {
			cur = dayStart(cur).Add(time.Duration(win.Desde)*time.Minute - dur)
			continue
		}
		if min+req.Duracion > win.Hasta {
			cur = nextDay(cur).Add(-dur)
			continue
		}
		if win.overlapsCorte(min, min+req.Duracion) {
			cur = dayStart(cur).Add(time.Duration(win.CorteHasta)*time.Minute - dur)
			continue
		}
		if t := lastOverlapping(turnos, cur, cur.Add(dur)); t != nil {
			cur = t.Hasta.UTC().Truncate(time.Minute).Add(-dur)
			continue
		}

		slot := entities.Slot{
			Hora:          min / 60,
			Minuto:        min % 60,
			Doctor:        rd.Doctor,
			ConsultorioID: consultorioID,
			Duracion:      req.Duracion,
			TipoDeTurnoID: req.TipoDeTurnoID,
		}

		key := DateKey(cur)
		idx, ok := byDate[key]
		if !ok {
			result.Dias = append(result.Dias, entities.DayAvailability{
				Fecha:     key,
				DiaSemana: DiaSemana(cur),
			})
			idx = len(result.Dias) - 1
			byDate[key] = idx
		}
		result.Dias[idx].Turnos = append(result.Dias[idx].Turnos, slot)
	}
}

// occupiedTurnos filters the snapshot down to the turnos that block this
// doctor at this consultorio.
func occupiedTurnos(turnos []entities.Turno, doctorID, consultorioID string) []entities.Turno {
	out := make([]entities.Turno, 0, len(turnos))
	for _, t := range turnos {
		if t.DoctorID == doctorID && t.ConsultorioID == consultorioID && t.Status.Ocupa() {
			out = append(out, t)
		}
	}
	return out
}

// lastOverlapping returns the latest-ending turno overlapping the candidate
// interval, or nil. Snapping to the latest end guarantees forward progress
// when bookings overlap each other.
func lastOverlapping(turnos []entities.Turno, desde, hasta time.Time) *entities.Turno {
	var last *entities.Turno
	for i := range turnos {
		t := &turnos[i]
		if t.Desde.Before(hasta) && t.Hasta.After(desde) {
			if last == nil || t.Hasta.After(last.Hasta) {
				last = t
			}
		}
	}
	return last
}
