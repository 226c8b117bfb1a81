package availability

import (
	"sort"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

// officeOffset shifts dates onto the office's local calendar day before
// matching office holidays. The office calendar runs on UTC-3.
const officeOffset = -3 * time.Hour

// agendaWindow is a pre-parsed agenda rule window
type agendaWindow struct {
	atiende    bool
	desde      int
	hasta      int
	corteDesde int
	corteHasta int
	tieneCorte bool
}

func (w *agendaWindow) working() WorkingWindow {
	return WorkingWindow{
		Atiende:    w.atiende,
		Desde:      w.desde,
		Hasta:      w.hasta,
		CorteDesde: w.corteDesde,
		CorteHasta: w.corteHasta,
		TieneCorte: w.tieneCorte,
	}
}

// ruleSet indexes one consultorio's agenda rules for a doctor
type ruleSet struct {
	semanal [7]*agendaWindow
	feriado *agendaWindow
	fechas  map[string]*agendaWindow
}

// ResolvedDoctor is a doctor with its agenda rules parsed and indexed once,
// before scanning. The engine never mutates it.
type ResolvedDoctor struct {
	Doctor   entities.SlotDoctor
	rules    map[string]*ruleSet
	feriados []dateRange
}

// NewResolvedDoctor validates and indexes a doctor's agenda rules.
// Malformed time strings or feriado dates abort the whole computation.
func NewResolvedDoctor(doctor *entities.Doctor, rules []entities.AgendaRule) (*ResolvedDoctor, error) {
	feriados, err := parseFeriados(doctor.Feriados)
	if err != nil {
		return nil, apperrors.NewValidationError("doctor " + doctor.ID + ": " + err.Error())
	}

	rd := &ResolvedDoctor{
		Doctor:   doctor.Ref(),
		rules:    make(map[string]*ruleSet),
		feriados: feriados,
	}

	for i := range rules {
		rule := &rules[i]
		if rule.DoctorID != doctor.ID {
			continue
		}
		win, err := parseRule(rule)
		if err != nil {
			return nil, err
		}

		rs := rd.rules[rule.ConsultorioID]
		if rs == nil {
			rs = &ruleSet{fechas: make(map[string]*agendaWindow)}
			rd.rules[rule.ConsultorioID] = rs
		}

		switch rule.Kind {
		case entities.RuleKindSemanal:
			if rule.Dia < 0 || rule.Dia > 6 {
				return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": weekday out of range")
			}
			rs.semanal[rule.Dia] = win
		case entities.RuleKindFeriado:
			rs.feriado = win
		case entities.RuleKindFecha:
			fecha, err := parseFecha(rule.Fecha)
			if err != nil {
				return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": " + err.Error())
			}
			rs.fechas[fecha] = win
		default:
			return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": unknown kind " + string(rule.Kind))
		}
	}

	return rd, nil
}

func parseRule(rule *entities.AgendaRule) (*agendaWindow, error) {
	win := &agendaWindow{atiende: rule.Atiende}

	if !rule.Atiende && rule.Desde == "" && rule.Hasta == "" {
		return win, nil
	}

	desde, err := ParseHHMM(rule.Desde)
	if err != nil {
		return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": " + err.Error())
	}
	hasta, err := ParseHHMM(rule.Hasta)
	if err != nil {
		return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": " + err.Error())
	}
	win.desde = desde
	win.hasta = hasta

	if rule.CorteDesde != "" && rule.CorteHasta != "" {
		corteDesde, err := ParseHHMM(rule.CorteDesde)
		if err != nil {
			return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": " + err.Error())
		}
		corteHasta, err := ParseHHMM(rule.CorteHasta)
		if err != nil {
			return nil, apperrors.NewValidationError("agenda rule " + rule.ID + ": " + err.Error())
		}
		win.corteDesde = corteDesde
		win.corteHasta = corteHasta
		win.tieneCorte = true
	}

	return win, nil
}

// Consultorios returns the consultorios this doctor has agenda rules for,
// in stable order.
func (rd *ResolvedDoctor) Consultorios() []string {
	out := make([]string, 0, len(rd.rules))
	for id := range rd.rules {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasAgenda reports whether the doctor has any rule at the consultorio
func (rd *ResolvedDoctor) HasAgenda(consultorioID string) bool {
	return rd.rules[consultorioID] != nil
}

func (rd *ResolvedDoctor) isFeriadoPersonal(date time.Time) bool {
	return containsDate(rd.feriados, date)
}

// Resolver resolves the effective working window for a date, applying the
// override precedence: weekly baseline, office holiday (closed unless the
// feriado rule re-opens it), date override when still closed, and the
// doctor's personal non-working dates last, which always win.
type Resolver struct {
	officeFeriados []dateRange
}

// NewResolver creates a resolver over the office holiday calendar
func NewResolver(feriados []string) (*Resolver, error) {
	ranges, err := parseFeriados(feriados)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return &Resolver{officeFeriados: ranges}, nil
}

// Resolve computes the working window for a doctor at a consultorio on the
// date carrying the given instant. Rules were validated at ResolvedDoctor
// construction, so resolution cannot fail.
func (r *Resolver) Resolve(rd *ResolvedDoctor, consultorioID string, date time.Time) WorkingWindow {
	rs := rd.rules[consultorioID]
	if rs == nil {
		return WorkingWindow{}
	}

	var win WorkingWindow
	if w := rs.semanal[int(date.UTC().Weekday())]; w != nil {
		win = w.working()
	}

	if r.isOfficeFeriado(date) {
		if rs.feriado != nil {
			win = rs.feriado.working()
		} else {
			win.Atiende = false
		}
	}

	if !win.Atiende {
		if w := rs.fechas[DateKey(date)]; w != nil && w.atiende {
			win = w.working()
		}
	}

	// Applied last: a personal non-working date can never be re-opened.
	if rd.isFeriadoPersonal(date) {
		win.Atiende = false
	}

	return win
}

func (r *Resolver) isOfficeFeriado(date time.Time) bool {
	return containsDate(r.officeFeriados, date.Add(officeOffset))
}
