package entities

import (
	"time"
)

// RuleKind discriminates the three kinds of agenda rules
type RuleKind string

const (
	// RuleKindSemanal is a weekly recurring rule for one weekday
	RuleKindSemanal RuleKind = "semanal"

	// RuleKindFeriado re-opens (or re-shapes) office holidays with its own hours
	RuleKindFeriado RuleKind = "feriado"

	// RuleKindFecha overrides the schedule for one concrete date
	RuleKindFecha RuleKind = "fecha"
)

// AgendaRule is one working-hours rule for a doctor at a consultorio.
// Weekly rules carry Dia, date rules carry Fecha; the feriado rule carries
// neither. Times are "HH:MM" strings as entered by the configuration UI.
type AgendaRule struct {
	ID            string   `json:"id" db:"id"`
	DoctorID      string   `json:"doctor_id" db:"doctor_id"`
	ConsultorioID string   `json:"consultorio_id" db:"consultorio_id"`
	Kind          RuleKind `json:"kind" db:"kind"`

	Dia   time.Weekday `json:"dia" db:"dia"`     // RuleKindSemanal only
	Fecha string       `json:"fecha" db:"fecha"` // RuleKindFecha only, "2006-01-02"

	Atiende bool   `json:"atiende" db:"atiende"`
	Desde   string `json:"desde" db:"desde"` // "HH:MM"
	Hasta   string `json:"hasta" db:"hasta"` // "HH:MM"

	// Lunch cut, empty means no cut.
	CorteDesde string `json:"corte_desde" db:"corte_desde"`
	CorteHasta string `json:"corte_hasta" db:"corte_hasta"`
}

// SchedulingConfig is the office-wide scheduling configuration
type SchedulingConfig struct {
	// Feriados holds office-wide holidays, same encoding as Doctor.Feriados.
	Feriados []string `json:"feriados"`

	// Limite is the end of the booking horizon; no slot may extend past it.
	Limite time.Time `json:"limite"`

	// Lead-time offsets (in days) applied when the patient carries a
	// no-show (ASA) or late-cancellation (CCR) penalty.
	DiasAsa int `json:"dias_asa"`
	DiasCcr int `json:"dias_ccr"`
}
