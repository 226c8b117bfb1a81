package entities

import (
	"time"
)

// Slot is one free bookable interval produced by the availability scan
type Slot struct {
	Hora          int        `json:"hora"`
	Minuto        int        `json:"minuto"`
	Doctor        SlotDoctor `json:"doctor"`
	ConsultorioID string     `json:"consultorioId"`
	Duracion      int        `json:"duracion"`
	TipoDeTurnoID string     `json:"tipoDeTurnoId,omitempty"`
}

// DayAvailability groups the free slots of one calendar date
type DayAvailability struct {
	Fecha     string `json:"fecha"` // "2006-01-02"
	DiaSemana string `json:"diaSemana"`
	Turnos    []Slot `json:"turnos"`
}

// Disponibilidad is a free interval adjacent to (or replacing) a turno
type Disponibilidad struct {
	Desde         time.Time  `json:"desde"`
	Hasta         time.Time  `json:"hasta"`
	Duracion      int        `json:"duracion"`
	Doctor        SlotDoctor `json:"doctor"`
	ConsultorioID string     `json:"consultorio"`
}

// TurnoDisponibilidad is a turno annotated with the free slots the gap
// analysis found immediately before and after it. A cancelled turno
// carries its own freed interval as DisponibilidadAnterior.
type TurnoDisponibilidad struct {
	Turno
	DisponibilidadAnterior  *Disponibilidad `json:"disponibilidadAnterior,omitempty"`
	DisponibilidadPosterior *Disponibilidad `json:"disponibilidadPosterior,omitempty"`
}
