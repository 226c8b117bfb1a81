package entities

import (
	"time"
)

// Doctor represents a practitioner of the consultorio
type Doctor struct {
	ID     string `json:"id" db:"id"`
	Nombre string `json:"nombre" db:"nombre"`
	Emoji  string `json:"emoji" db:"emoji"`

	// Feriados holds the doctor's personal non-working dates, each entry
	// either a single date ("2006-01-02") or an inclusive range
	// ("2006-01-02|2006-01-09").
	Feriados []string `json:"feriados" db:"feriados"`

	Activo    bool      `json:"activo" db:"activo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SlotDoctor is the doctor identity embedded in availability output
type SlotDoctor struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Emoji  string `json:"emoji"`
}

// Ref returns the doctor's identity as embedded in availability output
func (d *Doctor) Ref() SlotDoctor {
	return SlotDoctor{ID: d.ID, Nombre: d.Nombre, Emoji: d.Emoji}
}
