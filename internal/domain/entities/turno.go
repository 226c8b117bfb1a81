package entities

import (
	"time"
)

// TurnoStatus represents the status of a turno
type TurnoStatus string

const (
	TurnoStatusPendiente  TurnoStatus = "pendiente"
	TurnoStatusConfirmado TurnoStatus = "confirmado"
	TurnoStatusCancelado  TurnoStatus = "cancelado"
	TurnoStatusAtendido   TurnoStatus = "atendido"
)

// Ocupa reports whether the status counts against availability
func (s TurnoStatus) Ocupa() bool {
	return s != TurnoStatusCancelado
}

// Turno represents a booked appointment
type Turno struct {
	ID            string `json:"id" db:"id"`
	DoctorID      string `json:"doctor_id" db:"doctor_id"`
	ConsultorioID string `json:"consultorio_id" db:"consultorio_id"`
	TipoDeTurnoID string `json:"tipo_de_turno_id" db:"tipo_de_turno_id"`

	Desde    time.Time `json:"desde" db:"desde"`
	Hasta    time.Time `json:"hasta" db:"hasta"`
	Duracion int       `json:"duracion" db:"duracion"` // minutes

	Status TurnoStatus `json:"status" db:"status"`

	PacienteNombre   string `json:"paciente_nombre" db:"paciente_nombre"`
	PacienteTelefono string `json:"paciente_telefono" db:"paciente_telefono"`
	PacienteEmail    string `json:"paciente_email" db:"paciente_email"`
	Notas            string `json:"notas" db:"notas"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DuracionMinutos returns the turno duration, deriving it from the
// interval when the stored value is missing.
func (t *Turno) DuracionMinutos() int {
	if t.Duracion > 0 {
		return t.Duracion
	}
	return int(t.Hasta.Sub(t.Desde) / time.Minute)
}

// TipoDeTurno is an appointment type: its duration and the consultorios
// where it may be booked
type TipoDeTurno struct {
	ID             string   `json:"id" db:"id"`
	Nombre         string   `json:"nombre" db:"nombre"`
	Duracion       int      `json:"duracion" db:"duracion"` // minutes
	ConsultorioIDs []string `json:"consultorios" db:"consultorios"`
	Habilitado     bool     `json:"habilitado" db:"habilitado"`
}
