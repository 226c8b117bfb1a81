package repositories

import (
	"context"
	"time"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

// TurnoRepository defines the interface for turno data operations
type TurnoRepository interface {
	// Create creates a new turno
	Create(ctx context.Context, turno *entities.Turno) error

	// GetByID retrieves a turno by ID
	GetByID(ctx context.Context, id string) (*entities.Turno, error)

	// Update updates a turno
	Update(ctx context.Context, turno *entities.Turno) error

	// Cancel marks a turno as cancelled without deleting it
	Cancel(ctx context.Context, id string) error

	// ListByRange retrieves turnos overlapping [from, to) for the given
	// doctors and consultorios, sorted by start time ascending
	ListByRange(ctx context.Context, filter TurnoFilter) ([]entities.Turno, error)
}

// TurnoFilter defines filters for listing turnos
type TurnoFilter struct {
	DoctorIDs      []string
	ConsultorioIDs []string
	Status         entities.TurnoStatus
	From           time.Time
	To             time.Time
}

// TipoDeTurnoRepository defines the interface for appointment-type lookups
type TipoDeTurnoRepository interface {
	// GetByID retrieves an appointment type by ID
	GetByID(ctx context.Context, id string) (*entities.TipoDeTurno, error)

	// List retrieves all enabled appointment types
	List(ctx context.Context) ([]entities.TipoDeTurno, error)
}
