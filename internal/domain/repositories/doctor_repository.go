package repositories

import (
	"context"

	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
)

// DoctorRepository defines the interface for doctor data operations
type DoctorRepository interface {
	// GetByID retrieves a doctor by ID
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)

	// List retrieves all active doctors
	List(ctx context.Context) ([]entities.Doctor, error)
}

// AgendaRepository defines the interface for agenda rule lookups
type AgendaRepository interface {
	// ListByDoctor retrieves the agenda rules of one doctor, optionally
	// restricted to the given consultorios
	ListByDoctor(ctx context.Context, doctorID string, consultorioIDs []string) ([]entities.AgendaRule, error)

	// ListByConsultorios retrieves the agenda rules of every doctor who
	// attends in any of the given consultorios
	ListByConsultorios(ctx context.Context, consultorioIDs []string) ([]entities.AgendaRule, error)
}

// ConfigRepository defines the interface for scheduling configuration
type ConfigRepository interface {
	// GetScheduling retrieves the scheduling configuration: office
	// holidays, booking horizon and penalty lead times
	GetScheduling(ctx context.Context) (*entities.SchedulingConfig, error)
}
