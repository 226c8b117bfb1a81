package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

var doctorColumns = []interface{}{
	"id", "nombre", "emoji", "feriados", "activo", "created_at", "updated_at",
}

// DoctorAdapter implements the DoctorRepository interface
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctores").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	doctor, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get doctor", err)
	}

	return doctor, nil
}

// List retrieves all active doctors
func (a *DoctorAdapter) List(ctx context.Context) ([]entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).
		From("doctores").
		Where(goqu.Ex{"activo": true}).
		Order(goqu.I("nombre").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctores []entities.Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctores = append(doctores, *doctor)
	}

	return doctores, nil
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	doctor := &entities.Doctor{}
	var emoji sql.NullString

	err := row.Scan(
		&doctor.ID,
		&doctor.Nombre,
		&emoji,
		pq.Array(&doctor.Feriados),
		&doctor.Activo,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doctor.Emoji = emoji.String
	return doctor, nil
}
