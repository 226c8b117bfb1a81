package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

var turnoColumns = []interface{}{
	"id", "doctor_id", "consultorio_id", "tipo_de_turno_id",
	"desde", "hasta", "duracion", "status",
	"paciente_nombre", "paciente_telefono", "paciente_email", "notas",
	"created_at", "updated_at",
}

// TurnoAdapter implements the TurnoRepository interface
type TurnoAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTurnoAdapter creates a new turno adapter
func NewTurnoAdapter(client *postgres.Client) repositories.TurnoRepository {
	return &TurnoAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new turno
func (a *TurnoAdapter) Create(ctx context.Context, turno *entities.Turno) error {
	record := goqu.Record{
		"id":                turno.ID,
		"doctor_id":         turno.DoctorID,
		"consultorio_id":    turno.ConsultorioID,
		"tipo_de_turno_id":  turno.TipoDeTurnoID,
		"desde":             turno.Desde,
		"hasta":             turno.Hasta,
		"duracion":          turno.Duracion,
		"status":            turno.Status,
		"paciente_nombre":   turno.PacienteNombre,
		"paciente_telefono": turno.PacienteTelefono,
		"paciente_email":    turno.PacienteEmail,
		"notas":             turno.Notas,
		"created_at":        turno.CreatedAt,
		"updated_at":        turno.UpdatedAt,
	}

	query, args, err := a.db.Insert("turnos").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create turno", err)
	}

	return nil
}

// GetByID retrieves a turno by ID
func (a *TurnoAdapter) GetByID(ctx context.Context, id string) (*entities.Turno, error) {
	query, args, err := a.db.Select(turnoColumns...).
		From("turnos").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	turno, err := scanTurno(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("turno with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get turno", err)
	}

	return turno, nil
}

// Update updates a turno
func (a *TurnoAdapter) Update(ctx context.Context, turno *entities.Turno) error {
	turno.UpdatedAt = time.Now()

	record := goqu.Record{
		"desde":             turno.Desde,
		"hasta":             turno.Hasta,
		"duracion":          turno.Duracion,
		"status":            turno.Status,
		"paciente_nombre":   turno.PacienteNombre,
		"paciente_telefono": turno.PacienteTelefono,
		"paciente_email":    turno.PacienteEmail,
		"notas":             turno.Notas,
		"updated_at":        turno.UpdatedAt,
	}

	query, args, err := a.db.Update("turnos").
		Set(record).
		Where(goqu.Ex{"id": turno.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update turno", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("turno with id %s not found", turno.ID))
	}

	return nil
}

// Cancel marks a turno as cancelled
func (a *TurnoAdapter) Cancel(ctx context.Context, id string) error {
	query, args, err := a.db.Update("turnos").
		Set(goqu.Record{
			"status":     entities.TurnoStatusCancelado,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build cancel query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to cancel turno", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("turno with id %s not found", id))
	}

	return nil
}

// ListByRange retrieves turnos overlapping [from, to), sorted by start time
func (a *TurnoAdapter) ListByRange(ctx context.Context, filter repositories.TurnoFilter) ([]entities.Turno, error) {
	ds := a.db.Select(turnoColumns...).From("turnos")

	if len(filter.DoctorIDs) > 0 {
		ds = ds.Where(goqu.C("doctor_id").In(filter.DoctorIDs))
	}

	if len(filter.ConsultorioIDs) > 0 {
		ds = ds.Where(goqu.C("consultorio_id").In(filter.ConsultorioIDs))
	}

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}

	if !filter.From.IsZero() {
		ds = ds.Where(goqu.C("hasta").Gt(filter.From))
	}

	if !filter.To.IsZero() {
		ds = ds.Where(goqu.C("desde").Lt(filter.To))
	}

	ds = ds.Order(goqu.I("desde").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list turnos", err)
	}
	defer rows.Close()

	var turnos []entities.Turno
	for rows.Next() {
		turno, err := scanTurno(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan turno", err)
		}
		turnos = append(turnos, *turno)
	}

	return turnos, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTurno(row rowScanner) (*entities.Turno, error) {
	turno := &entities.Turno{}
	var tipoDeTurnoID, pacienteTelefono, pacienteEmail, notas sql.NullString

	err := row.Scan(
		&turno.ID,
		&turno.DoctorID,
		&turno.ConsultorioID,
		&tipoDeTurnoID,
		&turno.Desde,
		&turno.Hasta,
		&turno.Duracion,
		&turno.Status,
		&turno.PacienteNombre,
		&pacienteTelefono,
		&pacienteEmail,
		&notas,
		&turno.CreatedAt,
		&turno.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	turno.TipoDeTurnoID = tipoDeTurnoID.String
	turno.PacienteTelefono = pacienteTelefono.String
	turno.PacienteEmail = pacienteEmail.String
	turno.Notas = notas.String

	return turno, nil
}
