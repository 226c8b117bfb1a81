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

var tipoColumns = []interface{}{
	"id", "nombre", "duracion", "consultorios", "habilitado",
}

// TipoDeTurnoAdapter implements the TipoDeTurnoRepository interface
type TipoDeTurnoAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTipoDeTurnoAdapter creates a new appointment-type adapter
func NewTipoDeTurnoAdapter(client *postgres.Client) repositories.TipoDeTurnoRepository {
	return &TipoDeTurnoAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves an appointment type by ID
func (a *TipoDeTurnoAdapter) GetByID(ctx context.Context, id string) (*entities.TipoDeTurno, error) {
	query, args, err := a.db.Select(tipoColumns...).
		From("tipos_de_turno").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tipo := &entities.TipoDeTurno{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&tipo.ID,
		&tipo.Nombre,
		&tipo.Duracion,
		pq.Array(&tipo.ConsultorioIDs),
		&tipo.Habilitado,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("tipo de turno with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get tipo de turno", err)
	}

	return tipo, nil
}

// List retrieves all enabled appointment types
func (a *TipoDeTurnoAdapter) List(ctx context.Context) ([]entities.TipoDeTurno, error) {
	query, args, err := a.db.Select(tipoColumns...).
		From("tipos_de_turno").
		Where(goqu.Ex{"habilitado": true}).
		Order(goqu.I("nombre").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list tipos de turno", err)
	}
	defer rows.Close()

	var tipos []entities.TipoDeTurno
	for rows.Next() {
		tipo := entities.TipoDeTurno{}
		err := rows.Scan(
			&tipo.ID,
			&tipo.Nombre,
			&tipo.Duracion,
			pq.Array(&tipo.ConsultorioIDs),
			&tipo.Habilitado,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan tipo de turno", err)
		}
		tipos = append(tipos, tipo)
	}

	return tipos, nil
}
