package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

var agendaColumns = []interface{}{
	"id", "doctor_id", "consultorio_id", "kind", "dia", "fecha",
	"atiende", "desde", "hasta", "corte_desde", "corte_hasta",
}

// AgendaAdapter implements the AgendaRepository interface
type AgendaAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAgendaAdapter creates a new agenda adapter
func NewAgendaAdapter(client *postgres.Client) repositories.AgendaRepository {
	return &AgendaAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListByDoctor retrieves the agenda rules of one doctor
func (a *AgendaAdapter) ListByDoctor(ctx context.Context, doctorID string, consultorioIDs []string) ([]entities.AgendaRule, error) {
	ds := a.db.Select(agendaColumns...).
		From("agenda").
		Where(goqu.Ex{"doctor_id": doctorID})

	if len(consultorioIDs) > 0 {
		ds = ds.Where(goqu.C("consultorio_id").In(consultorioIDs))
	}

	return a.listRules(ctx, ds)
}

// ListByConsultorios retrieves the agenda rules of every doctor attending
// in any of the given consultorios
func (a *AgendaAdapter) ListByConsultorios(ctx context.Context, consultorioIDs []string) ([]entities.AgendaRule, error) {
	ds := a.db.Select(agendaColumns...).
		From("agenda").
		Where(goqu.C("consultorio_id").In(consultorioIDs))

	return a.listRules(ctx, ds)
}

func (a *AgendaAdapter) listRules(ctx context.Context, ds *goqu.SelectDataset) ([]entities.AgendaRule, error) {
	query, args, err := ds.Order(goqu.I("doctor_id").Asc(), goqu.I("consultorio_id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build agenda query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list agenda rules", err)
	}
	defer rows.Close()

	var rules []entities.AgendaRule
	for rows.Next() {
		rule := entities.AgendaRule{}
		var dia sql.NullInt64
		var fecha, desde, hasta, corteDesde, corteHasta sql.NullString

		err := rows.Scan(
			&rule.ID,
			&rule.DoctorID,
			&rule.ConsultorioID,
			&rule.Kind,
			&dia,
			&fecha,
			&rule.Atiende,
			&desde,
			&hasta,
			&corteDesde,
			&corteHasta,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan agenda rule", err)
		}

		rule.Dia = time.Weekday(dia.Int64)
		rule.Fecha = fecha.String
		rule.Desde = desde.String
		rule.Hasta = hasta.String
		rule.CorteDesde = corteDesde.String
		rule.CorteHasta = corteHasta.String

		rules = append(rules, rule)
	}

	return rules, nil
}
