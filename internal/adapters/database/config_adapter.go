package database

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmauas/consultorio-sub000/internal/domain/entities"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/jmauas/consultorio-sub000/pkg/errors"
)

// Keys in the configuracion key/value table.
const (
	configKeyFeriados = "feriados"
	configKeyLimite   = "limite"
	configKeyDiasAsa  = "dias_asa"
	configKeyDiasCcr  = "dias_ccr"
)

// ConfigAdapter implements the ConfigRepository interface over a
// key/value table maintained by the office staff
type ConfigAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConfigAdapter creates a new configuration adapter
func NewConfigAdapter(client *postgres.Client) repositories.ConfigRepository {
	return &ConfigAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetScheduling retrieves the scheduling configuration
func (a *ConfigAdapter) GetScheduling(ctx context.Context) (*entities.SchedulingConfig, error) {
	query, args, err := a.db.Select("clave", "valor").
		From("configuracion").
		Where(goqu.C("clave").In(
			configKeyFeriados, configKeyLimite, configKeyDiasAsa, configKeyDiasCcr,
		)).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build config query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load configuration", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var clave, valor string
		if err := rows.Scan(&clave, &valor); err != nil {
			return nil, apperrors.NewInternalError("failed to scan configuration", err)
		}
		values[clave] = valor
	}

	cfg := &entities.SchedulingConfig{}

	if raw, ok := values[configKeyFeriados]; ok && raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Feriados = append(cfg.Feriados, f)
			}
		}
	}

	raw, ok := values[configKeyLimite]
	if !ok || raw == "" {
		return nil, apperrors.NewValidationError("configuration is missing the booking horizon limit")
	}
	limite, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// The staff UI sometimes stores a bare date.
		limite, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, apperrors.NewValidationError("booking horizon limit is not a valid date: " + raw)
		}
	}
	cfg.Limite = limite.UTC()

	if cfg.DiasAsa, err = configInt(values, configKeyDiasAsa); err != nil {
		return nil, err
	}
	if cfg.DiasCcr, err = configInt(values, configKeyDiasCcr); err != nil {
		return nil, err
	}

	return cfg, nil
}

func configInt(values map[string]string, key string) (int, error) {
	raw, ok := values[key]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apperrors.NewValidationError("configuration value " + key + " is not a number: " + raw)
	}
	return n, nil
}
