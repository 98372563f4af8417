// AngelaMos | 2026
// repository.go

package climate

import (
	"context"
	"fmt"

	"github.com/angelamos/climate-api/internal/core"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type Repository interface {
	ListSeaLevelRise(
		ctx context.Context,
		limit, offset int,
	) ([]SeaLevelRise, error)
	ListTemperatureAnomaly(
		ctx context.Context,
		limit, offset int,
	) ([]TemperatureAnomaly, error)
	ListCO2Concentration(
		ctx context.Context,
		limit, offset int,
	) ([]CO2Concentration, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (r *repository) ListSeaLevelRise(
	ctx context.Context,
	limit, offset int,
) ([]SeaLevelRise, error) {
	query := `
		SELECT id, entity, code, day, sea_level_rise_average
		FROM sea_level_rise
		ORDER BY id
		LIMIT $1 OFFSET $2`

	var rows []SeaLevelRise
	err := r.db.SelectContext(ctx, &rows, query, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list sea level rise: %w", err)
	}

	return rows, nil
}

func (r *repository) ListTemperatureAnomaly(
	ctx context.Context,
	limit, offset int,
) ([]TemperatureAnomaly, error) {
	query := `
		SELECT id, entity, code, day, temperature_anomaly
		FROM temperature_anomaly
		ORDER BY id
		LIMIT $1 OFFSET $2`

	var rows []TemperatureAnomaly
	err := r.db.SelectContext(ctx, &rows, query, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list temperature anomaly: %w", err)
	}

	return rows, nil
}

func (r *repository) ListCO2Concentration(
	ctx context.Context,
	limit, offset int,
) ([]CO2Concentration, error) {
	query := `
		SELECT id, entity, code, day,
		       average_co2_concentrations, trend_co2_concentrations
		FROM co2_concentration
		ORDER BY id
		LIMIT $1 OFFSET $2`

	var rows []CO2Concentration
	err := r.db.SelectContext(ctx, &rows, query, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list co2 concentration: %w", err)
	}

	return rows, nil
}
