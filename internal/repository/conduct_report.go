package repository

import (
	"context"
	"database/sql"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"valorant-hub/internal/domain"
)

type ConductReportRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewConductReportRepository(sqlDB *sql.DB, logger zerolog.Logger) *ConductReportRepository {
	return &ConductReportRepository{db: sqlDB, logger: logger}
}

func (r *ConductReportRepository) Append(ctx context.Context, report *domain.ConductReport) error {
	if report.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		report.ID = id
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conduct_reports (id, reporter, reported_user, reason, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		report.ID, report.Reporter, report.ReportedUser, report.Reason, report.Timestamp,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("reporter", report.Reporter).Msg("failed to append conduct report")
		return fmt.Errorf("failed to append conduct report: %w", err)
	}
	return nil
}

func (r *ConductReportRepository) List(ctx context.Context) ([]domain.ConductReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, reporter, reported_user, reason, timestamp
		FROM conduct_reports ORDER BY timestamp DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list conduct reports")
		return nil, err
	}
	defer rows.Close()

	var reports []domain.ConductReport
	for rows.Next() {
		var rep domain.ConductReport
		if err := rows.Scan(&rep.ID, &rep.Reporter, &rep.ReportedUser, &rep.Reason, &rep.Timestamp); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
