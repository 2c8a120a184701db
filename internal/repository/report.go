package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shenikar/ghostnet/internal/models"
	"go.opentelemetry.io/otel/attribute"
)

const reportColumns = `id, status_id, reporting_person_id, recovering_person_id,
	latitude, longitude, size, description, created_at, updated_at`

func scanReport(row pgx.Row, report *models.Report) error {
	return row.Scan(
		&report.ID,
		&report.StatusID,
		&report.ReportingPersonID,
		&report.RecoveringPersonID,
		&report.Latitude,
		&report.Longitude,
		&report.Size,
		&report.Description,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
}

// GetReport возвращает сообщение по ID
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	ctx, span := startSpan(ctx, "postgres.get_report", attribute.String("report_id", id.String()))
	defer span.End()

	report := &models.Report{}
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1;`
	if err := scanReport(s.db.QueryRow(ctx, query, id), report); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("report with id %s not found: %w", id, models.ErrNotFound)
		}
		return nil, storeError(span, "get report", err)
	}
	return report, nil
}

// ListReports возвращает сообщения по фильтру, новые первыми
func (s *Store) ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	ctx, span := startSpan(ctx, "postgres.list_reports", attribute.Int("status_count", len(filter.StatusIDs)))
	defer span.End()

	var conds conditions
	if len(filter.StatusIDs) > 0 {
		conds.add("status_id = ANY($%d)", filter.StatusIDs)
	}
	if filter.ReportingPersonID != nil {
		conds.add("reporting_person_id = $%d", *filter.ReportingPersonID)
	}
	if filter.RecoveringPersonID != nil {
		conds.add("recovering_person_id = $%d", *filter.RecoveringPersonID)
	}
	query := `SELECT ` + reportColumns + ` FROM reports` + conds.where() +
		` ORDER BY created_at DESC, id` + conds.limit(filter.Page, filter.PageSize) + `;`

	rows, err := s.db.Query(ctx, query, conds.args...)
	if err != nil {
		return nil, storeError(span, "list reports", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report := &models.Report{}
		if err := scanReport(rows, report); err != nil {
			return nil, storeError(span, "scan report row", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(span, "list reports iteration", err)
	}
	return reports, nil
}

// SaveReport вставляет новое сообщение (ID == uuid.Nil) или обновляет существующее
func (s *Store) SaveReport(ctx context.Context, report *models.Report) error {
	ctx, span := startSpan(ctx, "postgres.save_report", attribute.String("report_id", report.ID.String()))
	defer span.End()

	if report.ID == uuid.Nil {
		query := `
			INSERT INTO reports (status_id, reporting_person_id, recovering_person_id,
				latitude, longitude, size, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, updated_at;
		`
		err := s.db.QueryRow(ctx, query,
			report.StatusID,
			report.ReportingPersonID,
			report.RecoveringPersonID,
			report.Latitude,
			report.Longitude,
			report.Size,
			report.Description,
		).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
		if err != nil {
			return storeError(span, "create report", err)
		}
		return nil
	}

	query := `
		UPDATE reports SET
			status_id = $1,
			reporting_person_id = $2,
			recovering_person_id = $3,
			latitude = $4,
			longitude = $5,
			size = $6,
			description = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at;
	`
	err := s.db.QueryRow(ctx, query,
		report.StatusID,
		report.ReportingPersonID,
		report.RecoveringPersonID,
		report.Latitude,
		report.Longitude,
		report.Size,
		report.Description,
		report.ID,
	).Scan(&report.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("report with id %s not found for update: %w", report.ID, models.ErrNotFound)
		}
		return storeError(span, "update report", err)
	}
	return nil
}

// DeleteReport удаляет сообщение по ID
func (s *Store) DeleteReport(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "postgres.delete_report", attribute.String("report_id", id.String()))
	defer span.End()

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM reports WHERE id = $1;`, id)
	if err != nil {
		return storeError(span, "delete report", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("report with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}
