package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shenikar/ghostnet/internal/models"
	"go.opentelemetry.io/otel/attribute"
)

// GetRole возвращает роль по ID
func (s *Store) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	ctx, span := startSpan(ctx, "postgres.get_role", attribute.Int64("role_id", id))
	defer span.End()

	role := &models.Role{}
	query := `SELECT id, code, description FROM roles WHERE id = $1;`
	err := s.db.QueryRow(ctx, query, id).Scan(&role.ID, &role.Code, &role.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("role with id %d not found: %w", id, models.ErrNotFound)
		}
		return nil, storeError(span, "get role", err)
	}
	return role, nil
}

// GetRoleByCode возвращает роль по символьному коду
func (s *Store) GetRoleByCode(ctx context.Context, code string) (*models.Role, error) {
	ctx, span := startSpan(ctx, "postgres.get_role_by_code", attribute.String("code", code))
	defer span.End()

	role := &models.Role{}
	query := `SELECT id, code, description FROM roles WHERE code = $1;`
	err := s.db.QueryRow(ctx, query, code).Scan(&role.ID, &role.Code, &role.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("role with code %s not found: %w", code, models.ErrNotFound)
		}
		return nil, storeError(span, "get role by code", err)
	}
	return role, nil
}

// ListRoles возвращает все роли в порядке ID
func (s *Store) ListRoles(ctx context.Context) ([]*models.Role, error) {
	ctx, span := startSpan(ctx, "postgres.list_roles")
	defer span.End()

	rows, err := s.db.Query(ctx, `SELECT id, code, description FROM roles ORDER BY id;`)
	if err != nil {
		return nil, storeError(span, "list roles", err)
	}
	defer rows.Close()

	roles := make([]*models.Role, 0)
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Code, &role.Description); err != nil {
			return nil, storeError(span, "scan role row", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(span, "list roles iteration", err)
	}
	return roles, nil
}

// SaveRole вставляет новую роль (ID == 0) или обновляет существующую
func (s *Store) SaveRole(ctx context.Context, role *models.Role) error {
	ctx, span := startSpan(ctx, "postgres.save_role", attribute.Int64("role_id", role.ID))
	defer span.End()

	if role.ID == 0 {
		query := `INSERT INTO roles (code, description) VALUES ($1, $2) RETURNING id;`
		if err := s.db.QueryRow(ctx, query, role.Code, role.Description).Scan(&role.ID); err != nil {
			return storeError(span, "create role", err)
		}
		return nil
	}

	query := `UPDATE roles SET code = $1, description = $2 WHERE id = $3;`
	cmdTag, err := s.db.Exec(ctx, query, role.Code, role.Description, role.ID)
	if err != nil {
		return storeError(span, "update role", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("role with id %d not found for update: %w", role.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteRole удаляет роль. Участники должны быть отвязаны заранее,
// иначе сработает ограничение внешнего ключа.
func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	ctx, span := startSpan(ctx, "postgres.delete_role", attribute.Int64("role_id", id))
	defer span.End()

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM roles WHERE id = $1;`, id)
	if err != nil {
		return storeError(span, "delete role", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("role with id %d not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetStatus возвращает статус по ID
func (s *Store) GetStatus(ctx context.Context, id int64) (*models.Status, error) {
	ctx, span := startSpan(ctx, "postgres.get_status", attribute.Int64("status_id", id))
	defer span.End()

	status := &models.Status{}
	query := `SELECT id, code, description, relevant_for_recovery FROM statuses WHERE id = $1;`
	err := s.db.QueryRow(ctx, query, id).Scan(&status.ID, &status.Code, &status.Description, &status.RelevantForRecovery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("status with id %d not found: %w", id, models.ErrNotFound)
		}
		return nil, storeError(span, "get status", err)
	}
	return status, nil
}

// GetStatusByCode возвращает статус по символьному коду
func (s *Store) GetStatusByCode(ctx context.Context, code string) (*models.Status, error) {
	ctx, span := startSpan(ctx, "postgres.get_status_by_code", attribute.String("code", code))
	defer span.End()

	status := &models.Status{}
	query := `SELECT id, code, description, relevant_for_recovery FROM statuses WHERE code = $1;`
	err := s.db.QueryRow(ctx, query, code).Scan(&status.ID, &status.Code, &status.Description, &status.RelevantForRecovery)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("status with code %s not found: %w", code, models.ErrNotFound)
		}
		return nil, storeError(span, "get status by code", err)
	}
	return status, nil
}

// ListStatuses возвращает статусы по фильтру в порядке ID
func (s *Store) ListStatuses(ctx context.Context, filter models.StatusFilter) ([]*models.Status, error) {
	ctx, span := startSpan(ctx, "postgres.list_statuses")
	defer span.End()

	var conds conditions
	if filter.Description != "" {
		conds.add("LOWER(description) LIKE $%d", likePattern(filter.Description))
	}
	if filter.RelevantForRecovery != nil {
		conds.add("relevant_for_recovery = $%d", *filter.RelevantForRecovery)
	}
	query := `SELECT id, code, description, relevant_for_recovery FROM statuses` + conds.where() + ` ORDER BY id;`

	rows, err := s.db.Query(ctx, query, conds.args...)
	if err != nil {
		return nil, storeError(span, "list statuses", err)
	}
	defer rows.Close()

	statuses := make([]*models.Status, 0)
	for rows.Next() {
		status := &models.Status{}
		if err := rows.Scan(&status.ID, &status.Code, &status.Description, &status.RelevantForRecovery); err != nil {
			return nil, storeError(span, "scan status row", err)
		}
		statuses = append(statuses, status)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(span, "list statuses iteration", err)
	}
	return statuses, nil
}

// SaveStatus вставляет новый статус (ID == 0) или обновляет существующий
func (s *Store) SaveStatus(ctx context.Context, status *models.Status) error {
	ctx, span := startSpan(ctx, "postgres.save_status", attribute.Int64("status_id", status.ID))
	defer span.End()

	if status.ID == 0 {
		query := `
			INSERT INTO statuses (code, description, relevant_for_recovery)
			VALUES ($1, $2, $3) RETURNING id;
		`
		err := s.db.QueryRow(ctx, query, status.Code, status.Description, status.RelevantForRecovery).Scan(&status.ID)
		if err != nil {
			return storeError(span, "create status", err)
		}
		return nil
	}

	query := `
		UPDATE statuses SET
			code = $1,
			description = $2,
			relevant_for_recovery = $3
		WHERE id = $4;
	`
	cmdTag, err := s.db.Exec(ctx, query, status.Code, status.Description, status.RelevantForRecovery, status.ID)
	if err != nil {
		return storeError(span, "update status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("status with id %d not found for update: %w", status.ID, models.ErrNotFound)
	}
	return nil
}

// DeleteStatus удаляет статус. Сообщения должны быть отвязаны заранее.
func (s *Store) DeleteStatus(ctx context.Context, id int64) error {
	ctx, span := startSpan(ctx, "postgres.delete_status", attribute.Int64("status_id", id))
	defer span.End()

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM statuses WHERE id = $1;`, id)
	if err != nil {
		return storeError(span, "delete status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("status with id %d not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}
