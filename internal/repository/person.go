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

const personColumns = `id, name, telephone_number, role_id, created_at, updated_at`

func scanPerson(row pgx.Row, person *models.Person) error {
	return row.Scan(
		&person.ID,
		&person.Name,
		&person.TelephoneNumber,
		&person.RoleID,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
}

// GetPerson возвращает участника по ID
func (s *Store) GetPerson(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	ctx, span := startSpan(ctx, "postgres.get_person", attribute.String("person_id", id.String()))
	defer span.End()

	person := &models.Person{}
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1;`
	if err := scanPerson(s.db.QueryRow(ctx, query, id), person); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("person with id %s not found: %w", id, models.ErrNotFound)
		}
		return nil, storeError(span, "get person", err)
	}
	return person, nil
}

// ListPersons возвращает участников по фильтру, упорядоченных по имени
func (s *Store) ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	ctx, span := startSpan(ctx, "postgres.list_persons")
	defer span.End()

	var conds conditions
	if filter.RoleID != nil {
		conds.add("role_id = $%d", *filter.RoleID)
	}
	if filter.Name != "" {
		conds.add("LOWER(name) LIKE $%d", likePattern(filter.Name))
	}
	if filter.TelephoneNumber != "" {
		conds.add("telephone_number LIKE $%d", "%"+filter.TelephoneNumber+"%")
	}
	query := `SELECT ` + personColumns + ` FROM persons` + conds.where() +
		` ORDER BY name, id` + conds.limit(filter.Page, filter.PageSize) + `;`

	rows, err := s.db.Query(ctx, query, conds.args...)
	if err != nil {
		return nil, storeError(span, "list persons", err)
	}
	defer rows.Close()

	persons := make([]*models.Person, 0)
	for rows.Next() {
		person := &models.Person{}
		if err := scanPerson(rows, person); err != nil {
			return nil, storeError(span, "scan person row", err)
		}
		persons = append(persons, person)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(span, "list persons iteration", err)
	}
	return persons, nil
}

// SavePerson вставляет нового участника (ID == uuid.Nil) или обновляет существующего
func (s *Store) SavePerson(ctx context.Context, person *models.Person) error {
	ctx, span := startSpan(ctx, "postgres.save_person", attribute.String("person_id", person.ID.String()))
	defer span.End()

	if person.ID == uuid.Nil {
		query := `
			INSERT INTO persons (name, telephone_number, role_id)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at;
		`
		err := s.db.QueryRow(ctx, query, person.Name, person.TelephoneNumber, person.RoleID).
			Scan(&person.ID, &person.CreatedAt, &person.UpdatedAt)
		if err != nil {
			return storeError(span, "create person", err)
		}
		return nil
	}

	query := `
		UPDATE persons SET
			name = $1,
			telephone_number = $2,
			role_id = $3,
			updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at;
	`
	err := s.db.QueryRow(ctx, query, person.Name, person.TelephoneNumber, person.RoleID, person.ID).Scan(&person.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("person with id %s not found for update: %w", person.ID, models.ErrNotFound)
		}
		return storeError(span, "update person", err)
	}
	return nil
}

// DeletePerson удаляет участника. Сообщения должны быть отвязаны заранее.
func (s *Store) DeletePerson(ctx context.Context, id uuid.UUID) error {
	ctx, span := startSpan(ctx, "postgres.delete_person", attribute.String("person_id", id.String()))
	defer span.End()

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM persons WHERE id = $1;`, id)
	if err != nil {
		return storeError(span, "delete person", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("person with id %s not found for delete: %w", id, models.ErrNotFound)
	}
	return nil
}
