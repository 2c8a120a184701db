package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/sirupsen/logrus"
)

type personService struct {
	repo   Repository
	logger *logrus.Logger
}

func NewPersonService(repo Repository, logger *logrus.Logger) PersonService {
	return &personService{
		repo:   repo,
		logger: logger,
	}
}

// CreatePerson регистрирует участника. Телефон обязателен для всех ролей,
// кроме анонимного сообщающего.
func (s *personService) CreatePerson(ctx context.Context, person *models.Person) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "person",
		"method":  "CreatePerson",
	})
	log.Info("Attempting to create a new person")

	if err := s.checkRole(ctx, person); err != nil {
		log.WithError(err).Warn("Person rejected")
		return err
	}

	person.ID = uuid.Nil
	if err := s.repo.SavePerson(ctx, person); err != nil {
		log.WithError(err).Error("Failed to create person in repository")
		return fmt.Errorf("service: could not create person: %w", err)
	}

	log.WithField("person_id", person.ID).Info("Person created successfully")
	return nil
}

// GetPerson возвращает участника с ролью и вычисленными списками сообщений
func (s *personService) GetPerson(ctx context.Context, id uuid.UUID) (*models.PersonDetails, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "person",
		"method":    "GetPerson",
		"person_id": id,
	})

	person, err := s.repo.GetPerson(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get person in repository")
		return nil, fmt.Errorf("service: could not get person: %w", err)
	}

	details := &models.PersonDetails{Person: person}
	if person.RoleID != nil {
		role, err := s.repo.GetRole(ctx, *person.RoleID)
		if err != nil {
			return nil, fmt.Errorf("service: could not get role of person: %w", err)
		}
		details.Role = role
	}

	details.ReportedReports, err = s.repo.ListReports(ctx, models.ReportFilter{ReportingPersonID: &id})
	if err != nil {
		return nil, fmt.Errorf("service: could not list reported reports: %w", err)
	}
	details.RecoveringReports, err = s.repo.ListReports(ctx, models.ReportFilter{RecoveringPersonID: &id})
	if err != nil {
		return nil, fmt.Errorf("service: could not list recovering reports: %w", err)
	}
	return details, nil
}

// UpdatePerson обновляет имя, телефон и роль участника
func (s *personService) UpdatePerson(ctx context.Context, person *models.Person) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "person",
		"method":    "UpdatePerson",
		"person_id": person.ID,
	})

	existing, err := s.repo.GetPerson(ctx, person.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent person")
		return fmt.Errorf("service: person with id %s not found for update: %w", person.ID, err)
	}

	existing.Name = person.Name
	existing.TelephoneNumber = person.TelephoneNumber
	if person.RoleID != nil {
		existing.RoleID = person.RoleID
	}
	if err := s.checkRole(ctx, existing); err != nil {
		log.WithError(err).Warn("Person rejected")
		return err
	}

	if err := s.repo.SavePerson(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update person in repository")
		return fmt.Errorf("service: could not update person: %w", err)
	}
	*person = *existing

	log.Info("Person updated successfully")
	return nil
}

// ListPersons возвращает участников по фильтру, упорядоченных по имени
func (s *personService) ListPersons(ctx context.Context, filter models.PersonFilter) ([]*models.Person, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	persons, err := s.repo.ListPersons(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListPersons").Error("Failed to list persons from repository")
		return nil, fmt.Errorf("service: could not list persons: %w", err)
	}
	return persons, nil
}

func (s *personService) checkRole(ctx context.Context, person *models.Person) error {
	if strings.TrimSpace(person.Name) == "" {
		return fmt.Errorf("service: person name is required: %w", models.ErrInvalidArgument)
	}
	if person.RoleID == nil {
		return fmt.Errorf("service: person role is required: %w", models.ErrInvalidArgument)
	}

	role, err := s.repo.GetRole(ctx, *person.RoleID)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("service: unknown role %d: %w", *person.RoleID, models.ErrInvalidArgument)
	}
	if err != nil {
		return fmt.Errorf("service: could not get role %d: %w", *person.RoleID, err)
	}
	if !role.Is(models.RoleAnonymousReporter) && strings.TrimSpace(person.TelephoneNumber) == "" {
		return fmt.Errorf("service: telephone number is required for role %s: %w", role.Code, models.ErrInvalidArgument)
	}
	return nil
}
