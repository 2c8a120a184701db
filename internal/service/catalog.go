package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shenikar/ghostnet/internal/models"
	"github.com/sirupsen/logrus"
)

type catalogService struct {
	repo   Repository
	cache  CatalogCache
	logger *logrus.Logger
}

// NewCatalogService создает сервис справочников. cache может быть nil.
func NewCatalogService(repo Repository, cache CatalogCache, logger *logrus.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// ListRoles возвращает все роли, сначала пытаясь взять их из кеша
func (s *catalogService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "catalog",
		"method":  "ListRoles",
	})

	if s.cache != nil {
		roles, err := s.cache.GetRoles(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read roles from cache")
		} else if roles != nil {
			return roles, nil
		}
	}

	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list roles from repository")
		return nil, fmt.Errorf("service: could not list roles: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetRoles(ctx, roles); err != nil {
			log.WithError(err).Warn("Failed to put roles into cache")
		}
	}
	return roles, nil
}

// GetRole возвращает роль по ID
func (s *catalogService) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get role: %w", err)
	}
	return role, nil
}

// CreateRole добавляет роль в справочник
func (s *catalogService) CreateRole(ctx context.Context, role *models.Role) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "catalog",
		"method":  "CreateRole",
		"code":    role.Code,
	})
	log.Info("Attempting to create a new role")

	if strings.TrimSpace(role.Code) == "" {
		return fmt.Errorf("service: role code is required: %w", models.ErrInvalidArgument)
	}
	role.ID = 0
	if err := s.repo.SaveRole(ctx, role); err != nil {
		log.WithError(err).Error("Failed to create role in repository")
		return fmt.Errorf("service: could not create role: %w", err)
	}
	s.invalidate(ctx, log)

	log.WithField("role_id", role.ID).Info("Role created successfully")
	return nil
}

// UpdateRole обновляет описание роли. Код роли неизменяем: по нему
// матрица переходов узнает роль.
func (s *catalogService) UpdateRole(ctx context.Context, role *models.Role) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "catalog",
		"method":  "UpdateRole",
		"role_id": role.ID,
	})

	existing, err := s.repo.GetRole(ctx, role.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent role")
		return fmt.Errorf("service: role with id %d not found for update: %w", role.ID, err)
	}
	if codeChanged(existing.Code, role.Code) {
		log.WithField("code", role.Code).Warn("Attempted to change role code")
		return fmt.Errorf("service: code of role %d cannot be changed from %s: %w", role.ID, existing.Code, models.ErrInvalidArgument)
	}
	existing.Description = role.Description

	if err := s.repo.SaveRole(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update role in repository")
		return fmt.Errorf("service: could not update role: %w", err)
	}
	*role = *existing
	s.invalidate(ctx, log)

	log.Info("Role updated successfully")
	return nil
}

// ListStatuses возвращает статусы. Полный каталог (пустой фильтр) кешируется.
func (s *catalogService) ListStatuses(ctx context.Context, filter models.StatusFilter) ([]*models.Status, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "catalog",
		"method":  "ListStatuses",
	})

	full := filter.Description == "" && filter.RelevantForRecovery == nil
	if full && s.cache != nil {
		statuses, err := s.cache.GetStatuses(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to read statuses from cache")
		} else if statuses != nil {
			return statuses, nil
		}
	}

	statuses, err := s.repo.ListStatuses(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list statuses from repository")
		return nil, fmt.Errorf("service: could not list statuses: %w", err)
	}

	if full && s.cache != nil {
		if err := s.cache.SetStatuses(ctx, statuses); err != nil {
			log.WithError(err).Warn("Failed to put statuses into cache")
		}
	}
	return statuses, nil
}

// ListRecoveryRelevant возвращает статусы, значимые для очереди спасения
func (s *catalogService) ListRecoveryRelevant(ctx context.Context) ([]*models.Status, error) {
	statuses, err := s.ListStatuses(ctx, models.StatusFilter{})
	if err != nil {
		return nil, err
	}

	relevant := make([]*models.Status, 0, len(statuses))
	for _, status := range statuses {
		if status.RelevantForRecovery {
			relevant = append(relevant, status)
		}
	}
	return relevant, nil
}

// GetStatus возвращает статус по ID
func (s *catalogService) GetStatus(ctx context.Context, id int64) (*models.Status, error) {
	status, err := s.repo.GetStatus(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get status: %w", err)
	}
	return status, nil
}

// CreateStatus добавляет статус в каталог
func (s *catalogService) CreateStatus(ctx context.Context, status *models.Status) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "catalog",
		"method":  "CreateStatus",
		"code":    status.Code,
	})
	log.Info("Attempting to create a new status")

	if strings.TrimSpace(status.Code) == "" {
		return fmt.Errorf("service: status code is required: %w", models.ErrInvalidArgument)
	}
	status.ID = 0
	if err := s.repo.SaveStatus(ctx, status); err != nil {
		log.WithError(err).Error("Failed to create status in repository")
		return fmt.Errorf("service: could not create status: %w", err)
	}
	s.invalidate(ctx, log)

	log.WithField("status_id", status.ID).Info("Status created successfully")
	return nil
}

// UpdateStatus обновляет описание и флаг значимости статуса. Код неизменяем.
func (s *catalogService) UpdateStatus(ctx context.Context, status *models.Status) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "catalog",
		"method":    "UpdateStatus",
		"status_id": status.ID,
	})

	existing, err := s.repo.GetStatus(ctx, status.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent status")
		return fmt.Errorf("service: status with id %d not found for update: %w", status.ID, err)
	}
	if codeChanged(existing.Code, status.Code) {
		log.WithField("code", status.Code).Warn("Attempted to change status code")
		return fmt.Errorf("service: code of status %d cannot be changed from %s: %w", status.ID, existing.Code, models.ErrInvalidArgument)
	}
	existing.Description = status.Description
	existing.RelevantForRecovery = status.RelevantForRecovery

	if err := s.repo.SaveStatus(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update status in repository")
		return fmt.Errorf("service: could not update status: %w", err)
	}
	*status = *existing
	s.invalidate(ctx, log)

	log.Info("Status updated successfully")
	return nil
}

// AllowedDestinations загружает текущий статус, роль и полный каталог
// и вычисляет допустимые цели перехода
func (s *catalogService) AllowedDestinations(ctx context.Context, statusID, roleID int64) ([]*models.Status, error) {
	current, err := s.repo.GetStatus(ctx, statusID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get current status: %w", err)
	}
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get role: %w", err)
	}
	catalog, err := s.ListStatuses(ctx, models.StatusFilter{})
	if err != nil {
		return nil, err
	}
	return AllowedDestinations(current, role, catalog)
}

func (s *catalogService) invalidate(ctx context.Context, log *logrus.Entry) {
	invalidateCatalog(ctx, s.cache, log)
}

func invalidateCatalog(ctx context.Context, cache CatalogCache, log *logrus.Entry) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate catalog cache")
	}
}

// codeChanged сообщает, пытается ли запрос сменить код записи; пустой код означает "не менять"
func codeChanged(current, requested string) bool {
	requested = strings.TrimSpace(requested)
	return requested != "" && requested != current
}
