package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type reportService struct {
	repo    Repository
	catalog CatalogService
	metrics Metrics
	logger  *logrus.Logger
}

// NewReportService создает сервис жизненного цикла сообщений. metrics может быть nil.
func NewReportService(repo Repository, catalog CatalogService, metrics Metrics, logger *logrus.Logger) ReportService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &reportService{
		repo:    repo,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateReport создает сообщение в статусе "reported" от имени участника
func (s *reportService) CreateReport(ctx context.Context, reportingPersonID uuid.UUID, report *models.Report) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "CreateReport",
		"person_id": reportingPersonID,
	})
	log.Info("Attempting to create a new report")

	reporter, err := s.repo.GetPerson(ctx, reportingPersonID)
	if err != nil {
		log.WithError(err).Warn("Reporting person not found")
		return fmt.Errorf("service: could not get reporting person: %w", err)
	}
	reported, err := s.repo.GetStatusByCode(ctx, models.StatusReported)
	if errors.Is(err, models.ErrNotFound) {
		log.WithError(err).Error("Initial status is missing from catalog")
		return fmt.Errorf("service: initial status %s: %w", models.StatusReported, models.ErrCatalogIncomplete)
	}
	if err != nil {
		log.WithError(err).Error("Failed to get initial status")
		return fmt.Errorf("service: could not get initial status: %w", err)
	}

	created := models.NewReport(reporter, reported)
	created.Latitude = report.Latitude
	created.Longitude = report.Longitude
	created.Size = report.Size
	created.Description = report.Description

	if err := s.repo.SaveReport(ctx, created); err != nil {
		log.WithError(err).Error("Failed to create report in repository")
		return fmt.Errorf("service: could not create report: %w", err)
	}
	*report = *created

	log.WithField("report_id", report.ID).Info("Report created successfully")
	return nil
}

// GetReport получает сообщение по ID
func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		s.logger.WithError(err).WithField("report_id", id).Warn("Failed to get report in repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}
	return report, nil
}

// UpdateReportDetails обновляет координаты, размер и описание.
// Статус и участники меняются только переходами и удалением.
func (s *reportService) UpdateReportDetails(ctx context.Context, report *models.Report) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "UpdateReportDetails",
		"report_id": report.ID,
	})

	existing, err := s.repo.GetReport(ctx, report.ID)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent report")
		return fmt.Errorf("service: report with id %s not found for update: %w", report.ID, err)
	}

	existing.Latitude = report.Latitude
	existing.Longitude = report.Longitude
	existing.Size = report.Size
	existing.Description = report.Description

	if err := s.repo.SaveReport(ctx, existing); err != nil {
		log.WithError(err).Error("Failed to update report in repository")
		return fmt.Errorf("service: could not update report: %w", err)
	}
	*report = *existing

	log.Info("Report updated successfully")
	return nil
}

// ListReports возвращает сообщения по фильтру с пагинацией
func (s *reportService) ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	reports, err := s.repo.ListReports(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListReports").Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}
	return reports, nil
}

// ApplyTransition переводит сообщение в статус statusID от имени участника.
// Допустимость проверяется до любого изменения сообщения.
func (s *reportService) ApplyTransition(ctx context.Context, reportID uuid.UUID, statusID int64, actingPersonID uuid.UUID) (*models.Report, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "ApplyTransition",
		"report_id": reportID,
		"status_id": statusID,
		"person_id": actingPersonID,
	})

	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}
	acting, role, err := s.actingRole(ctx, actingPersonID)
	if err != nil {
		return nil, err
	}
	if report.StatusID == nil {
		return nil, fmt.Errorf("service: report %s has no status: %w", reportID, models.ErrInvalidArgument)
	}
	current, err := s.repo.GetStatus(ctx, *report.StatusID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get current status: %w", err)
	}
	catalog, err := s.catalog.ListStatuses(ctx, models.StatusFilter{})
	if err != nil {
		return nil, err
	}

	allowed, err := AllowedDestinations(current, role, catalog)
	if err != nil {
		return nil, err
	}
	target := findStatus(allowed, statusID)
	if target == nil {
		s.metrics.IncTransition(destinationLabel(catalog, statusID), outcomeRejected)
		log.WithField("role", role.Code).Warn("Transition rejected")
		return nil, fmt.Errorf("service: %s may not move report from %s to status %d: %w", role.Code, current.Code, statusID, models.ErrUnauthorized)
	}

	report.ApplyTransition(target, acting)
	if err := s.repo.SaveReport(ctx, report); err != nil {
		s.metrics.IncTransition(target.Code, outcomeFailed)
		log.WithError(err).Error("Failed to save transition in repository")
		return nil, fmt.Errorf("service: could not save transition: %w", err)
	}

	s.metrics.IncTransition(target.Code, outcomeApplied)
	log.WithField("status", target.Code).Info("Transition applied")
	return report, nil
}

// ApplyTransitions применяет пакет переходов, выбранных оператором.
// Каждый запрос применяется независимо, результат возвращается по каждому.
func (s *reportService) ApplyTransitions(ctx context.Context, actingPersonID uuid.UUID, requests []models.TransitionRequest) []models.TransitionResult {
	results := make([]models.TransitionResult, 0, len(requests))
	for _, req := range requests {
		report, err := s.ApplyTransition(ctx, req.ReportID, req.StatusID, actingPersonID)
		results = append(results, models.TransitionResult{
			ReportID: req.ReportID,
			Report:   report,
			Err:      err,
		})
	}
	return results
}

// RecoveryQueue возвращает сообщения в статусах, значимых для спасения,
// вместе с разрешенными для участника переходами
func (s *reportService) RecoveryQueue(ctx context.Context, actingPersonID uuid.UUID) ([]*models.QueueItem, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "RecoveryQueue",
		"person_id": actingPersonID,
	})

	_, role, err := s.actingRole(ctx, actingPersonID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalog.ListStatuses(ctx, models.StatusFilter{})
	if err != nil {
		return nil, err
	}

	relevant := make([]int64, 0, len(catalog))
	for _, status := range catalog {
		if status.RelevantForRecovery {
			relevant = append(relevant, status.ID)
		}
	}
	if len(relevant) == 0 {
		return []*models.QueueItem{}, nil
	}

	reports, err := s.repo.ListReports(ctx, models.ReportFilter{StatusIDs: relevant})
	if err != nil {
		log.WithError(err).Error("Failed to list queue from repository")
		return nil, fmt.Errorf("service: could not list recovery queue: %w", err)
	}

	queue := make([]*models.QueueItem, 0, len(reports))
	for _, report := range reports {
		if report.StatusID == nil {
			continue
		}
		current := findStatus(catalog, *report.StatusID)
		if current == nil {
			continue
		}
		destinations, err := AllowedDestinations(current, role, catalog)
		if err != nil {
			return nil, err
		}
		queue = append(queue, &models.QueueItem{
			Report:       report,
			Status:       current,
			Destinations: destinations,
		})
	}

	log.WithField("count", len(queue)).Info("Recovery queue loaded")
	return queue, nil
}

func (s *reportService) actingRole(ctx context.Context, personID uuid.UUID) (*models.Person, *models.Role, error) {
	acting, err := s.repo.GetPerson(ctx, personID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, fmt.Errorf("service: acting person %s is unknown: %w", personID, models.ErrInvalidArgument)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("service: could not get acting person: %w", err)
	}
	if acting.RoleID == nil {
		return nil, nil, fmt.Errorf("service: acting person %s has no role: %w", personID, models.ErrInvalidArgument)
	}
	role, err := s.repo.GetRole(ctx, *acting.RoleID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: could not get role of acting person: %w", err)
	}
	return acting, role, nil
}

func destinationLabel(catalog []*models.Status, id int64) string {
	if status := findStatus(catalog, id); status != nil {
		return status.Code
	}
	return "unknown"
}
