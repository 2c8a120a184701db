package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	entityReport = "report"
	entityStatus = "status"
	entityPerson = "person"
	entityRole   = "role"
)

type integrityService struct {
	repo    Repository
	cache   CatalogCache
	metrics Metrics
	logger  *logrus.Logger
}

// NewIntegrityService создает сервис удаления. Каждое удаление сначала
// отвязывает запись от всех связей и выполняется в одной транзакции:
// при любой ошибке не сохраняется ни отвязка, ни удаление.
func NewIntegrityService(repo Repository, cache CatalogCache, metrics Metrics, logger *logrus.Logger) IntegrityService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &integrityService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// DeleteReport отвязывает сообщение от статуса, сообщающего и спасателя и удаляет его
func (s *integrityService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "integrity",
		"method":    "DeleteReport",
		"report_id": id,
	})
	log.Info("Attempting to delete report")

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		report, err := tx.GetReport(ctx, id)
		if err != nil {
			return err
		}

		report.DetachStatus()
		report.DetachReportingPerson()
		report.DetachRecoveringPerson()
		if err := tx.SaveReport(ctx, report); err != nil {
			return err
		}
		return tx.DeleteReport(ctx, id)
	})
	return s.finish(log, entityReport, id, err)
}

// DeleteStatus отвязывает все сообщения от статуса и удаляет его
func (s *integrityService) DeleteStatus(ctx context.Context, id int64) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "integrity",
		"method":    "DeleteStatus",
		"status_id": id,
	})
	log.Info("Attempting to delete status")

	detached := 0
	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.GetStatus(ctx, id); err != nil {
			return err
		}

		reports, err := tx.ListReports(ctx, models.ReportFilter{StatusIDs: []int64{id}})
		if err != nil {
			return err
		}
		for _, report := range reports {
			report.DetachStatus()
			if err := tx.SaveReport(ctx, report); err != nil {
				return err
			}
		}
		detached = len(reports)
		return tx.DeleteStatus(ctx, id)
	})
	if err == nil {
		log = log.WithField("detached_reports", detached)
		invalidateCatalog(ctx, s.cache, log)
	}
	return s.finish(log, entityStatus, id, err)
}

// DeletePerson отвязывает участника от роли и от всех сообщений,
// где он сообщающий или спасатель, и удаляет его
func (s *integrityService) DeletePerson(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "integrity",
		"method":    "DeletePerson",
		"person_id": id,
	})
	log.Info("Attempting to delete person")

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		person, err := tx.GetPerson(ctx, id)
		if err != nil {
			return err
		}

		person.DetachRole()
		if err := tx.SavePerson(ctx, person); err != nil {
			return err
		}

		reported, err := tx.ListReports(ctx, models.ReportFilter{ReportingPersonID: &id})
		if err != nil {
			return err
		}
		for _, report := range reported {
			report.DetachReportingPerson()
			if err := tx.SaveReport(ctx, report); err != nil {
				return err
			}
		}

		// Повторная выборка: сообщение могло быть и в первом списке
		recovering, err := tx.ListReports(ctx, models.ReportFilter{RecoveringPersonID: &id})
		if err != nil {
			return err
		}
		for _, report := range recovering {
			report.DetachRecoveringPerson()
			if err := tx.SaveReport(ctx, report); err != nil {
				return err
			}
		}
		return tx.DeletePerson(ctx, id)
	})
	return s.finish(log, entityPerson, id, err)
}

// DeleteRole отвязывает всех участников от роли и удаляет ее
func (s *integrityService) DeleteRole(ctx context.Context, id int64) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "integrity",
		"method":  "DeleteRole",
		"role_id": id,
	})
	log.Info("Attempting to delete role")

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.GetRole(ctx, id); err != nil {
			return err
		}

		persons, err := tx.ListPersons(ctx, models.PersonFilter{RoleID: &id})
		if err != nil {
			return err
		}
		for _, person := range persons {
			person.DetachRole()
			if err := tx.SavePerson(ctx, person); err != nil {
				return err
			}
		}
		return tx.DeleteRole(ctx, id)
	})
	if err == nil {
		invalidateCatalog(ctx, s.cache, log)
	}
	return s.finish(log, entityRole, id, err)
}

func (s *integrityService) finish(log *logrus.Entry, entity string, id any, err error) error {
	if err != nil {
		s.metrics.IncDeletion(entity, outcomeFailed)
		log.WithError(err).Error("Deletion aborted")
		return fmt.Errorf("service: could not delete %s %v: %w", entity, id, err)
	}
	s.metrics.IncDeletion(entity, outcomeApplied)
	log.Info("Deleted successfully")
	return nil
}
