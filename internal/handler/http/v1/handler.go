package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/config"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "internal server error"

type Handler struct {
	catalogService   service.CatalogService
	personService    service.PersonService
	reportService    service.ReportService
	integrityService service.IntegrityService
	logger           *logrus.Logger
	validate         *validator.Validate
	cfg              *config.Config
}

func NewHandler(
	catalogService service.CatalogService,
	personService service.PersonService,
	reportService service.ReportService,
	integrityService service.IntegrityService,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		catalogService:   catalogService,
		personService:    personService,
		reportService:    reportService,
		integrityService: integrityService,
		logger:           logger,
		validate:         validator.New(),
		cfg:              cfg,
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindAndValidate разбирает JSON тело и проверяет теги validate.
// При ошибке ответ уже отправлен.
func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError переводит доменную ошибку в HTTP-статус
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
	} else {
		log.WithError(err).Warn("Request rejected")
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

// errorMessage возвращает текст ошибки для клиента; сбои хранилища скрываются
func errorMessage(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return internalErrorMessage
	}
	return err.Error()
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func parseUUIDParam(c *gin.Context, name, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseInt64Param(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + entity + " ID"})
		return 0, false
	}
	return id, true
}

// pagination читает page и pageSize, значения по умолчанию берутся из конфигурации
func (h *Handler) pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = h.cfg.DefaultPageSize
	}
	if pageSize > models.MaxPageSize {
		pageSize = models.MaxPageSize
	}
	return page, pageSize
}
