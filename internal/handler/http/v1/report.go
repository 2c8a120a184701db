package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
)

// @Summary Report a ghost net
// @Description Create a report in status "reported" on behalf of the acting person. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Person-ID header string true "Acting person ID"
// @Param report body ReportRequest true "Report creation request"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid request body, validation error or unknown person"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Person not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [post]
func (h *Handler) createReport(c *gin.Context) {
	personID := actingPerson(c)
	log := h.logger.WithField("method", "createReport").WithField("person_id", personID)

	var input ReportRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report := DTOToReportModel(input)
	if err := h.reportService.CreateReport(c.Request.Context(), personID, report); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToReportResponse(report))
}

// @Summary Get a list of reports
// @Description Get a paginated list of reports, newest first. Requires API key.
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param status_id query string false "Comma separated status IDs"
// @Param reporting_person_id query string false "Reporting person ID"
// @Param recovering_person_id query string false "Recovering person ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} ReportResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports [get]
func (h *Handler) listReports(c *gin.Context) {
	log := h.logger.WithField("method", "listReports")
	page, pageSize := h.pagination(c)

	filter := models.ReportFilter{Page: page, PageSize: pageSize}
	if raw := c.Query("status_id"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statusID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status ID"})
				return
			}
			filter.StatusIDs = append(filter.StatusIDs, statusID)
		}
	}
	var ok bool
	if filter.ReportingPersonID, ok = optionalUUIDQuery(c, "reporting_person_id"); !ok {
		return
	}
	if filter.RecoveringPersonID, ok = optionalUUIDQuery(c, "recovering_person_id"); !ok {
		return
	}

	reports, err := h.reportService.ListReports(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToReportResponses(reports))
}

// @Summary Get report by ID
// @Description Get a single report by its ID. Requires API key.
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [get]
func (h *Handler) getReport(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getReport").WithField("id", id)

	report, err := h.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Update report details
// @Description Update location, size and description of a report. Status changes go through transitions. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Param report body ReportRequest true "Report update request"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [put]
func (h *Handler) updateReport(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateReport").WithField("id", id)

	var input ReportRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report := DTOToReportModel(input)
	report.ID = id
	if err := h.reportService.UpdateReportDetails(c.Request.Context(), report); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Delete a report
// @Description Detach the report from status and persons and delete it. Requires API key.
// @Tags Reports
// @Security ApiKeyAuth
// @Param id path string true "Report ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid report ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id} [delete]
func (h *Handler) deleteReport(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "report")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteReport").WithField("id", id)

	if err := h.integrityService.DeleteReport(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Apply a status transition
// @Description Move a report to another status on behalf of the acting person. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Person-ID header string true "Acting person ID"
// @Param id path string true "Report ID"
// @Param transition body TransitionRequest true "Destination status"
// @Success 200 {object} ReportResponse
// @Failure 400 {object} map[string]string "Invalid report ID, request body or acting person"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Transition not allowed for the role"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/{id}/transitions [post]
func (h *Handler) applyTransition(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "report")
	if !ok {
		return
	}
	personID := actingPerson(c)
	log := h.logger.WithField("method", "applyTransition").WithField("id", id).WithField("person_id", personID)

	var input TransitionRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	report, err := h.reportService.ApplyTransition(c.Request.Context(), id, input.StatusID, personID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToReportResponse(report))
}

// @Summary Get the recovery queue
// @Description Get reports in recovery-relevant statuses with the transitions the acting person may apply. Requires API key.
// @Tags Reports
// @Produce json
// @Security ApiKeyAuth
// @Param X-Person-ID header string true "Acting person ID"
// @Success 200 {array} QueueItemResponse
// @Failure 400 {object} map[string]string "Invalid acting person"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/queue [get]
func (h *Handler) recoveryQueue(c *gin.Context) {
	personID := actingPerson(c)
	log := h.logger.WithField("method", "recoveryQueue").WithField("person_id", personID)

	queue, err := h.reportService.RecoveryQueue(c.Request.Context(), personID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToQueueItemResponses(queue))
}

// @Summary Accept transitions from the recovery queue
// @Description Apply a batch of transitions chosen in the queue. Each item succeeds or fails on its own. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Person-ID header string true "Acting person ID"
// @Param transitions body AcceptQueueRequest true "Chosen transitions"
// @Success 200 {array} TransitionResultResponse
// @Failure 400 {object} map[string]string "Invalid request body or acting person"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /reports/queue/accept [post]
func (h *Handler) acceptQueue(c *gin.Context) {
	personID := actingPerson(c)
	log := h.logger.WithField("method", "acceptQueue").WithField("person_id", personID)

	var input AcceptQueueRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	results := h.reportService.ApplyTransitions(c.Request.Context(), personID, DTOToTransitionRequests(input))
	c.JSON(http.StatusOK, ModelsToTransitionResultResponses(results))
}

func optionalUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &id, true
}
