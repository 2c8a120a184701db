package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/ghostnet/internal/models"
)

// @Summary Get a list of roles
// @Description Get all roles ordered by ID. Requires API key.
// @Tags Catalog
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} RoleResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /roles [get]
func (h *Handler) listRoles(c *gin.Context) {
	log := h.logger.WithField("method", "listRoles")

	roles, err := h.catalogService.ListRoles(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToRoleResponses(roles))
}

// @Summary Create a new role
// @Description Add a role to the catalog. Requires API key.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param role body RoleRequest true "Role creation request"
// @Success 201 {object} RoleResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /roles [post]
func (h *Handler) createRole(c *gin.Context) {
	log := h.logger.WithField("method", "createRole")

	var input RoleRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	role := DTOToRoleModel(input)
	if err := h.catalogService.CreateRole(c.Request.Context(), role); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToRoleResponse(role))
}

// @Summary Update a role
// @Description Update the description of a role. The code cannot be changed. Requires API key.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Role ID"
// @Param role body RoleUpdateRequest true "Role update request"
// @Success 200 {object} RoleResponse
// @Failure 400 {object} map[string]string "Invalid role ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /roles/{id} [put]
func (h *Handler) updateRole(c *gin.Context) {
	id, ok := parseInt64Param(c, "id", "role")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateRole").WithField("id", id)

	var input RoleUpdateRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	role := DTOToRoleUpdateModel(input)
	role.ID = id
	if err := h.catalogService.UpdateRole(c.Request.Context(), role); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToRoleResponse(role))
}

// @Summary Delete a role
// @Description Detach all persons from the role and delete it. Requires API key.
// @Tags Catalog
// @Security ApiKeyAuth
// @Param id path int true "Role ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid role ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Role not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /roles/{id} [delete]
func (h *Handler) deleteRole(c *gin.Context) {
	id, ok := parseInt64Param(c, "id", "role")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteRole").WithField("id", id)

	if err := h.integrityService.DeleteRole(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get a list of statuses
// @Description Get statuses ordered by ID. Requires API key.
// @Tags Catalog
// @Produce json
// @Security ApiKeyAuth
// @Param recovery query bool false "Only statuses relevant for recovery"
// @Param q query string false "Description substring"
// @Success 200 {array} StatusResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /statuses [get]
func (h *Handler) listStatuses(c *gin.Context) {
	log := h.logger.WithField("method", "listStatuses")

	recovery := false
	if raw := c.Query("recovery"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recovery flag"})
			return
		}
		recovery = parsed
	}

	var (
		statuses []*models.Status
		err      error
	)
	if recovery && c.Query("q") == "" {
		statuses, err = h.catalogService.ListRecoveryRelevant(c.Request.Context())
	} else {
		filter := models.StatusFilter{Description: c.Query("q")}
		if recovery {
			filter.RelevantForRecovery = &recovery
		}
		statuses, err = h.catalogService.ListStatuses(c.Request.Context(), filter)
	}
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToStatusResponses(statuses))
}

// @Summary Create a new status
// @Description Add a status to the catalog. Requires API key.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param status body StatusRequest true "Status creation request"
// @Success 201 {object} StatusResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /statuses [post]
func (h *Handler) createStatus(c *gin.Context) {
	log := h.logger.WithField("method", "createStatus")

	var input StatusRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	status := DTOToStatusModel(input)
	if err := h.catalogService.CreateStatus(c.Request.Context(), status); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToStatusResponse(status))
}

// @Summary Update a status
// @Description Update description and recovery relevance of a status. The code cannot be changed. Requires API key.
// @Tags Catalog
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Status ID"
// @Param status body StatusUpdateRequest true "Status update request"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} map[string]string "Invalid status ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Status not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /statuses/{id} [put]
func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := parseInt64Param(c, "id", "status")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input StatusUpdateRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	status := DTOToStatusUpdateModel(input)
	status.ID = id
	if err := h.catalogService.UpdateStatus(c.Request.Context(), status); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToStatusResponse(status))
}

// @Summary Delete a status
// @Description Detach all reports from the status and delete it. Requires API key.
// @Tags Catalog
// @Security ApiKeyAuth
// @Param id path int true "Status ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid status ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Status not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /statuses/{id} [delete]
func (h *Handler) deleteStatus(c *gin.Context) {
	id, ok := parseInt64Param(c, "id", "status")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteStatus").WithField("id", id)

	if err := h.integrityService.DeleteStatus(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get allowed destinations
// @Description Get statuses a person with the given role may move a report to from this status. Requires API key.
// @Tags Catalog
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Current status ID"
// @Param role_id query int true "Role ID of the acting person"
// @Success 200 {array} StatusResponse
// @Failure 400 {object} map[string]string "Invalid status or role ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Status or role not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /statuses/{id}/destinations [get]
func (h *Handler) allowedDestinations(c *gin.Context) {
	id, ok := parseInt64Param(c, "id", "status")
	if !ok {
		return
	}
	roleID, err := strconv.ParseInt(c.Query("role_id"), 10, 64)
	if err != nil || roleID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role ID"})
		return
	}
	log := h.logger.WithField("method", "allowedDestinations").WithField("id", id).WithField("role_id", roleID)

	destinations, err := h.catalogService.AllowedDestinations(c.Request.Context(), id, roleID)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToStatusResponses(destinations))
}
