package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/ghostnet/internal/models"
)

// @Summary Register a new person
// @Description Register a reporter or recoverer. Telephone number is required unless the role is anonymous_reporter. Requires API key.
// @Tags Persons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param person body PersonRequest true "Person creation request"
// @Success 201 {object} PersonResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /persons [post]
func (h *Handler) createPerson(c *gin.Context) {
	log := h.logger.WithField("method", "createPerson")

	var input PersonRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	person := DTOToPersonModel(input)
	if err := h.personService.CreatePerson(c.Request.Context(), person); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToPersonResponse(person))
}

// @Summary Get a list of persons
// @Description Get a paginated list of persons ordered by name. Requires API key.
// @Tags Persons
// @Produce json
// @Security ApiKeyAuth
// @Param role_id query int false "Role ID"
// @Param name query string false "Name substring"
// @Param phone query string false "Telephone number substring"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(10)
// @Success 200 {array} PersonResponse
// @Failure 400 {object} map[string]string "Invalid role ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /persons [get]
func (h *Handler) listPersons(c *gin.Context) {
	log := h.logger.WithField("method", "listPersons")
	page, pageSize := h.pagination(c)

	filter := models.PersonFilter{
		Name:            c.Query("name"),
		TelephoneNumber: c.Query("phone"),
		Page:            page,
		PageSize:        pageSize,
	}
	if raw := c.Query("role_id"); raw != "" {
		roleID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role ID"})
			return
		}
		filter.RoleID = &roleID
	}

	persons, err := h.personService.ListPersons(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToPersonResponses(persons))
}

// @Summary Get person by ID
// @Description Get a person with role and the reports they reported or recover. Requires API key.
// @Tags Persons
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Person ID"
// @Success 200 {object} PersonDetailsResponse
// @Failure 400 {object} map[string]string "Invalid person ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Person not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /persons/{id} [get]
func (h *Handler) getPerson(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "person")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getPerson").WithField("id", id)

	details, err := h.personService.GetPerson(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToPersonDetailsResponse(details))
}

// @Summary Update a person
// @Description Update name, telephone number and role of a person. Requires API key.
// @Tags Persons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Person ID"
// @Param person body PersonRequest true "Person update request"
// @Success 200 {object} PersonResponse
// @Failure 400 {object} map[string]string "Invalid person ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Person not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /persons/{id} [put]
func (h *Handler) updatePerson(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "person")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updatePerson").WithField("id", id)

	var input PersonRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	person := DTOToPersonModel(input)
	person.ID = id
	if err := h.personService.UpdatePerson(c.Request.Context(), person); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToPersonResponse(person))
}

// @Summary Delete a person
// @Description Detach the person from role and reports and delete it. Requires API key.
// @Tags Persons
// @Security ApiKeyAuth
// @Param id path string true "Person ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid person ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Person not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /persons/{id} [delete]
func (h *Handler) deletePerson(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "person")
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deletePerson").WithField("id", id)

	if err := h.integrityService.DeletePerson(c.Request.Context(), id); err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
