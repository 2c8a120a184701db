package v1

import (
	"github.com/google/uuid"
	"github.com/shenikar/ghostnet/internal/models"
)

func DTOToRoleModel(dto RoleRequest) *models.Role {
	return &models.Role{
		Code:        dto.Code,
		Description: dto.Description,
	}
}

func DTOToRoleUpdateModel(dto RoleUpdateRequest) *models.Role {
	return &models.Role{
		Code:        dto.Code,
		Description: dto.Description,
	}
}

func ModelToRoleResponse(model *models.Role) *RoleResponse {
	return &RoleResponse{
		ID:          model.ID,
		Code:        model.Code,
		Description: model.Description,
	}
}

func ModelsToRoleResponses(roles []*models.Role) []*RoleResponse {
	responses := make([]*RoleResponse, len(roles))
	for i, role := range roles {
		responses[i] = ModelToRoleResponse(role)
	}
	return responses
}

func DTOToStatusModel(dto StatusRequest) *models.Status {
	return &models.Status{
		Code:                dto.Code,
		Description:         dto.Description,
		RelevantForRecovery: dto.RelevantForRecovery,
	}
}

func DTOToStatusUpdateModel(dto StatusUpdateRequest) *models.Status {
	return &models.Status{
		Code:                dto.Code,
		Description:         dto.Description,
		RelevantForRecovery: dto.RelevantForRecovery,
	}
}

func ModelToStatusResponse(model *models.Status) *StatusResponse {
	return &StatusResponse{
		ID:                  model.ID,
		Code:                model.Code,
		Description:         model.Description,
		RelevantForRecovery: model.RelevantForRecovery,
	}
}

func ModelsToStatusResponses(statuses []*models.Status) []*StatusResponse {
	responses := make([]*StatusResponse, len(statuses))
	for i, status := range statuses {
		responses[i] = ModelToStatusResponse(status)
	}
	return responses
}

func DTOToPersonModel(dto PersonRequest) *models.Person {
	roleID := dto.RoleID
	return &models.Person{
		Name:            dto.Name,
		TelephoneNumber: dto.TelephoneNumber,
		RoleID:          &roleID,
	}
}

func ModelToPersonResponse(model *models.Person) *PersonResponse {
	return &PersonResponse{
		ID:              model.ID,
		Name:            model.Name,
		TelephoneNumber: model.TelephoneNumber,
		RoleID:          model.RoleID,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func ModelsToPersonResponses(persons []*models.Person) []*PersonResponse {
	responses := make([]*PersonResponse, len(persons))
	for i, person := range persons {
		responses[i] = ModelToPersonResponse(person)
	}
	return responses
}

func ModelToPersonDetailsResponse(details *models.PersonDetails) *PersonDetailsResponse {
	resp := &PersonDetailsResponse{
		PersonResponse:    *ModelToPersonResponse(details.Person),
		ReportedReports:   ModelsToReportResponses(details.ReportedReports),
		RecoveringReports: ModelsToReportResponses(details.RecoveringReports),
	}
	if details.Role != nil {
		resp.Role = ModelToRoleResponse(details.Role)
	}
	return resp
}

// DTOToReportModel переносит только описательные поля. Статус и участники
// задаются сервисом.
func DTOToReportModel(dto ReportRequest) *models.Report {
	report := &models.Report{
		Size:        dto.Size,
		Description: dto.Description,
	}
	if dto.Latitude != nil {
		report.Latitude = *dto.Latitude
	}
	if dto.Longitude != nil {
		report.Longitude = *dto.Longitude
	}
	return report
}

func ModelToReportResponse(model *models.Report) *ReportResponse {
	return &ReportResponse{
		ID:                 model.ID,
		StatusID:           model.StatusID,
		ReportingPersonID:  model.ReportingPersonID,
		RecoveringPersonID: model.RecoveringPersonID,
		Latitude:           model.Latitude,
		Longitude:          model.Longitude,
		Size:               model.Size,
		Description:        model.Description,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ModelsToReportResponses(reports []*models.Report) []*ReportResponse {
	responses := make([]*ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = ModelToReportResponse(report)
	}
	return responses
}

// DTOToTransitionRequests ожидает, что report_id уже проверен валидатором
func DTOToTransitionRequests(dto AcceptQueueRequest) []models.TransitionRequest {
	requests := make([]models.TransitionRequest, len(dto.Transitions))
	for i, t := range dto.Transitions {
		requests[i] = models.TransitionRequest{
			ReportID: uuid.MustParse(t.ReportID),
			StatusID: t.StatusID,
		}
	}
	return requests
}

func ModelsToTransitionResultResponses(results []models.TransitionResult) []*TransitionResultResponse {
	responses := make([]*TransitionResultResponse, len(results))
	for i, result := range results {
		resp := &TransitionResultResponse{ReportID: result.ReportID}
		if result.Err != nil {
			resp.Error = errorMessage(result.Err)
		} else if result.Report != nil {
			resp.Report = ModelToReportResponse(result.Report)
		}
		responses[i] = resp
	}
	return responses
}

func ModelsToQueueItemResponses(items []*models.QueueItem) []*QueueItemResponse {
	responses := make([]*QueueItemResponse, len(items))
	for i, item := range items {
		responses[i] = &QueueItemResponse{
			Report:       ModelToReportResponse(item.Report),
			Status:       ModelToStatusResponse(item.Status),
			Destinations: ModelsToStatusResponses(item.Destinations),
		}
	}
	return responses
}
