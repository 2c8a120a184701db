package v1

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver принимает длительность обработанных запросов
type RequestObserver interface {
	ObserveRequest(method, route string, code int, duration time.Duration)
}

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	secured := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger))
	acting := ActingPersonMiddleware(h.logger)

	roles := secured.Group("/roles")
	{
		roles.GET("", h.listRoles)
		roles.POST("", h.createRole)
		roles.PUT("/:id", h.updateRole)
		roles.DELETE("/:id", h.deleteRole)
	}

	statuses := secured.Group("/statuses")
	{
		statuses.GET("", h.listStatuses)
		statuses.POST("", h.createStatus)
		statuses.PUT("/:id", h.updateStatus)
		statuses.DELETE("/:id", h.deleteStatus)
		statuses.GET("/:id/destinations", h.allowedDestinations)
	}

	persons := secured.Group("/persons")
	{
		persons.POST("", h.createPerson)
		persons.GET("", h.listPersons)
		persons.GET("/:id", h.getPerson)
		persons.PUT("/:id", h.updatePerson)
		persons.DELETE("/:id", h.deletePerson)
	}

	reports := secured.Group("/reports")
	{
		reports.POST("", acting, h.createReport)
		reports.GET("", h.listReports)
		// Очередь спасателя
		reports.GET("/queue", acting, h.recoveryQueue)
		reports.POST("/queue/accept", acting, h.acceptQueue)
		reports.GET("/:id", h.getReport)
		reports.PUT("/:id", h.updateReport)
		reports.DELETE("/:id", h.deleteReport)
		reports.POST("/:id/transitions", acting, h.applyTransition)
	}
}

// RequestMetricsMiddleware замеряет длительность запросов по шаблону маршрута
func RequestMetricsMiddleware(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
