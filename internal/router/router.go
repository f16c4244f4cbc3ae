package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/taskpulse/backend/api/handler"
)

type Handlers struct {
	Task     *apiHandler.TaskHandler
	Calendar *apiHandler.CalendarHandler
	Ops      *apiHandler.OpsHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Task routes
	r.GET("/api/v1/tasks", handlers.Task.GetTasks)
	r.POST("/api/v1/tasks", handlers.Task.CreateTask)
	r.GET("/api/v1/tasks/{id}", handlers.Task.GetTask)
	r.PUT("/api/v1/tasks/{id}", handlers.Task.UpdateTask)
	r.DELETE("/api/v1/tasks/{id}", handlers.Task.DeleteTask)
	r.POST("/api/v1/tasks/{id}/complete", handlers.Task.CompleteTask)

	// Calendar routes
	r.GET("/api/v1/calendar/dates", handlers.Calendar.GetDates)
	r.GET("/api/v1/calendar/{date}", handlers.Calendar.GetTasksOnDate)

	// Operational routes
	r.GET("/api/v1/notifications", handlers.Ops.GetNotifications)
	r.GET("/api/v1/export/csv", handlers.Ops.ExportCSV)
	r.POST("/api/v1/snapshot/save", handlers.Ops.SaveSnapshot)
	r.POST("/api/v1/snapshot/load", handlers.Ops.LoadSnapshot)

	return r
}
