package routes

import (
	"task-tracker/internal/controller"
	"task-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Deps are the handlers and secrets the router wires together.
type Deps struct {
	Tasks     *controller.Tasks
	Countries *controller.Countries
	Activity  controller.ActivityLog // nil disables /activity
	Slot      controller.Pinger
	JWTSecret string
}

func Router(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", controller.Ready(d.Slot))

	// Public: no auth
	public := router.Group("")
	public.Use(middleware.OptionalAuth(d.JWTSecret))
	{
		public.GET("/tasks", d.Tasks.List)
		public.GET("/tasks/:id", d.Tasks.Get)
		public.GET("/countries", d.Countries.All)
		public.GET("/countries/suggest", d.Countries.Suggest)
		public.GET("/activity", controller.Activity(d.Activity))
	}

	// Protected: JWT required
	api := router.Group("")
	api.Use(middleware.AuthMiddleware(d.JWTSecret))
	{
		api.POST("/tasks", d.Tasks.Create)
		api.PUT("/tasks/:id", d.Tasks.Update)
		api.POST("/tasks/:id/toggle", d.Tasks.Toggle)
		api.DELETE("/tasks/:id", d.Tasks.Delete)
	}

	return router
}
