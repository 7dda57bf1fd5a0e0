package handlers

import (
	"github.com/gin-gonic/gin"
	"roster-server-go/auth"
)

// Register sets up the API routes. Everything except login and ping needs a
// bearer token.
func (h *APIHandler) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/login", h.Login)
		api.GET("/ping", PingHandler)
	}

	private := api.Group("", auth.Middleware(h.Tokens))
	{
		// Class routes
		private.GET("/classes", h.GetAllClasses)
		private.POST("/classes", h.AddClass)
		private.DELETE("/classes/:name", h.DeleteClass)

		// Student routes
		private.GET("/students", h.GetStudents)
		private.GET("/students/export", h.ExportStudents)
		private.GET("/students/:id", h.GetStudent)
		private.POST("/students", h.AddStudent)
		private.PUT("/students/:id", h.UpdateStudent)
		private.DELETE("/students/:id", h.DeleteStudent)

		// Import route
		private.POST("/import/students", h.ImportStudents)
	}
}
