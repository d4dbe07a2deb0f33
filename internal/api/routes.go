package api

import (
	"github.com/Basic-PDF-Manager/Document-Service/cmd/middleware"
	"github.com/Basic-PDF-Manager/Document-Service/internal/api/handlers"
	"github.com/Basic-PDF-Manager/Document-Service/internal/session"
	"github.com/gin-gonic/gin"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handlers, sessions *session.Store) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		// Session endpoints
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
		api.GET("/check-auth", h.CheckAuth)

		auth := api.Group("", middleware.RequireAuth(sessions))
		{
			auth.GET("/user", h.CurrentUser)

			// Document endpoints
			auth.POST("/upload", h.UploadPDF)
			auth.GET("/folders", h.ListFolders)
			auth.GET("/pdfs", h.ListPDFs)
			auth.GET("/pdfs/:id", h.GetPDF)
			auth.DELETE("/pdfs/:id", h.DeletePDF)
			auth.POST("/pdfs/:id/versions", h.UploadVersion)
			auth.PUT("/pdfs/:id/metadata", h.SetMetadata)
		}
	}
}
