package httpserver

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/insight/internal/server/users"
)

func (s *HTTPServer) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(
		s.requestIDMiddleware(),
		s.requestLoggingMiddleware(),
	)

	api := engine.Group("/api/v1")

	api.GET("/health", s.handleHealth)
	api.POST("/auth/token", s.handleIssueToken)
	api.POST("/users", s.handleRegister)

	api.GET("/users/me", s.basicAuth(), s.handleCurrentUser)
	api.POST("/predict", s.basicAuth(), s.handlePredict)

	api.GET("/users", s.bearerAuth(users.RoleAdmin), s.handleListUsers)
	api.GET("/admin", s.bearerAuth(users.RoleAdmin), s.handleAdmin)

	return engine
}
