package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ipcctiled/transform-api/internal/profile"
	"github.com/ipcctiled/transform-api/internal/transform"
)

type HealthHandler struct {
	service        *transform.Service
	defaultProfile profile.Name
}

func NewHealthHandler(service *transform.Service, defaultProfile profile.Name) *HealthHandler {
	return &HealthHandler{service: service, defaultProfile: defaultProfile}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"llm": gin.H{
			"provider": h.service.ProviderName(),
			"model":    h.service.Model(),
		},
		"profile":      string(h.defaultProfile),
		"range_policy": string(h.service.Policy()),
	})
}
