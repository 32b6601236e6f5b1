package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
	Environment  string            `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{
		Status:       "ok",
		Dependencies: make(map[string]string, len(names)),
		Environment:  h.cfg.Environment,
	}
	for _, name := range names {
		status := "ok"
		if err := h.checks[name](ctx); err != nil {
			status = "error"
			resp.Status = "degraded"
			h.log.Error().Err(err).Str("dependency", name).Msg("health check failed")
		}
		resp.Dependencies[name] = status
	}

	c.JSON(http.StatusOK, resp)
}
