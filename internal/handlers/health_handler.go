package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness and store reachability.
type HealthHandler struct {
	ping func() error // nil when there is no external store
}

// NewHealthHandler creates a new HealthHandler. ping may be nil.
func NewHealthHandler(ping func() error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

// RegisterRoutes registers GET /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the store is reachable and 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	database := "in-memory"
	if h.ping != nil {
		if err := h.ping(); err != nil {
			log.Printf("Health check: database ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "unreachable",
			})
		}
		database = "connected"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
