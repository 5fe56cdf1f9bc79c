package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"

	"shoestore/internal/repositories"
)

// maxDiagnosticsCollections caps how many collection names the diagnostics
// endpoint reports.
const maxDiagnosticsCollections = 10

// SystemHandler handles the health and diagnostics endpoints.
type SystemHandler struct {
	probe repositories.StoreProbe
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(probe repositories.StoreProbe) *SystemHandler {
	return &SystemHandler{
		probe: probe,
	}
}

// RegisterRoutes registers the health and diagnostics routes.
func (h *SystemHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HandleRoot)
	app.Get("/api/hello", h.HandleHello)
	app.Get("/test", h.HandleDiagnostics)
}

// HandleRoot reports that the backend is running.
func (h *SystemHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Shoe Store Backend Running"})
}

// HandleHello is the API-prefixed health check.
func (h *SystemHandler) HandleHello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Hello from the backend API!"})
}

// HandleDiagnostics probes store reachability without ever failing the
// request: every error path becomes a descriptive string in a 200 payload.
// Configuration values are reported by presence only, never by content.
func (h *SystemHandler) HandleDiagnostics(c *fiber.Ctx) error {
	resp := fiber.Map{
		"backend":           "running",
		"database":          "not available",
		"connection_status": "not connected",
		"collections":       []string{},
	}

	if h.probe == nil {
		resp["database"] = "available but not initialized"
	} else {
		names, err := h.probe.CollectionNames(c.UserContext(), maxDiagnosticsCollections)
		switch {
		case errors.Is(err, repositories.ErrStoreNotInitialized):
			resp["database"] = "available but not initialized"
		case err != nil:
			resp["connection_status"] = "connected"
			resp["database"] = "connected but error: " + truncate(err.Error(), 50)
		default:
			resp["connection_status"] = "connected"
			resp["database"] = "connected and working"
			resp["collections"] = names
		}
	}

	resp["database_url"] = presence(viper.GetString("DATABASE_URL"))
	resp["database_name"] = presence(viper.GetString("DATABASE_NAME"))
	return c.JSON(resp)
}

func presence(value string) string {
	if value != "" {
		return "set"
	}
	return "not set"
}

// truncate shortens s to max characters, never splitting a multibyte rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}
