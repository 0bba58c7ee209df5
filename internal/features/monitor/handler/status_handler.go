package handler

import (
	"net/http"

	"ozon-order-bot/internal/core/logger"
	"ozon-order-bot/internal/core/storage"
	"ozon-order-bot/internal/features/monitor/service"
	"ozon-order-bot/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StatusHandler serves the local operational endpoints.
type StatusHandler struct {
	// monitor is the poll loop being reported on.
	monitor *service.Monitor
	// provider is checked for seller API reachability.
	provider ports.OrderProvider
	// db is checked for store liveness.
	db *storage.Database
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(monitor *service.Monitor, provider ports.OrderProvider, db *storage.Database) *StatusHandler {
	return &StatusHandler{
		monitor:  monitor,
		provider: provider,
		db:       db,
	}
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	// Status is "ok" or "degraded".
	Status string `json:"status"`
	// Store reports the embedded database state.
	Store string `json:"store"`
	// SellerAPI reports Ozon reachability.
	SellerAPI string `json:"seller_api"`
}

// Healthz reports liveness of the store and the seller API.
func (h *StatusHandler) Healthz(c *fiber.Ctx) error {
	resp := healthResponse{Status: "ok", Store: "ok", SellerAPI: "ok"}

	if err := h.db.Ping(); err != nil {
		logger.Get().Warn("Store health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Store = err.Error()
	}

	if err := h.provider.HealthCheck(c.UserContext()); err != nil {
		logger.Get().Warn("Seller API health check failed", zap.Error(err))
		resp.Status = "degraded"
		resp.SellerAPI = err.Error()
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.Status(code).JSON(resp)
}

// Status reports the monitor state.
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	status, err := h.monitor.Status(c.UserContext())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(status)
}
