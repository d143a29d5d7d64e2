package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iridescentding/memoq-tickets-system/internal/service"
)

// MonitoringHandler exposes the SLA/idle dashboard queries and the manual
// scan trigger.
type MonitoringHandler struct {
	service *service.MonitoringService
}

// NewMonitoringHandler constructs handler.
func NewMonitoringHandler(monitoringService *service.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{service: monitoringService}
}

// IRReport GET /monitoring/sla/ir.
func (h *MonitoringHandler) IRReport(c *fiber.Ctx) error {
	report, err := h.service.IRReport(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// ResolutionReport GET /monitoring/sla/resolution.
func (h *MonitoringHandler) ResolutionReport(c *fiber.Ctx) error {
	report, err := h.service.ResolutionReport(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Idle GET /monitoring/idle.
func (h *MonitoringHandler) Idle(c *fiber.Ctx) error {
	report, err := h.service.Idle(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Scan POST /monitoring/scan. Invoked by an external scheduler or manually.
func (h *MonitoringHandler) Scan(c *fiber.Ctx) error {
	summary, err := h.service.Scan(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
