package connection

import (
	"fmt"
	"strconv"

	"lifeline-backend/apperr"
	"lifeline-backend/constants"
	"lifeline-backend/logger"
	connectionModel "lifeline-backend/models/connection"
	connectionService "lifeline-backend/services/connection"
	"lifeline-backend/types"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ConnectionController struct {
	service        *connectionService.Service
	loggerInstance *logger.AsyncLogger
}

func NewConnectionController(service *connectionService.Service, asyncLogger *logger.AsyncLogger) *ConnectionController {
	return &ConnectionController{service: service, loggerInstance: asyncLogger}
}

// senderSide maps the caller's role onto the connection request parties: the
// caller's own id fills its side, the body supplies the counterparty.
func senderSide(c *fiber.Ctx, counterpartyID uint) (connectionModel.SenderType, uint, uint, error) {
	partyID, _ := utils.PartyID(c)
	role, _ := utils.Role(c)

	switch role {
	case constants.RoleDriver:
		return connectionModel.SenderDriver, partyID, counterpartyID, nil
	case constants.RoleHospital:
		return connectionModel.SenderHospital, counterpartyID, partyID, nil
	default:
		return "", 0, 0, apperr.Forbidden("Access forbidden: Only drivers and hospitals can manage connections.")
	}
}

// Request creates a pending connection request towards the counterparty named
// in the body.
func (h *ConnectionController) Request(c *fiber.Ctx) error {
	var req struct {
		CounterpartyID uint `json:"counterparty_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	senderType, driverID, hospitalID, err := senderSide(c, req.CounterpartyID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	created, err := h.service.Request(senderType, driverID, hospitalID)
	if err != nil {
		logger.Error("Failed to create connection request", err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Connection request %d created (driver %d, hospital %d)",
		created.ID, driverID, hospitalID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Connection request sent successfully.",
		Status:  fiber.StatusCreated,
		Data:    created,
	})
}

// ListPending returns the caller's pending connection requests, sent or
// received.
func (h *ConnectionController) ListPending(c *fiber.Ctx) error {
	partyID, _ := utils.PartyID(c)
	role, _ := utils.Role(c)

	var partyType connectionModel.SenderType
	switch role {
	case constants.RoleDriver:
		partyType = connectionModel.SenderDriver
	case constants.RoleHospital:
		partyType = connectionModel.SenderHospital
	default:
		return apperr.Respond(c, apperr.Forbidden("Access forbidden: Only drivers and hospitals can manage connections."))
	}

	requests, err := h.service.ListPending(partyID, partyType)
	if err != nil {
		logger.Error("Failed to list connection requests", err)
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Pending connection requests retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    requests,
	})
}

// Respond resolves a pending request; only the counterparty of the sender may
// call this.
func (h *ConnectionController) Respond(c *fiber.Ctx) error {
	requestID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("Invalid request id."))
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	updated, err := h.service.Respond(uint(requestID), connectionModel.Status(req.Status), utils.CallerIdentity(c))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to respond to connection request %d", requestID), err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Connection request %d marked %s", requestID, updated.Status))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: fmt.Sprintf("Connection request %s successfully.", updated.Status),
		Status:  fiber.StatusOK,
		Data:    updated,
	})
}

// Remove severs the membership between the caller and the counterparty named
// in the body.
func (h *ConnectionController) Remove(c *fiber.Ctx) error {
	var req struct {
		CounterpartyID uint `json:"counterparty_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	_, driverID, hospitalID, err := senderSide(c, req.CounterpartyID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	if err := h.service.Remove(hospitalID, driverID); err != nil {
		logger.Error(fmt.Sprintf("Failed to remove connection (driver %d, hospital %d)", driverID, hospitalID), err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Connection removed (driver %d, hospital %d)", driverID, hospitalID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Connection removed successfully.",
		Status:  fiber.StatusOK,
	})
}
