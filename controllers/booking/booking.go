package booking

import (
	"fmt"
	"strconv"

	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	bookingService "lifeline-backend/services/booking"
	otpService "lifeline-backend/services/otp"
	"lifeline-backend/types"
	bookingTypes "lifeline-backend/types/booking"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type BookingController struct {
	engine         *bookingService.Engine
	otp            *otpService.Service
	loggerInstance *logger.AsyncLogger
}

func NewBookingController(engine *bookingService.Engine, otp *otpService.Service, asyncLogger *logger.AsyncLogger) *BookingController {
	return &BookingController{engine: engine, otp: otp, loggerInstance: asyncLogger}
}

func requestIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("Invalid request id.")
	}
	return uint(id), nil
}

// CreateOrderRequest handles a patient's new ambulance request.
func (h *BookingController) CreateOrderRequest(c *fiber.Ctx) error {
	var req bookingTypes.OrderRequestInput
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	userID, _ := utils.PartyID(c)
	created, patient, err := h.engine.CreateOrderRequest(req, userID)
	if err != nil {
		logger.Error("Failed to create order request", err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Order request %d created for user %d", created.ID, userID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Order request created successfully.",
		Status:  fiber.StatusCreated,
		Data: fiber.Map{
			"order_request":   created,
			"patient_details": patient,
		},
	})
}

// RespondToBooking handles the hospital's accept/reject decision.
func (h *BookingController) RespondToBooking(c *fiber.Ctx) error {
	requestID, err := requestIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req bookingTypes.RespondInput
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	updated, err := h.engine.RespondToBooking(req, requestID, utils.CallerIdentity(c))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to respond to booking request %d", requestID), err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Booking request %d marked %s", requestID, updated.Status))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: fmt.Sprintf("Booking request %s successfully.", updated.Status),
		Status:  fiber.StatusOK,
		Data:    updated,
	})
}

// AssignBookingDetails handles the hospital's driver/ambulance assignment.
// Repeating the call for an already-assigned request returns the existing
// booking unchanged.
func (h *BookingController) AssignBookingDetails(c *fiber.Ctx) error {
	requestID, err := requestIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	var req bookingTypes.AssignDetailsInput
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	result, err := h.engine.AssignBookingDetails(req, requestID, utils.CallerIdentity(c))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to assign details for booking request %d", requestID), err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	if result.AlreadyAssigned {
		return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
			Message: "Booking details were already assigned.",
			Status:  fiber.StatusOK,
			Data:    result.Booking,
		})
	}

	logger.Success(fmt.Sprintf("Booking %d assigned for request %d", result.Booking.ID, requestID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Booking details assigned successfully.",
		Status:  fiber.StatusCreated,
		Data:    result.Booking,
	})
}

// GetOrderRequests lists the caller's booking requests.
func (h *BookingController) GetOrderRequests(c *fiber.Ctx) error {
	partyID, _ := utils.PartyID(c)
	role, _ := utils.Role(c)

	requests, err := h.engine.GetOrderRequests(partyID, role)
	if err != nil {
		logger.Error("Failed to fetch order requests", err)
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Order requests retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    requests,
	})
}

// VerifyOTP completes a booking by consuming its OTP.
func (h *BookingController) VerifyOTP(c *fiber.Ctx) error {
	bookingID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("Invalid booking id."))
	}

	var req struct {
		OTP string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}
	if req.OTP == "" {
		return apperr.Respond(c, apperr.Validation("Missing otp field."))
	}

	booking, err := h.otp.VerifyBookingOTP(uint(bookingID), req.OTP)
	if err != nil {
		logger.Error(fmt.Sprintf("OTP verification failed for booking %d", bookingID), err)
		return apperr.Respond(c, err)
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	logger.Success(fmt.Sprintf("Booking %d completed via OTP", booking.ID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Booking completed successfully.",
		Status:  fiber.StatusOK,
		Data:    booking,
	})
}
