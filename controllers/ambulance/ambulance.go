package ambulance

import (
	"fmt"
	"strconv"

	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	ambulanceModel "lifeline-backend/models/ambulance"
	"lifeline-backend/types"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AmbulanceController struct {
	db *gorm.DB
}

func NewAmbulanceController(db *gorm.DB) *AmbulanceController {
	return &AmbulanceController{db: db}
}

func ambulanceIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("Invalid ambulance id.")
	}
	return uint(id), nil
}

// Create registers a vehicle under the authenticated hospital.
func (h *AmbulanceController) Create(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	var req struct {
		VehicleNumber string `json:"vehicle_number"`
		VehicleType   string `json:"vehicle_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if req.VehicleNumber == "" || req.VehicleType == "" {
		return apperr.Respond(c, apperr.Validation("vehicle_number and vehicle_type are required."))
	}

	a := ambulanceModel.Ambulance{
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		Status:        ambulanceModel.StatusAvailable,
		HospitalID:    hospitalID,
	}
	if err := h.db.Create(&a).Error; err != nil {
		logger.Error("Failed to register ambulance", err)
		return apperr.Respond(c, apperr.Conflict("An ambulance with this vehicle number already exists."))
	}

	logger.Success(fmt.Sprintf("Ambulance %s registered for hospital %d", a.VehicleNumber, hospitalID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: "Ambulance registered successfully.",
		Status:  fiber.StatusCreated,
		Data:    a,
	})
}

// List returns the authenticated hospital's fleet.
func (h *AmbulanceController) List(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	var fleet []ambulanceModel.Ambulance
	if err := h.db.Where("hospital_id = ?", hospitalID).Find(&fleet).Error; err != nil {
		logger.Error("Failed to list ambulances", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while fetching ambulances.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ambulances retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    fleet,
	})
}

// UpdateStatus changes a vehicle's operational state. Only the owning
// hospital may touch it.
func (h *AmbulanceController) UpdateStatus(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	id, err := ambulanceIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
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

	status := ambulanceModel.AmbulanceStatus(req.Status)
	if !status.IsValid() {
		return apperr.Respond(c, apperr.Validation("Invalid status. Use 'available', 'busy' or 'maintenance'."))
	}

	res := h.db.Model(&ambulanceModel.Ambulance{}).
		Where("id = ? AND hospital_id = ?", id, hospitalID).
		Update("status", status)
	if res.Error != nil {
		logger.Error("Failed to update ambulance status", res.Error)
		return apperr.Respond(c, apperr.Dependency("An error occurred while updating the ambulance.", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Respond(c, apperr.NotFound("Ambulance not found."))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ambulance status updated successfully.",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"status": status},
	})
}

// Delete removes a vehicle from the fleet.
func (h *AmbulanceController) Delete(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	id, err := ambulanceIDParam(c)
	if err != nil {
		return apperr.Respond(c, err)
	}

	res := h.db.Where("id = ? AND hospital_id = ?", id, hospitalID).Delete(&ambulanceModel.Ambulance{})
	if res.Error != nil {
		logger.Error("Failed to delete ambulance", res.Error)
		return apperr.Respond(c, apperr.Dependency("An error occurred while deleting the ambulance.", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Respond(c, apperr.NotFound("Ambulance not found."))
	}

	logger.Success(fmt.Sprintf("Ambulance %d deleted by hospital %d", id, hospitalID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Ambulance deleted successfully.",
		Status:  fiber.StatusOK,
	})
}
