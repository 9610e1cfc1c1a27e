package driver

import (
	"fmt"
	"strconv"

	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	connectionModel "lifeline-backend/models/connection"
	driverModel "lifeline-backend/models/driver"
	addressService "lifeline-backend/services/address"
	geoService "lifeline-backend/services/geo"
	"lifeline-backend/types"
	bookingTypes "lifeline-backend/types/booking"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DriverController struct {
	db         *gorm.DB
	geo        *geoService.Service
	cityStates addressService.CityStateStore
}

func NewDriverController(db *gorm.DB, geo *geoService.Service, cityStates addressService.CityStateStore) *DriverController {
	return &DriverController{db: db, geo: geo, cityStates: cityStates}
}

// GetProfile returns the authenticated driver's record, including the
// hospitals the driver is connected to.
func (h *DriverController) GetProfile(c *fiber.Ctx) error {
	driverID, _ := utils.PartyID(c)

	var d driverModel.Driver
	err := h.db.Preload("CityState").Preload("Hospitals").First(&d, driverID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.Respond(c, apperr.NotFound("Driver not found."))
		}
		logger.Error("Failed to fetch driver profile", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while fetching the profile.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    d,
	})
}

// UpdateStatus changes the driver's duty state.
func (h *DriverController) UpdateStatus(c *fiber.Ctx) error {
	driverID, _ := utils.PartyID(c)

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

	status := driverModel.DriverStatus(req.Status)
	if !status.IsValid() {
		return apperr.Respond(c, apperr.Validation("Invalid status. Use 'available', 'busy' or 'off-duty'."))
	}

	res := h.db.Model(&driverModel.Driver{}).Where("id = ?", driverID).Update("status", status)
	if res.Error != nil {
		logger.Error("Failed to update driver status", res.Error)
		return apperr.Respond(c, apperr.Dependency("An error occurred while updating the status.", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Respond(c, apperr.NotFound("Driver not found."))
	}

	logger.Success(fmt.Sprintf("Driver %d status set to %s", driverID, status))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Driver status updated successfully.",
		Status:  fiber.StatusOK,
		Data:    fiber.Map{"status": status},
	})
}

// UpdateProfile changes the driver's contact details and, when an address is
// supplied, re-normalizes it through the shared city/state table.
func (h *DriverController) UpdateProfile(c *fiber.Ctx) error {
	driverID, _ := utils.PartyID(c)

	var req struct {
		Name    string                     `json:"name"`
		Email   string                     `json:"email"`
		Phone   string                     `json:"phone"`
		Address *bookingTypes.AddressInput `json:"address"`
	}
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != nil {
		cs, err := addressService.GetOrCreate(h.cityStates, *req.Address)
		if err != nil {
			return apperr.Respond(c, err)
		}
		updates["street"] = req.Address.Street
		updates["latitude"] = req.Address.Latitude
		updates["longitude"] = req.Address.Longitude
		updates["city_state_id"] = cs.ID
	}
	if len(updates) == 0 {
		return apperr.Respond(c, apperr.Validation("Nothing to update."))
	}

	if err := h.db.Model(&driverModel.Driver{}).Where("id = ?", driverID).Updates(updates).Error; err != nil {
		logger.Error("Failed to update driver profile", err)
		return apperr.Respond(c, apperr.Conflict("A driver with this email already exists."))
	}

	logger.Success(fmt.Sprintf("Driver %d profile updated", driverID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated successfully.",
		Status:  fiber.StatusOK,
	})
}

// DeleteAccount removes the driver's own record along with its connection
// rows.
func (h *DriverController) DeleteAccount(c *fiber.Ctx) error {
	driverID, _ := utils.PartyID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("driver_id = ?", driverID).Delete(&connectionModel.ConnectRequest{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&driverModel.Driver{}, driverID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Driver not found.")
		}
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return apperr.Respond(c, err)
		}
		logger.Error("Failed to delete driver account", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while deleting the account.", err))
	}

	logger.Success(fmt.Sprintf("Driver %d account deleted", driverID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Account deleted successfully.",
		Status:  fiber.StatusOK,
	})
}

// NearbyHospitals returns hospitals within the given radius of the
// authenticated driver.
func (h *DriverController) NearbyHospitals(c *fiber.Ctx) error {
	driverID, _ := utils.PartyID(c)

	radiusKm := geoService.DefaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return apperr.Respond(c, apperr.Validation("radius_km must be a positive number."))
		}
		radiusKm = parsed
	}

	hospitals, err := h.geo.NearbyHospitals(driverID, radiusKm)
	if err != nil {
		logger.Error("Nearby hospital search failed", err)
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Nearby hospitals retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    hospitals,
	})
}
