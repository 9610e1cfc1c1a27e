package hospital

import (
	"fmt"
	"strconv"

	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	ambulanceModel "lifeline-backend/models/ambulance"
	bookingModel "lifeline-backend/models/booking"
	connectionModel "lifeline-backend/models/connection"
	hospitalModel "lifeline-backend/models/hospital"
	addressService "lifeline-backend/services/address"
	geoService "lifeline-backend/services/geo"
	"lifeline-backend/types"
	bookingTypes "lifeline-backend/types/booking"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HospitalController struct {
	db         *gorm.DB
	geo        *geoService.Service
	cityStates addressService.CityStateStore
}

func NewHospitalController(db *gorm.DB, geo *geoService.Service, cityStates addressService.CityStateStore) *HospitalController {
	return &HospitalController{db: db, geo: geo, cityStates: cityStates}
}

// List returns every registered hospital. Public so patients can pick one
// before logging in.
func (h *HospitalController) List(c *fiber.Ctx) error {
	var hospitals []hospitalModel.Hospital
	if err := h.db.Preload("CityState").Find(&hospitals).Error; err != nil {
		logger.Error("Failed to list hospitals", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "An error occurred while fetching hospitals.",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Hospitals retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    hospitals,
	})
}

// Get returns one hospital with its ambulance fleet.
func (h *HospitalController) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return apperr.Respond(c, apperr.Validation("Invalid hospital id."))
	}

	var hospital hospitalModel.Hospital
	if err := h.db.Preload("CityState").Preload("Ambulances").First(&hospital, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperr.Respond(c, apperr.NotFound("Hospital not found."))
		}
		logger.Error("Failed to fetch hospital", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while fetching the hospital.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Hospital retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    hospital,
	})
}

// UpdateProfile changes the hospital's contact details and, when an address
// is supplied, re-normalizes it through the shared city/state table.
func (h *HospitalController) UpdateProfile(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

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

	if err := h.db.Model(&hospitalModel.Hospital{}).Where("id = ?", hospitalID).Updates(updates).Error; err != nil {
		logger.Error("Failed to update hospital profile", err)
		return apperr.Respond(c, apperr.Conflict("A hospital with this name, email or phone already exists."))
	}

	logger.Success(fmt.Sprintf("Hospital %d profile updated", hospitalID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated successfully.",
		Status:  fiber.StatusOK,
	})
}

// DeleteAccount removes the hospital along with its ambulance fleet and
// connection rows. Booking history rows keep their hospital_id and are left
// in place.
func (h *HospitalController) DeleteAccount(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hospital_id = ?", hospitalID).Delete(&ambulanceModel.Ambulance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("hospital_id = ?", hospitalID).Delete(&connectionModel.ConnectRequest{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&hospitalModel.Hospital{}, hospitalID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Hospital not found.")
		}
		return nil
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return apperr.Respond(c, err)
		}
		logger.Error("Failed to delete hospital account", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while deleting the account.", err))
	}

	logger.Success(fmt.Sprintf("Hospital %d account deleted", hospitalID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Account deleted successfully.",
		Status:  fiber.StatusOK,
	})
}

// NearbyDrivers returns drivers within the given radius of the authenticated
// hospital. Radius defaults when absent; an empty result is a success.
func (h *HospitalController) NearbyDrivers(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)

	radiusKm := geoService.DefaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return apperr.Respond(c, apperr.Validation("radius_km must be a positive number."))
		}
		radiusKm = parsed
	}

	drivers, err := h.geo.NearbyDrivers(hospitalID, radiusKm)
	if err != nil {
		logger.Error("Nearby driver search failed", err)
		return apperr.Respond(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Nearby drivers retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    drivers,
	})
}

// Stats returns the hospital's dashboard counters for the current day.
func (h *HospitalController) Stats(c *fiber.Ctx) error {
	hospitalID, _ := utils.PartyID(c)
	dayStart, dayEnd := utils.TodayRange()

	counts := map[string]int64{}
	for _, status := range []bookingModel.RequestStatus{
		bookingModel.RequestStatusPending,
		bookingModel.RequestStatusAccepted,
		bookingModel.RequestStatusRejected,
		bookingModel.RequestStatusCompleted,
	} {
		var n int64
		err := h.db.Model(&bookingModel.BookingRequest{}).
			Where("hospital_id = ? AND status = ? AND created_at BETWEEN ? AND ?",
				hospitalID, status, dayStart, dayEnd).
			Count(&n).Error
		if err != nil {
			logger.Error("Failed to compute dashboard stats", err)
			return apperr.Respond(c, apperr.Dependency("An error occurred while computing stats.", err))
		}
		counts[status.String()] = n
	}

	var totalToday int64
	err := h.db.Model(&bookingModel.BookingRequest{}).
		Where("hospital_id = ? AND created_at BETWEEN ? AND ?", hospitalID, dayStart, dayEnd).
		Count(&totalToday).Error
	if err != nil {
		logger.Error("Failed to compute dashboard stats", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while computing stats.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Dashboard stats retrieved successfully.",
		Status:  fiber.StatusOK,
		Data: fiber.Map{
			"date":           dayStart.Format("2006-01-02"),
			"total_requests": totalToday,
			"by_status":      counts,
		},
	})
}
