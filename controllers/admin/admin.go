package admin

import (
	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	driverModel "lifeline-backend/models/driver"
	userModel "lifeline-backend/models/user"
	"lifeline-backend/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	db *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// ListUsers returns every registered patient account.
func (h *AdminController) ListUsers(c *fiber.Ctx) error {
	var users []userModel.User
	if err := h.db.Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while fetching users.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Users retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    users,
	})
}

// ListDrivers returns every registered driver with their connected hospitals.
func (h *AdminController) ListDrivers(c *fiber.Ctx) error {
	var drivers []driverModel.Driver
	if err := h.db.Preload("CityState").Find(&drivers).Error; err != nil {
		logger.Error("Failed to list drivers", err)
		return apperr.Respond(c, apperr.Dependency("An error occurred while fetching drivers.", err))
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Drivers retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    drivers,
	})
}
