package user

import (
	"fmt"

	"lifeline-backend/apperr"
	"lifeline-backend/logger"
	userModel "lifeline-backend/models/user"
	"lifeline-backend/types"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// GetProfile returns the authenticated user's own record.
func (h *UserController) GetProfile(c *fiber.Ctx) error {
	userID, _ := utils.PartyID(c)

	var u userModel.User
	if err := h.db.First(&u, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Message: "User not found.",
				Status:  fiber.StatusNotFound,
			})
		}
		logger.Error("Failed to fetch user profile", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "An error occurred while fetching the profile.",
			Status:  fiber.StatusInternalServerError,
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile retrieved successfully.",
		Status:  fiber.StatusOK,
		Data:    u,
	})
}

// UpdateProfile changes the user's own contact details. Only fields present
// in the body are touched.
func (h *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := utils.PartyID(c)

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
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
	if req.Password != "" {
		if len(req.Password) < 6 {
			return apperr.Respond(c, apperr.Validation("Password must be at least 6 characters long."))
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Respond(c, apperr.Dependency("An error occurred while updating the profile.", err))
		}
		updates["password"] = string(hashed)
	}
	if len(updates) == 0 {
		return apperr.Respond(c, apperr.Validation("Nothing to update."))
	}

	if err := h.db.Model(&userModel.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		logger.Error("Failed to update user profile", err)
		return apperr.Respond(c, apperr.Conflict("A user with this name, email or phone already exists."))
	}

	logger.Success(fmt.Sprintf("User %d profile updated", userID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Profile updated successfully.",
		Status:  fiber.StatusOK,
	})
}

// DeleteAccount removes the user's own record. Booking history rows keep
// their user_id and are left in place.
func (h *UserController) DeleteAccount(c *fiber.Ctx) error {
	userID, _ := utils.PartyID(c)

	res := h.db.Delete(&userModel.User{}, userID)
	if res.Error != nil {
		logger.Error("Failed to delete user account", res.Error)
		return apperr.Respond(c, apperr.Dependency("An error occurred while deleting the account.", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Respond(c, apperr.NotFound("User not found."))
	}

	logger.Success(fmt.Sprintf("User %d account deleted", userID))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Account deleted successfully.",
		Status:  fiber.StatusOK,
	})
}
