package auth

import (
	"fmt"
	"time"

	"lifeline-backend/apperr"
	"lifeline-backend/constants"
	"lifeline-backend/logger"
	adminModel "lifeline-backend/models/admin"
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"
	userModel "lifeline-backend/models/user"
	"lifeline-backend/services/address"
	"lifeline-backend/types"
	typesAuth "lifeline-backend/types/auth"
	"lifeline-backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	db             *gorm.DB
	cityStates     address.CityStateStore
	loggerInstance *logger.AsyncLogger
}

func NewAuthController(db *gorm.DB, cityStates address.CityStateStore, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{db: db, cityStates: cityStates, loggerInstance: asyncLogger}
}

// Register creates an account for the party type given in the :role path
// parameter (user, hospital or driver). Admin accounts come from the seeder
// only.
func (h *AuthController) Register(c *fiber.Ctx) error {
	role := c.Params("role")

	var req typesAuth.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "name, email, phone and password are required.",
			Status:  fiber.StatusBadRequest,
		})
	}
	if len(req.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Password must be at least 6 characters long.",
			Status:  fiber.StatusBadRequest,
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "An error occurred while creating the account.",
			Status:  fiber.StatusInternalServerError,
		})
	}

	var created interface{}
	switch role {
	case constants.RoleUser:
		newUser := userModel.User{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: string(hashed),
		}
		if err := h.db.Create(&newUser).Error; err != nil {
			return h.registerConflict(c, role, err)
		}
		created = newUser

	case constants.RoleHospital:
		if req.Address == nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Message: "Address is required for hospital registration.",
				Status:  fiber.StatusBadRequest,
			})
		}
		cs, addrErr := address.GetOrCreate(h.cityStates, *req.Address)
		if addrErr != nil {
			return apperr.Respond(c, addrErr)
		}
		newHospital := hospitalModel.Hospital{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Password:    string(hashed),
			Street:      req.Address.Street,
			Latitude:    req.Address.Latitude,
			Longitude:   req.Address.Longitude,
			CityStateID: cs.ID,
		}
		if err := h.db.Create(&newHospital).Error; err != nil {
			return h.registerConflict(c, role, err)
		}
		created = newHospital

	case constants.RoleDriver:
		if req.Address == nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
				Message: "Address is required for driver registration.",
				Status:  fiber.StatusBadRequest,
			})
		}
		cs, addrErr := address.GetOrCreate(h.cityStates, *req.Address)
		if addrErr != nil {
			return apperr.Respond(c, addrErr)
		}
		newDriver := driverModel.Driver{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Password:    string(hashed),
			Status:      driverModel.StatusAvailable,
			Street:      req.Address.Street,
			Latitude:    req.Address.Latitude,
			Longitude:   req.Address.Longitude,
			CityStateID: cs.ID,
		}
		if err := h.db.Create(&newDriver).Error; err != nil {
			return h.registerConflict(c, role, err)
		}
		created = newDriver

	default:
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "Invalid role. Use 'user', 'hospital' or 'driver'.",
			Status:  fiber.StatusBadRequest,
		})
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	currentTime := time.Now().Format("2006-01-02 03:04:05 PM")
	logger.Success(fmt.Sprintf("%s '%s' registered successfully at %s", role, req.Name, currentTime))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Message: fmt.Sprintf("%s registered successfully.", role),
		Status:  fiber.StatusCreated,
		Data:    created,
	})
}

// Login authenticates a party by name and issues a token pair.
func (h *AuthController) Login(c *fiber.Ctx) error {
	role := c.Params("role")

	var req typesAuth.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Error parsing request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: fmt.Sprintf("Error parsing request body: %v", err),
			Status:  fiber.StatusBadRequest,
		})
	}

	if req.Name == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Message: "name and password are required.",
			Status:  fiber.StatusBadRequest,
		})
	}

	partyID, hashedPassword, party, err := h.findByName(role, req.Name)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
				Message: "Invalid credentials.",
				Status:  fiber.StatusUnauthorized,
			})
		}
		logger.Error("Failed to look up account", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "An error occurred while logging in.",
			Status:  fiber.StatusInternalServerError,
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Message: "Invalid credentials.",
			Status:  fiber.StatusUnauthorized,
		})
	}

	tokens, err := utils.GenerateTokens(partyID, role)
	if err != nil {
		logger.Error("Failed to generate tokens", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Message: "An error occurred while logging in.",
			Status:  fiber.StatusInternalServerError,
		})
	}

	logEntry := utils.CreateSanitizedLogEntry(c)
	h.loggerInstance.Log(logEntry)

	currentTime := time.Now().Format("2006-01-02 03:04:05 PM")
	logger.Success(fmt.Sprintf("%s '%s' logged in successfully at %s", role, req.Name, currentTime))
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Message: "Login successful.",
		Status:  fiber.StatusOK,
		Token:   tokens.AccessToken,
		Data: fiber.Map{
			"refresh_token": tokens.RefreshToken,
			role:            party,
		},
	})
}

func (h *AuthController) findByName(role, name string) (uint, string, interface{}, error) {
	switch role {
	case constants.RoleUser:
		var u userModel.User
		if err := h.db.Where("name = ?", name).First(&u).Error; err != nil {
			return 0, "", nil, err
		}
		return u.ID, u.Password, u, nil
	case constants.RoleHospital:
		var hosp hospitalModel.Hospital
		if err := h.db.Preload("CityState").Where("name = ?", name).First(&hosp).Error; err != nil {
			return 0, "", nil, err
		}
		return hosp.ID, hosp.Password, hosp, nil
	case constants.RoleDriver:
		var d driverModel.Driver
		if err := h.db.Preload("CityState").Where("name = ?", name).First(&d).Error; err != nil {
			return 0, "", nil, err
		}
		return d.ID, d.Password, d, nil
	case constants.RoleAdmin:
		var a adminModel.Admin
		if err := h.db.Where("name = ?", name).First(&a).Error; err != nil {
			return 0, "", nil, err
		}
		return a.ID, a.Password, a, nil
	default:
		return 0, "", nil, gorm.ErrRecordNotFound
	}
}

func (h *AuthController) registerConflict(c *fiber.Ctx, role string, err error) error {
	logger.Error(fmt.Sprintf("Failed to create %s account", role), err)
	return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
		Message: fmt.Sprintf("A %s with this name, email or phone already exists.", role),
		Status:  fiber.StatusBadRequest,
	})
}
