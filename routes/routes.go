package routes

import (
	"os"

	"lifeline-backend/constants"
	adminController "lifeline-backend/controllers/admin"
	ambulanceController "lifeline-backend/controllers/ambulance"
	authController "lifeline-backend/controllers/auth"
	bookingController "lifeline-backend/controllers/booking"
	connectionController "lifeline-backend/controllers/connection"
	driverController "lifeline-backend/controllers/driver"
	hospitalController "lifeline-backend/controllers/hospital"
	userController "lifeline-backend/controllers/user"
	"lifeline-backend/httpServices/mailer"
	"lifeline-backend/logger"
	"lifeline-backend/middleware"
	addressService "lifeline-backend/services/address"
	bookingService "lifeline-backend/services/booking"
	connectionService "lifeline-backend/services/connection"
	geoService "lifeline-backend/services/geo"
	"lifeline-backend/services/notification"
	otpService "lifeline-backend/services/otp"
	schedulerService "lifeline-backend/services/scheduler"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires every service, controller and route group. The returned
// scheduler is already restored and armed; the caller owns its shutdown.
func SetupRoutes(app *fiber.App, db *gorm.DB) *schedulerService.Scheduler {
	asyncLogger := logger.NewAsyncLogger(db)
	mailClient := mailer.NewClient(os.Getenv("MAILER_BASE_URL"))
	notifier := notification.NewEmailNotifier(mailClient)

	cityStates := addressService.NewGormStore(db)
	geo := geoService.NewService(geoService.NewGormRepository(db))
	connections := connectionService.NewService(connectionService.NewGormRepository(db))
	otp := otpService.NewOTPService(db)

	sched := schedulerService.New(schedulerService.NewGormStore(db))
	engine := bookingService.NewEngine(
		bookingService.NewGormRequestRepository(db),
		bookingService.NewGormBookingRepository(db),
		bookingService.NewGormHospitalRepository(db),
		bookingService.NewGormUserRepository(db),
		cityStates,
		sched,
		notifier,
	)
	sched.OnFire(engine.AutoRejectBooking)
	if err := sched.Restore(); err != nil {
		logger.Error("Failed to restore deferred actions", err)
	}

	auth := authController.NewAuthController(db, cityStates, asyncLogger)
	users := userController.NewUserController(db)
	hospitals := hospitalController.NewHospitalController(db, geo, cityStates)
	drivers := driverController.NewDriverController(db, geo, cityStates)
	admins := adminController.NewAdminController(db)
	ambulances := ambulanceController.NewAmbulanceController(db)
	bookings := bookingController.NewBookingController(engine, otp, asyncLogger)
	connects := connectionController.NewConnectionController(connections, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "lifeline-backend", "status": "ok"})
	})

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/auth/register/:role", auth.Register)
	api.Post("/auth/login/:role", auth.Login)
	api.Get("/hospitals", hospitals.List)
	api.Get("/hospitals/:id", hospitals.Get)

	/*=============================================================================
	| User Routes
	===============================================================================*/
	userGroup := api.Group("/user").Use(middleware.RequireRoles(constants.RoleUser))
	userGroup.Get("/profile", users.GetProfile)
	userGroup.Put("/profile", users.UpdateProfile)
	userGroup.Delete("/profile", users.DeleteAccount)
	userGroup.Post("/order-request", bookings.CreateOrderRequest)
	userGroup.Post("/bookings/:id/verify-otp", bookings.VerifyOTP)

	/*=============================================================================
	| Hospital Routes
	===============================================================================*/
	hospitalGroup := api.Group("/hospital").Use(middleware.RequireRoles(constants.RoleHospital))
	hospitalGroup.Put("/profile", hospitals.UpdateProfile)
	hospitalGroup.Delete("/profile", hospitals.DeleteAccount)
	hospitalGroup.Get("/stats", hospitals.Stats)
	hospitalGroup.Get("/nearby-drivers", hospitals.NearbyDrivers)
	hospitalGroup.Post("/booking-requests/:id/respond", bookings.RespondToBooking)
	hospitalGroup.Post("/booking-requests/:id/assign", bookings.AssignBookingDetails)
	hospitalGroup.Post("/ambulances", ambulances.Create)
	hospitalGroup.Get("/ambulances", ambulances.List)
	hospitalGroup.Put("/ambulances/:id/status", ambulances.UpdateStatus)
	hospitalGroup.Delete("/ambulances/:id", ambulances.Delete)

	/*=============================================================================
	| Driver Routes
	===============================================================================*/
	driverGroup := api.Group("/driver").Use(middleware.RequireRoles(constants.RoleDriver))
	driverGroup.Get("/profile", drivers.GetProfile)
	driverGroup.Put("/profile", drivers.UpdateProfile)
	driverGroup.Delete("/profile", drivers.DeleteAccount)
	driverGroup.Put("/status", drivers.UpdateStatus)
	driverGroup.Get("/nearby-hospitals", drivers.NearbyHospitals)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	adminGroup := api.Group("/admin").Use(middleware.RequireRoles(constants.RoleAdmin))
	adminGroup.Get("/users", admins.ListUsers)
	adminGroup.Get("/drivers", admins.ListDrivers)

	/*=============================================================================
	| Shared Routes (role decided per handler)
	===============================================================================*/
	bookingGroup := api.Group("/booking").Use(middleware.RequireRoles(
		constants.RoleUser, constants.RoleHospital,
	))
	bookingGroup.Get("/order-requests", bookings.GetOrderRequests)

	connectionGroup := api.Group("/connections").Use(middleware.RequireRoles(
		constants.RoleDriver, constants.RoleHospital,
	))
	connectionGroup.Post("/request", connects.Request)
	connectionGroup.Get("/pending", connects.ListPending)
	connectionGroup.Post("/:id/respond", connects.Respond)
	connectionGroup.Delete("/remove", connects.Remove)

	return sched
}
