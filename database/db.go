package database

import (
	"fmt"
	"os"

	"lifeline-backend/logger"
	adminModel "lifeline-backend/models/admin"
	ambulanceModel "lifeline-backend/models/ambulance"
	bookingModel "lifeline-backend/models/booking"
	"lifeline-backend/models/citystate"
	connectionModel "lifeline-backend/models/connection"
	driverModel "lifeline-backend/models/driver"
	hospitalModel "lifeline-backend/models/hospital"
	logModel "lifeline-backend/models/log"
	otpModel "lifeline-backend/models/otp"
	schedulerModel "lifeline-backend/models/scheduler"
	userModel "lifeline-backend/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency stages.
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&citystate.CityState{},
		&userModel.User{},
		&adminModel.Admin{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Geo-located parties and their vehicles
	stage2Models := []interface{}{
		&hospitalModel.Hospital{},
		&driverModel.Driver{},
		&ambulanceModel.Ambulance{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Connections and the booking lifecycle
	stage3Models := []interface{}{
		&connectionModel.ConnectRequest{},
		&bookingModel.BookingRequest{},
		&bookingModel.Booking{},
		&otpModel.OTP{},
	}

	for _, model := range stage3Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 4: Remaining models
	remainingModels := []interface{}{
		&schedulerModel.DeferredAction{},
		&logModel.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes and uniqueness guarantees the
// struct tags cannot express.
func createIndexes() error {
	// One pending connection request per (driver, hospital) pair. The index
	// is the authority; the application-level check only improves the error
	// message.
	if err := DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_connect_requests_pending_pair
		ON connect_requests(driver_id, hospital_id) WHERE status = 'pending'`).Error; err != nil {
		return fmt.Errorf("failed to create pending connection index: %w", err)
	}

	// Booking request lookups
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_booking_requests_user_status ON booking_requests(user_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create booking request user index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_booking_requests_hospital_status ON booking_requests(hospital_id, status)").Error; err != nil {
		return fmt.Errorf("failed to create booking request hospital index: %w", err)
	}

	// Coarse geo prefilter scans
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_hospitals_lat_lon ON hospitals(latitude, longitude)").Error; err != nil {
		return fmt.Errorf("failed to create hospital coordinates index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_drivers_lat_lon ON drivers(latitude, longitude)").Error; err != nil {
		return fmt.Errorf("failed to create driver coordinates index: %w", err)
	}

	// Busy-driver guard scans the snapshot column
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)").Error; err != nil {
		return fmt.Errorf("failed to create booking status index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}
