package utils

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"lifeline-backend/services/authz"
	"lifeline-backend/types"
	typesAuth "lifeline-backend/types/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/now"
)

// GenerateTokens issues an access/refresh token pair for a party.
func GenerateTokens(partyID uint, role string) (typesAuth.TokenPair, error) {
	sub := strconv.FormatUint(uint64(partyID), 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"role":  role,
		"fresh": true,
		"exp":   time.Now().Add(1 * time.Hour).Unix(),
	})
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(30 * 24 * time.Hour).Unix(),
	})

	secret := []byte(os.Getenv("JWT_SECRET"))
	accessToken, err := access.SignedString(secret)
	if err != nil {
		return typesAuth.TokenPair{}, err
	}
	refreshToken, err := refresh.SignedString(secret)
	if err != nil {
		return typesAuth.TokenPair{}, err
	}

	return typesAuth.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// PartyID returns the authenticated party id set by the auth middleware.
func PartyID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("party_id").(uint)
	return id, ok
}

// Role returns the authenticated role set by the auth middleware.
func Role(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("role").(string)
	return role, ok
}

// CallerIdentity bundles the authenticated party id and role for service
// capability checks.
func CallerIdentity(c *fiber.Ctx) authz.Identity {
	id, _ := PartyID(c)
	role, _ := Role(c)
	return authz.Identity{PartyID: id, Role: role}
}

// TodayRange returns the [start, end) window of the current day, used by the
// hospital dashboard stats.
func TodayRange() (time.Time, time.Time) {
	n := now.With(time.Now())
	return n.BeginningOfDay(), n.EndOfDay()
}

var sensitiveBodyFields = []string{"password", "otp", "otp_code", "access_token", "refresh_token"}

// sanitizeRequestBody masks credential fields before a request body is
// persisted to the log table.
func sanitizeRequestBody(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return ""
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Non-JSON bodies are stored as-is.
		return string(append([]byte(nil), body...))
	}
	for _, field := range sensitiveBodyFields {
		if _, ok := parsed[field]; ok {
			parsed[field] = "[REDACTED]"
		}
	}
	sanitized, err := json.Marshal(parsed)
	if err != nil {
		return ""
	}
	return string(sanitized)
}

// CreateSanitizedLogEntry snapshots the request/response pair for async
// persistence. Everything is deep-copied because fiber reuses its buffers
// after the handler returns.
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}
