package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), fiber.StatusBadRequest},
		{NotFound("missing"), fiber.StatusNotFound},
		{Forbidden("nope"), fiber.StatusForbidden},
		// Conflicts surface as 400s, matching the rest of the API's
		// caller-error envelope.
		{Conflict("already processed"), fiber.StatusBadRequest},
		{Dependency("db down", errors.New("conn refused")), fiber.StatusInternalServerError},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Errorf("StatusOf(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMessageOfHidesInternalDetail(t *testing.T) {
	err := Dependency("An error occurred while saving.", errors.New("pq: connection refused"))
	if got := MessageOf(err); got != "An error occurred while saving." {
		t.Errorf("MessageOf leaked internals: %q", got)
	}
	if got := MessageOf(errors.New("plain")); got != "An unexpected error occurred." {
		t.Errorf("MessageOf(plain) = %q", got)
	}
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	inner := NotFound("Booking request not found.")
	wrapped := fmt.Errorf("handler: %w", inner)

	ae, ok := As(wrapped)
	if !ok {
		t.Fatal("As failed to find the domain error through wrapping")
	}
	if ae.Kind != KindNotFound {
		t.Errorf("unwrapped kind = %v, want not-found", ae.Kind)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Dependency("save failed", errors.New("disk full"))
	if err.Error() != "save failed: disk full" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Error("Unwrap does not expose the cause")
	}
}
