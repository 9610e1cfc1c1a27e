package otp

import (
	"regexp"
	"testing"
)

func TestGenerateOTPFormat(t *testing.T) {
	sixDigits := regexp.MustCompile(`^\d{6}$`)

	// Leading zeros must survive: the code is text, not a number.
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP returned error: %v", err)
		}
		if !sixDigits.MatchString(code) {
			t.Fatalf("GenerateOTP() = %q, want exactly 6 digits", code)
		}
	}
}

func TestGenerateOTPVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP returned error: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("GenerateOTP produced the same code 50 times")
	}
}
