// Package setup validates the process environment before the server wires
// anything up, so a missing secret fails loudly at boot instead of on the
// first request that needs it.
package setup

import (
	"fmt"
	"log"
	"os"
	"strings"
)

var requiredEnv = []string{
	"DATABASE_URL",
	"API_KEY",
	"JWT_TOKEN",
}

var mailEnv = []string{
	"EMAIL_USER",
	"EMAIL_PASS",
}

// CheckEnv verifies every required environment variable is present. Mail
// credentials are only required when email sending is not skipped.
func CheckEnv() error {
	log.Println("Checking environment configuration...")

	required := requiredEnv
	if os.Getenv("SKIP_EMAIL_SEND") != "true" {
		required = append(append([]string{}, requiredEnv...), mailEnv...)
	} else {
		log.Println("Email sending disabled (SKIP_EMAIL_SEND=true)")
	}

	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		} else {
			log.Printf("✓ %s configured", key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
