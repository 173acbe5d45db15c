package utils

import "regexp"

var emailRegex = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
