package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen    = 100
	maxEmailLen   = 255
	maxMessageLen = 1000
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

	// Kuwaiti numbers: mobiles start with 5, 6 or 9, landlines with 2,
	// each eight digits total, with an optional +965 / 00965 country code.
	// Anything else is accepted only in full international form.
	kuwaitPhonePattern = regexp.MustCompile(`^(\+965|00965)?[2569]\d{7}$`)
	intlPhonePattern   = regexp.MustCompile(`^\+\d{10,15}$`)
)

// Validate checks a raw submission against every field rule. All rules run
// and all violations are reported; callers get the complete picture in one
// pass instead of fixing errors one at a time.
func Validate(req SubmissionRequest) ValidationResult {
	var errs []string

	// Limits are in characters, not bytes: Arabic input is the common case
	// here and runs two bytes per letter in UTF-8.
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		errs = append(errs, "name is required")
	case utf8.RuneCountInString(name) < 2:
		errs = append(errs, "name must be at least 2 characters")
	case utf8.RuneCountInString(name) > maxNameLen:
		errs = append(errs, fmt.Sprintf("name must be at most %d characters", maxNameLen))
	}

	email := strings.TrimSpace(req.Email)
	switch {
	case email == "":
		errs = append(errs, "email is required")
	case utf8.RuneCountInString(email) > maxEmailLen:
		errs = append(errs, fmt.Sprintf("email must be at most %d characters", maxEmailLen))
	case !emailPattern.MatchString(email):
		errs = append(errs, "email is not a valid address")
	}

	phone := stripPhoneSeparators(req.Phone)
	switch {
	case phone == "":
		errs = append(errs, "phone is required")
	case !kuwaitPhonePattern.MatchString(phone) && !intlPhonePattern.MatchString(phone):
		errs = append(errs, "phone must be a Kuwaiti number or international format (+ followed by 10-15 digits)")
	}

	service := strings.TrimSpace(req.Service)
	switch {
	case service == "":
		errs = append(errs, "service is required")
	case !validService(service):
		errs = append(errs, fmt.Sprintf("service must be one of: %s", strings.Join(Services, ", ")))
	}

	if utf8.RuneCountInString(req.Message) > maxMessageLen {
		errs = append(errs, fmt.Sprintf("message must be at most %d characters", maxMessageLen))
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func stripPhoneSeparators(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
