package domain

import (
	"regexp"
	"strings"
	"time"
)

const AdultAge = 18

type CustomerProfile struct {
	Cedula    string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Email     string
}

func (c CustomerProfile) Complete() bool {
	return strings.TrimSpace(c.Cedula) != ""
}

// A NewCustomer is the sign-up form of a customer.
type NewCustomer struct {
	FirstName string
	LastName  string
	BirthDate time.Time
	Email     string
	Sex       string
	Address   string
	Password  string
	Cedula    string
	Phone     string
	Sector    string
}

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate reports every violation of the form at once.
func (c NewCustomer) Validate(confirmPassword string, now time.Time) error {
	var errs ValidationErrors

	if strings.TrimSpace(c.FirstName) == "" {
		errs = append(errs, FieldError{"first_name", "first name is required"})
	}
	if strings.TrimSpace(c.LastName) == "" {
		errs = append(errs, FieldError{"last_name", "last name is required"})
	}
	if err := ValidateCedula(c.Cedula); err != nil {
		errs = append(errs, err)
	}
	if err := validateAge(c.BirthDate, now); err != nil {
		errs = append(errs, err)
	}
	if !ValidEmail(c.Email) {
		errs = append(errs, FieldError{
			"email", "invalid email format (e.g. user@domain.com)",
		})
	}
	if c.Password == "" {
		errs = append(errs, FieldError{"password", "password is required"})
	} else if c.Password != confirmPassword {
		errs = append(errs, FieldError{"password", "passwords do not match"})
	}

	return errs.OrNil()
}

func ValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// ValidateCedula checks the length and the modulo 10 check digit of an
// ecuadorian identity number.
func ValidateCedula(cedula string) error {
	if len(cedula) != 10 {
		return FieldError{"cedula", "cedula must have 10 digits"}
	}
	for _, r := range cedula {
		if r < '0' || r > '9' {
			return FieldError{"cedula", "cedula must have 10 digits"}
		}
	}

	coefficients := [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}
	sum := 0
	for i, coef := range coefficients {
		d := int(cedula[i]-'0') * coef
		if d >= 10 {
			d -= 9
		}
		sum += d
	}

	verifier := 0
	if sum%10 != 0 {
		verifier = 10 - sum%10
	}
	if verifier != int(cedula[9]-'0') {
		return FieldError{"cedula", "invalid cedula"}
	}
	return nil
}

func validateAge(birth, now time.Time) error {
	if birth.IsZero() {
		return FieldError{"birth_date", "birth date is required"}
	}
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < AdultAge {
		return FieldError{"birth_date", "you must be at least 18 years old"}
	}
	return nil
}
