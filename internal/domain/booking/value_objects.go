package booking

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength    = 200
	MaxPhoneLength   = 32
	MaxReasonLength  = 2000
	MaxNotesLength   = 2000
	minPhoneDigits   = 6
	phoneAllowedRune = "+-() "
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Customer struct {
	name  string
	email string
	phone string
}

func NewCustomer(name, email, phone string) (Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return Customer{}, ErrInvalidCustomerName
	}
	email = strings.TrimSpace(email)
	if !emailRegex.MatchString(email) {
		return Customer{}, ErrInvalidEmail
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !validPhone(phone) {
		return Customer{}, ErrInvalidPhone
	}
	return Customer{name: name, email: email, phone: phone}, nil
}

func validPhone(s string) bool {
	if len(s) > MaxPhoneLength {
		return false
	}
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(phoneAllowedRune, r):
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

func (c Customer) Name() string  { return c.name }
func (c Customer) Email() string { return c.email }
func (c Customer) Phone() string { return c.phone }
