package services

import (
	"regexp"
	"storefront/models"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate         = validator.New()
	postalCodeFormat = regexp.MustCompile(`^\d{2}-\d{3}$`)
)

// digitsOnly keeps ASCII digits only, so the result can be sliced by byte.
func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// NormalizePhone keeps only the digits.
func NormalizePhone(phone string) string {
	return digitsOnly(phone)
}

// NormalizePostalCode rewrites five digits as NN-NNN and otherwise leaves the
// bare digits, which then fail validation.
func NormalizePostalCode(code string) string {
	digits := digitsOnly(code)
	if len(digits) == 5 {
		return digits[:2] + "-" + digits[2:]
	}
	return digits
}

// NormalizeCheckout trims every text field and canonicalizes phone and postal
// code in place.
func NormalizeCheckout(req *models.CheckoutRequest) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.Street = strings.TrimSpace(req.Street)
	req.City = strings.TrimSpace(req.City)
	req.Phone = NormalizePhone(req.Phone)
	req.PostalCode = NormalizePostalCode(req.PostalCode)
}

// ValidateCheckout checks an already normalized request. Errors come out in
// form order: full name, email, phone, street, postal code, city, terms,
// then the account fields when an account is being created.
func ValidateCheckout(req models.CheckoutRequest, creatingAccount bool) []models.FieldError {
	errs := []models.FieldError{}
	add := func(field, msg string) {
		errs = append(errs, models.FieldError{Field: field, Message: msg})
	}

	if req.FullName == "" {
		add("full_name", "Full name is required.")
	}

	if req.Email == "" {
		add("email", "Email is required.")
	} else if validate.Var(req.Email, "email") != nil {
		add("email", "Enter a valid email address.")
	}

	if req.Phone == "" {
		add("phone", "Phone number is required.")
	} else if validate.Var(req.Phone, "numeric,len=9") != nil {
		add("phone", "Phone number must have 9 digits.")
	}

	if req.Street == "" {
		add("street", "Street is required.")
	}

	if req.PostalCode == "" {
		add("postal_code", "Postal code is required.")
	} else if !postalCodeFormat.MatchString(req.PostalCode) {
		add("postal_code", "Postal code must look like 00-000.")
	}

	if req.City == "" {
		add("city", "City is required.")
	}

	if !req.AcceptTerms {
		add("accept_terms", "Accept the terms to place the order.")
	}

	if creatingAccount {
		if strings.TrimSpace(req.Password) == "" {
			add("password", "Enter a password to create an account.")
		}
		if strings.TrimSpace(req.ConfirmPassword) == "" || req.Password != req.ConfirmPassword {
			add("confirm_password", "Passwords must match.")
		}
	}

	return errs
}
