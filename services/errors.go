package services

import (
	"errors"
	"storefront/models"
	"storefront/repositories"
	"strings"
)

var (
	ErrStockConflict    = repositories.ErrStockConflict
	ErrProductNotFound  = repositories.ErrProductNotFound
	ErrInvalidLogin     = errors.New("invalid email or password")
	ErrAccountNotFound  = repositories.ErrAccountNotFound
	ErrOrderNotFound    = repositories.ErrOrderNotFound
	ErrDuplicateAccount = repositories.ErrDuplicateEmail
)

// ValidationError carries field-scoped messages in a deterministic order.
// Messages not tied to a single input use an empty Field.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			msgs = append(msgs, f.Message)
			continue
		}
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// StaleCartError means the cart was corrected against the catalog and the
// buyer has to look at it again before placing the order.
type StaleCartError struct {
	Warnings []string
	Cart     *models.Cart
}

func (e *StaleCartError) Error() string {
	return "cart changed: " + strings.Join(e.Warnings, " ")
}

// DirectoryError reports why the account directory refused a write.
type DirectoryError struct {
	Reasons []string
}

func (e *DirectoryError) Error() string {
	return "account directory: " + strings.Join(e.Reasons, " ")
}
