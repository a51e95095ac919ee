package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Account is a directory entry: the users row joined with its profile.
type Account struct {
	ID         int       `json:"id"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	Role       string    `json:"role"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	Street     string    `json:"street"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Profile struct {
	Email      string
	FullName   string
	Phone      string
	Street     string
	PostalCode string
	City       string
}

// ApplyProfile copies the contact fields of p onto the account and reports
// whether anything changed. The e-mail is never touched.
func (a *Account) ApplyProfile(p Profile) bool {
	changed := false
	set := func(dst *string, v string) {
		if *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&a.FullName, p.FullName)
	set(&a.Phone, p.Phone)
	set(&a.Street, p.Street)
	set(&a.PostalCode, p.PostalCode)
	set(&a.City, p.City)
	return changed
}

func (a *Account) Profile() Profile {
	return Profile{
		Email:      a.Email,
		FullName:   a.FullName,
		Phone:      a.Phone,
		Street:     a.Street,
		PostalCode: a.PostalCode,
		City:       a.City,
	}
}
