package models

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type CartItemRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

type ContactForm struct {
	FullName   string `json:"full_name" form:"full_name"`
	Email      string `json:"email" form:"email"`
	Phone      string `json:"phone" form:"phone"`
	Street     string `json:"street" form:"street"`
	PostalCode string `json:"postal_code" form:"postal_code"`
	City       string `json:"city" form:"city"`
}

func (f ContactForm) Profile() Profile {
	return Profile{
		Email:      f.Email,
		FullName:   f.FullName,
		Phone:      f.Phone,
		Street:     f.Street,
		PostalCode: f.PostalCode,
		City:       f.City,
	}
}

type CheckoutRequest struct {
	ContactForm
	AcceptTerms     bool   `json:"accept_terms" form:"accept_terms"`
	CreateAccount   bool   `json:"create_account" form:"create_account"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type CartView struct {
	Lines         []CartLine   `json:"lines"`
	Total         string       `json:"total"`
	Warnings      []string     `json:"warnings,omitempty"`
	Checkout      *ContactForm `json:"checkout,omitempty"`
	EmailReadOnly bool         `json:"email_read_only"`
}

func NewCartView(cart *Cart, warnings []string) CartView {
	return CartView{
		Lines:    cart.Lines,
		Total:    cart.Total().StringFixed(2),
		Warnings: warnings,
	}
}

type CheckoutResponse struct {
	PublicID string `json:"public_id"`
	Total    string `json:"total"`
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
}

type RegisterRequest struct {
	ContactForm
	Password        string `json:"password" form:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" binding:"required"`
}

type ProfileRequest struct {
	FullName   string `json:"full_name" form:"full_name"`
	Phone      string `json:"phone" form:"phone"`
	Street     string `json:"street" form:"street"`
	PostalCode string `json:"postal_code" form:"postal_code"`
	City       string `json:"city" form:"city"`
}
