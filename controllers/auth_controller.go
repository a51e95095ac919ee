package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	accounts *services.AccountService
}

func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// Register godoc
// @Summary Register new customer
// @Description Create a customer account and sign it in
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response
// @Failure 422 {object} models.ValidationResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  []models.FieldError{{Field: "confirm_password", Message: "Passwords must match."}},
		})
		return
	}

	profile := req.Profile()
	profile.Phone = services.NormalizePhone(profile.Phone)
	profile.PostalCode = services.NormalizePostalCode(profile.PostalCode)

	account, err := ctrl.accounts.Create(c.Request.Context(), profile, req.Password)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	token, err := ctrl.accounts.SignIn(account)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Registration successful",
		Data:    models.LoginResponse{Token: token, Account: *account},
	})
}

// Login godoc
// @Summary User login
// @Description Login with email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request"})
		return
	}

	resp, err := ctrl.accounts.Login(c.Request.Context(), req)
	if errors.Is(err, services.ErrInvalidLogin) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    resp,
	})
}

// GetProfile godoc
// @Summary Get profile
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/profile [get]
func (ctrl *AuthController) GetProfile(c *gin.Context) {
	account, ok := ctrl.currentAccount(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile retrieved", Data: account})
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update the contact details used to prefill checkout
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ProfileRequest true "Profile"
// @Success 200 {object} models.Response
// @Router /auth/profile [patch]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	account, ok := ctrl.currentAccount(c)
	if !ok {
		return
	}

	var req models.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	account.ApplyProfile(models.Profile{
		FullName:   strings.TrimSpace(req.FullName),
		Phone:      services.NormalizePhone(req.Phone),
		Street:     strings.TrimSpace(req.Street),
		PostalCode: services.NormalizePostalCode(req.PostalCode),
		City:       strings.TrimSpace(req.City),
	})
	if err := ctrl.accounts.Update(c.Request.Context(), account); err != nil {
		respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Profile updated", Data: account})
}

func (ctrl *AuthController) currentAccount(c *gin.Context) (*models.Account, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return nil, false
	}
	account, err := ctrl.accounts.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, fmt.Errorf("load profile: %w", err), nil)
		return nil, false
	}
	return account, true
}
