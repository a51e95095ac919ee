package services

import (
	"context"
	"errors"
	"fmt"
	"storefront/models"
	"storefront/utils"
	"strings"
)

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id int) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	UpdateProfile(ctx context.Context, account *models.Account) error
}

// AccountDirectory is what checkout needs from user management. NewAccount
// only checks and builds the account; checkout stores it in its own
// transaction.
type AccountDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	NewAccount(ctx context.Context, profile models.Profile, password string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	SignIn(account *models.Account) (string, error)
}

type AccountService struct {
	users  AccountRepository
	tokens *utils.TokenManager
}

func NewAccountService(users AccountRepository, tokens *utils.TokenManager) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

// FindByEmail returns nil without an error when nobody uses the address.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	account, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, nil
	}
	return account, err
}

func (s *AccountService) FindByID(ctx context.Context, id int) (*models.Account, error) {
	return s.users.FindByID(ctx, id)
}

// EmailTakenError is the directory rejection for an address already in use.
func EmailTakenError(email string) *DirectoryError {
	return &DirectoryError{Reasons: []string{fmt.Sprintf("Email '%s' is already taken.", email)}}
}

// NewAccount applies the e-mail and password rules and returns an unsaved
// customer account with a hashed password. Rejections are returned as a
// *DirectoryError listing every reason.
func (s *AccountService) NewAccount(ctx context.Context, profile models.Profile, password string) (*models.Account, error) {
	email := strings.TrimSpace(profile.Email)
	reasons := []string{}
	if validate.Var(email, "required,email") != nil {
		reasons = append(reasons, fmt.Sprintf("Email '%s' is invalid.", email))
	}
	reasons = append(reasons, utils.PasswordPolicyViolations(password)...)
	if len(reasons) > 0 {
		return nil, &DirectoryError{Reasons: reasons}
	}

	existing, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, EmailTakenError(email)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Email:    email,
		Password: hashed,
		Role:     models.RoleCustomer,
	}
	account.ApplyProfile(profile)
	return account, nil
}

// Create registers and stores a customer account.
func (s *AccountService) Create(ctx context.Context, profile models.Profile, password string) (*models.Account, error) {
	account, err := s.NewAccount(ctx, profile, password)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, EmailTakenError(account.Email)
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) Update(ctx context.Context, account *models.Account) error {
	if err := s.users.UpdateProfile(ctx, account); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return &DirectoryError{Reasons: []string{"Account no longer exists."}}
		}
		return err
	}
	return nil
}

func (s *AccountService) SignIn(account *models.Account) (string, error) {
	return s.tokens.GenerateToken(account.ID, account.Email, account.Role)
}

func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	account, err := s.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidLogin
	}

	ok, err := utils.VerifyPassword(account.Password, req.Password)
	if err != nil || !ok {
		return nil, ErrInvalidLogin
	}

	token, err := s.SignIn(account)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, Account: *account}, nil
}
