package services

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"subliBack/internal/models"
	"subliBack/internal/repositories"
	"subliBack/utils"
)

const (
	accessTokenTTL  = 20 * time.Hour
	refreshTokenTTL = 60 * 24 * time.Hour
	resetCodeTTL    = 15 * time.Minute
)

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
	Notifier     Notifier
	ErrorLog     *log.Logger
}

// SignUp registers a renter or lister account. The admin role is never
// self-assignable; it is granted only through the admin role-change action.
func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return models.User{}, models.ErrValidation
	}
	if req.Role != models.RoleRenter && req.Role != models.RoleLister {
		return models.User{}, models.ErrInvalidRole
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:      req.Name,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
		Role:      req.Role,
		CreatedAt: time.Now(),
	}

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.Password = ""
	return created, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	accessToken, err := s.TokenManager.NewAccessToken(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, err
	}

	refreshToken, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	session := models.Session{
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	}
	if err := s.UserRepo.SetSession(ctx, user.ID, session); err != nil {
		return models.Tokens{}, err
	}

	return models.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *UserService) LogOut(ctx context.Context, userID int) error {
	return s.UserRepo.ClearSession(ctx, userID)
}

func (s *UserService) GetUsers(ctx context.Context) ([]models.User, error) {
	return s.UserRepo.GetAllUsers(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	return user, nil
}

// UpdateRole is the admin-only role change.
func (s *UserService) UpdateRole(ctx context.Context, id int, role string) error {
	if !models.IsValidRole(role) {
		return models.ErrInvalidRole
	}
	return s.UserRepo.UpdateRole(ctx, id, role)
}

// RequestPasswordReset stores a short-lived code and emails it. Unlike
// moderation notifications, the email here is the whole point, so a send
// failure is returned to the caller.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	code, err := utils.NewResetCode()
	if err != nil {
		return err
	}
	if err := s.UserRepo.SetResetCode(ctx, user.ID, code, time.Now().Add(resetCodeTTL)); err != nil {
		return err
	}

	body := "Your password reset code is: " + code + "\n\nIt expires in 15 minutes."
	return s.Notifier.Send(ctx, user.Email, "Password reset code", body)
}

func (s *UserService) VerifyResetCode(ctx context.Context, email, code string) error {
	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	stored, expiresAt, err := s.UserRepo.GetResetCode(ctx, user.ID)
	if err != nil {
		return err
	}
	if stored != code || time.Now().After(expiresAt) {
		return models.ErrInvalidResetCode
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if newPassword == "" {
		return models.ErrValidation
	}
	if err := s.VerifyResetCode(ctx, email, code); err != nil {
		return err
	}

	user, err := s.UserRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.UserRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}
	if err := s.UserRepo.ClearResetCode(ctx, user.ID); err != nil {
		return err
	}
	// Old refresh tokens die with the old password.
	return s.UserRepo.ClearSession(ctx, user.ID)
}
