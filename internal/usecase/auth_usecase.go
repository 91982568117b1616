package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/scholar-feed/backend/internal/config"
	"github.com/scholar-feed/backend/internal/domain"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	ErrEmailExists        = fmt.Errorf("%w: email already registered", domain.ErrValidation)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
)

type AuthUsecase struct {
	userRepo domain.UserRepository
	cfg      *config.JWTConfig
	validate *validator.Validate
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"max=200"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Expertise string `json:"expertise" validate:"max=200"`
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

func NewAuthUsecase(userRepo domain.UserRepository, cfg *config.JWTConfig) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register creates a user with an empty interest set and returns a signed
// access token.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Expertise = strings.TrimSpace(in.Expertise)

	if err := u.validate.Struct(in); err != nil {
		return "", validationError(err)
	}

	existing, err := u.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return "", domain.NewStoreError("lookup user", err)
	}
	if existing != nil {
		return "", ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Name:         in.Name,
		Expertise:    in.Expertise,
		Interests:    []string{},
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, domain.ErrAlreadyExists) {
			return "", ErrEmailExists
		}
		return "", domain.NewStoreError("create user", err)
	}

	return u.generateToken(user)
}

func (u *AuthUsecase) SignIn(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", domain.NewValidationError("email", "email and password are required")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", domain.NewStoreError("lookup user", err)
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return u.generateToken(user)
}

func (u *AuthUsecase) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(u.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (u *AuthUsecase) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.cfg.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(u.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validationError reports the first failing field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("input", err.Error())
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, field+" is required")
	case "email":
		return domain.NewValidationError(field, "invalid email address")
	case "min":
		return domain.NewValidationError(field, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
	case "max":
		return domain.NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return domain.NewValidationError(field, "invalid value")
	}
}
