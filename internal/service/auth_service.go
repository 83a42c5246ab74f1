package service

import (
	"alcyxob/trainer-marketplace/internal/domain"
	"alcyxob/trainer-marketplace/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// RegisterInput carries a self-service registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role // defaults to student
}

// ProfileUpdate lists the editable profile fields. Empty strings are ignored.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Password  string
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (token string, user *domain.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Profile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*domain.User, error)
	SeedAdmin(ctx context.Context, email, password string) error
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
	logger   *zap.Logger
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.Named("auth"),
	}
}

// Register creates a user and signs them in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (string, *domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleStudent
	}
	if !in.Role.Valid() {
		return "", nil, validationError("invalid role %q", in.Role)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return "", nil, validationError("first name and last name are required")
	}
	if len(in.Password) < MinPasswordLength {
		return "", nil, validationError("password must be at least %d characters long", MinPasswordLength)
	}

	user, err := s.createUser(ctx, in.FirstName, in.LastName, in.Email, in.Password, in.Role)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("user registered", zap.String("userId", user.ID.Hex()), zap.String("role", string(user.Role)))
	return token, user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) Profile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile merges the non-empty fields of in. A new password is re-hashed.
func (s *authService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileUpdate) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	patch := domain.UserPatch{
		FirstName: domain.Truthy(&in.FirstName),
		LastName:  domain.Truthy(&in.LastName),
	}
	if in.Password != "" {
		if len(in.Password) < MinPasswordLength {
			return nil, validationError("password must be at least %d characters long", MinPasswordLength)
		}
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	updated := patch.Apply(*user)
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// SeedAdmin creates the bootstrap admin unless a user with that email exists.
func (s *authService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.Warn("seed admin email belongs to a non-admin user", zap.String("email", existing.Email))
		}
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	user, err := s.createUser(ctx, "Admin", "User", email, password, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("seeded admin user", zap.String("email", user.Email))
	return nil
}

// createUser checks email uniqueness, hashes the password and stores the user.
func (s *authService) createUser(ctx context.Context, firstName, lastName, email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, validationError("email is required")
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent insert; the unique index decides.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
