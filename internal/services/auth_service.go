package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidCredentials   = errors.New("incorrect email/username or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
	ErrFailedToCreateTeam   = errors.New("failed to create personal team")
	ErrFailedToAddMember    = errors.New("failed to add user to personal team")
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// AuthService handles signup, login, and token refresh.
type AuthService struct {
	userRepo     repository.UserRepository
	tokens       *auth.TokenService
	personalTeam bool
}

// NewAuthService creates a new AuthService. When personalTeam is set,
// signup provisions a team owned by the new user.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenService, personalTeam bool) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		personalTeam: personalTeam,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Username string
	Password string
}

// Signup creates a new user with the member role. Global admins are only
// created by an existing admin changing a user's role afterwards.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	email := strings.TrimSpace(input.Email)
	username := strings.TrimSpace(input.Username)
	if email == "" || username == "" {
		return nil, fmt.Errorf("email and username are required")
	}

	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         models.UserRoleMember,
	}

	if !s.personalTeam {
		if err := s.userRepo.Create(user); err != nil {
			return nil, ErrFailedToCreateUser
		}
		return user, nil
	}

	team := &models.Team{
		Name:        fmt.Sprintf("%s's team", username),
		Description: fmt.Sprintf("Personal team for %s", username),
	}
	member := &models.TeamMember{
		Role:     models.TeamRoleLead,
		JoinedAt: time.Now(),
	}

	if err := s.userRepo.CreateWithPersonalTeam(user, team, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateUser):
			return nil, ErrFailedToCreateUser
		case errors.Is(err, repository.ErrCreateTeam):
			return nil, ErrFailedToCreateTeam
		case errors.Is(err, repository.ErrCreateTeamMember):
			return nil, ErrFailedToAddMember
		default:
			return nil, fmt.Errorf("failed to complete signup: %w", err)
		}
	}

	return user, nil
}

// LoginInput holds the credentials for authentication. Identifier matches
// either the email or the username.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login verifies credentials and issues an access/refresh token pair.
// Unknown identifier and wrong password are indistinguishable to the
// caller, so account existence does not leak through login.
func (s *AuthService) Login(input LoginInput) (*TokenPair, *models.User, error) {
	user, err := s.userRepo.FindByIdentifier(input.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}

	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. Claims
// are rebuilt from the current user record, so a role change takes effect
// on the next refresh.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.issuePair(user)
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func (s *AuthService) issuePair(user *models.User) (*TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.AccessTokenTTL() / time.Second),
	}, nil
}
