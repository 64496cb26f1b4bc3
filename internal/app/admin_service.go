package app

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"path2prevention/internal/pkg/jwtutil"
)

var (
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrAdminDisabled     = errors.New("admin login is not configured")
)

const AdminUsername = "admin"

// AdminService issues tokens for the maintenance endpoints. There is a single
// admin account whose bcrypt hash comes from configuration.
type AdminService struct {
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
}

type LoginInput struct {
	Username string
	Password string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

func NewAdminService(passwordHash, jwtSecret string, jwtExpiration time.Duration) *AdminService {
	return &AdminService{
		passwordHash:  strings.TrimSpace(passwordHash),
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Enabled reports whether maintenance routes are protected.
func (s *AdminService) Enabled() bool {
	return s.passwordHash != "" && s.jwtSecret != ""
}

func (s *AdminService) Login(input LoginInput) (*LoginResult, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if username != AdminUsername {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, username, jwtutil.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: time.Now().Add(s.jwtExpiration)}, nil
}
