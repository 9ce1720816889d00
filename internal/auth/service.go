package auth

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/QuoteSync/quotesync/internal/database"
	"github.com/QuoteSync/quotesync/internal/entities"
)

var ErrUsernameTaken = errors.New("username or email already registered")

// Service handles registration and login. Tokens are issued once at
// registration and returned again on login.
type Service struct {
	db         *database.Database
	bcryptCost int
}

func NewService(db *database.Database, bcryptCost int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &Service{db: db, bcryptCost: bcryptCost}
}

// Register creates a user and returns it with its API token populated.
func (s *Service) Register(username, email, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(username, email, hash)
	if err != nil {
		// Unique index violation on username or email.
		return nil, ErrUsernameTaken
	}
	return user, nil
}

// Login verifies credentials and returns the user's API token.
func (s *Service) Login(username, password string) (*entities.User, error) {
	user, err := s.db.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.db.GetUserByToken(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
