package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
)

// AuthServiceTestSuite provides a test suite for AuthService
type AuthServiceTestSuite struct {
	suite.Suite
	config      *config.Config
	authService *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.config = &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret-key-for-testing-only-32-bytes",
			JWTExpiration: time.Hour,
			Issuer:        "mealbuddy",
			Audience:      "mealbuddy-api",
		},
	}
	s.authService = NewAuthService(s.config, zap.NewNop())
}

func (s *AuthServiceTestSuite) TestRoundTrip() {
	userID := uuid.New()

	token, err := s.authService.GenerateAccessToken(userID, "cook@example.com")
	s.Require().NoError(err)

	identity, err := s.authService.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(userID, identity.UserID)
	s.Equal("cook@example.com", identity.Email)
}

func (s *AuthServiceTestSuite) TestMissingToken() {
	_, err := s.authService.ValidateToken("")
	s.ErrorIs(err, ErrMissingToken)
}

func (s *AuthServiceTestSuite) TestExpiredToken() {
	token, err := s.authService.GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	s.authService.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestWrongSecret() {
	other := *s.config
	other.Auth.JWTSecret = "a-different-secret-of-sufficient-len"
	token, err := NewAuthService(&other, zap.NewNop()).GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestWrongAudience() {
	other := *s.config
	other.Auth.Audience = "someone-else"
	token, err := NewAuthService(&other, zap.NewNop()).GenerateAccessToken(uuid.New(), "")
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestMalformedUserID() {
	claims := &Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mealbuddy",
			Audience:  []string{"mealbuddy-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Auth.JWTSecret))
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestRejectsNoneAlgorithm() {
	claims := &Claims{UserID: uuid.NewString()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
