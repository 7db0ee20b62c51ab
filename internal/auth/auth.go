package auth

import (
	"chatnex/internal/config"
	"chatnex/internal/logger"
	"chatnex/internal/repository/db"
	"chatnex/internal/repository/postgres"
	"chatnex/pkg/validation"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserContextKey carries the authenticated user id through request contexts.
const UserContextKey contextKey = "user"

// TokenCookieName is the cookie the browser client presents on both HTTP
// and websocket requests.
const TokenCookieName = "token"

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Service issues and validates identity tokens and serves the
// register/login endpoints.
type Service struct {
	db        db.Database
	config    config.AuthConfig
	validator *validation.AuthRequestValidator
}

// NewService creates a new auth Service
func NewService(database db.Database, authConfig config.AuthConfig) *Service {
	return &Service{
		db:        database,
		config:    authConfig,
		validator: validation.NewAuthRequestValidator(),
	}
}

// sendError sends a standardized JSON error response
func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

// GenerateToken issues a signed JWT for a user
func (s *Service) GenerateToken(user *db.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.config.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.config.JWTSecret)
}

// ValidateToken parses and verifies a JWT, returning its claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.config.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// ResolveUser validates a token and loads the user it identifies.
// This is the session gate: transports call it once per connection and
// trust the returned identity afterwards.
func (s *Service) ResolveUser(tokenString string) (*db.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	user, err := s.db.GetUserByID(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("unknown user: %w", err)
	}

	return user, nil
}

// setTokenCookie attaches the token as an HTTP-only cookie so the
// websocket upgrade can authenticate without an Authorization header.
func (s *Service) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.TokenExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginHandler authenticates a user and returns a JWT token
func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.validator.ValidateLoginRequest(req.Username, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, err := s.db.GetUserByUsername(req.Username)
	if err != nil {
		logger.Log.WithField("username", req.Username).Info("Login failed: user not found")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if !postgres.VerifyPassword(user, req.Password) {
		logger.Log.WithField("username", req.Username).Info("Login failed: invalid password")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", user.Username).Info("User logged in")

	s.setTokenCookie(w, token)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{Token: token})
}

// RegisterHandler creates a new user account
func (s *Service) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := s.validator.ValidateRegisterRequest(req.Username, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	user, err := s.db.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		logger.Log.WithField("username", req.Username).WithError(err).Info("Registration failed")
		if strings.Contains(err.Error(), "already exists") {
			sendError(w, http.StatusConflict, "Username already exists", err)
			return
		}
		sendError(w, http.StatusInternalServerError, "Error creating user", err)
		return
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", user.Username).Info("User registered")

	s.setTokenCookie(w, token)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(TokenResponse{
		Message: "User registered successfully",
		Token:   token,
	})
}

// TokenFromRequest extracts the caller's token from the Authorization
// header or, failing that, the token cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			return "", fmt.Errorf("invalid authorization header format")
		}
		return bearerToken[1], nil
	}

	cookie, err := r.Cookie(TokenCookieName)
	if err != nil {
		return "", fmt.Errorf("no token provided")
	}
	return cookie.Value, nil
}

// Middleware authenticates HTTP requests and attaches the user id to the
// request context.
func (s *Service) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := TokenFromRequest(r)
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Missing authorization", err)
			return
		}

		claims, err := s.ValidateToken(token)
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// UserIDFromContext returns the authenticated user id set by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserContextKey).(string)
	return userID, ok
}
