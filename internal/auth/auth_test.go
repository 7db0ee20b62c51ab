package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatnex/internal/config"
	"chatnex/internal/repository/db"
	"chatnex/internal/testutil"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       []byte("0123456789abcdef0123456789abcdef"),
		TokenExpiration: time.Hour,
	}
}

func TestTokenRoundtrip(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, testAuthConfig())

	user := &db.User{ID: "user-1", Username: "alice"}
	token, err := service.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "alice" {
		t.Errorf("claims = %+v, want user-1/alice", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, testAuthConfig())

	other := NewService(&testutil.MockDatabase{}, config.AuthConfig{
		JWTSecret:       []byte("ffffffffffffffffffffffffffffffff"),
		TokenExpiration: time.Hour,
	})

	token, err := other.GenerateToken(&db.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := service.ValidateToken(token); err == nil {
		t.Error("ValidateToken() error = nil for foreign signature, want error")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, config.AuthConfig{
		JWTSecret:       []byte("0123456789abcdef0123456789abcdef"),
		TokenExpiration: -time.Minute,
	})

	token, err := service.GenerateToken(&db.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := service.ValidateToken(token); err == nil {
		t.Error("ValidateToken() error = nil for expired token, want error")
	}
}

func TestResolveUser(t *testing.T) {
	database := &testutil.MockDatabase{
		GetUserByIDFunc: func(id string) (*db.User, error) {
			if id != "user-1" {
				return nil, errors.New("user not found")
			}
			return &db.User{ID: "user-1", Username: "alice"}, nil
		},
	}
	service := NewService(database, testAuthConfig())

	token, err := service.GenerateToken(&db.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	user, err := service.ResolveUser(token)
	if err != nil {
		t.Fatalf("ResolveUser() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ResolveUser() user = %+v, want user-1", user)
	}

	if _, err := service.ResolveUser("not-a-token"); err == nil {
		t.Error("ResolveUser() error = nil for garbage token, want error")
	}
}

func TestResolveUser_DeletedUser(t *testing.T) {
	database := &testutil.MockDatabase{
		GetUserByIDFunc: func(id string) (*db.User, error) {
			return nil, errors.New("user not found")
		},
	}
	service := NewService(database, testAuthConfig())

	token, err := service.GenerateToken(&db.User{ID: "user-gone", Username: "ghost"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := service.ResolveUser(token); err == nil {
		t.Error("ResolveUser() error = nil for deleted user, want error")
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(r *http.Request)
		wantToken string
		wantErr   bool
	}{
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer abc123")
			},
			wantToken: "abc123",
		},
		{
			name: "cookie fallback",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "cookie-token"})
			},
			wantToken: "cookie-token",
		},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer from-header")
				r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "from-cookie"})
			},
			wantToken: "from-header",
		},
		{
			name: "malformed header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "abc123")
			},
			wantErr: true,
		},
		{
			name:    "nothing provided",
			setup:   func(r *http.Request) {},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)

			token, err := TokenFromRequest(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("TokenFromRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && token != tt.wantToken {
				t.Errorf("TokenFromRequest() = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	service := NewService(&testutil.MockDatabase{}, testAuthConfig())

	token, err := service.GenerateToken(&db.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var gotUserID string
	handler := service.Middleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if gotUserID != "user-1" {
		t.Errorf("context user id = %q, want user-1", gotUserID)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}
}
