package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/query"
	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

// ---- mock implementations ----

type mockAuthCommander struct {
	signupFn func(cqrs.SignupCommand) (*models.UserView, error)
}

func (m *mockAuthCommander) Signup(_ context.Context, cmd cqrs.SignupCommand) (*models.UserView, error) {
	if m.signupFn != nil {
		return m.signupFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockAuthQuerier struct {
	loginFn func(cqrs.LoginCommand) (*query.LoginResult, error)
}

func (m *mockAuthQuerier) Login(_ context.Context, cmd cqrs.LoginCommand) (*query.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helper ----

func newAuthTestRouter(cmds AuthCommander, qrys AuthQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(cmds, qrys)
	api := r.Group("/api/auth")
	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)
	return r
}

func authDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var alice = &models.UserView{ID: "usr-abc", Username: "alice", Email: "alice@example.com"}

// ---- tests ----

func TestSignup(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		signupFn       func(cqrs.SignupCommand) (*models.UserView, error)
		expectedStatus int
	}{
		{
			name:           "success - creates user",
			body:           map[string]string{"username": "alice", "email": "alice@example.com", "password": "pw"},
			signupFn:       func(cmd cqrs.SignupCommand) (*models.UserView, error) { return alice, nil },
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing username",
			body:           map[string]string{"email": "alice@example.com", "password": "pw"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid email",
			body:           map[string]string{"username": "alice", "email": "nope", "password": "pw"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"username": "alice", "email": "alice@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "server error - duplicate hidden behind generic message",
			body: map[string]string{"username": "alice", "email": "alice@example.com", "password": "pw"},
			signupFn: func(cmd cqrs.SignupCommand) (*models.UserView, error) {
				return nil, apperr.Persistence("Failed to create user", fmt.Errorf("pq: duplicate key"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthCommander{signupFn: tt.signupFn}, &mockAuthQuerier{})
			w := authDoRequest(router, http.MethodPost, "/api/auth/signup", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "duplicate key") {
				t.Errorf("[%s] storage detail leaked: %s", tt.name, w.Body.String())
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(cqrs.LoginCommand) (*query.LoginResult, error)
		expectedStatus int
	}{
		{
			name: "success - valid credentials return token",
			body: map[string]string{"identifier": "alice", "password": "securepass123"},
			loginFn: func(cmd cqrs.LoginCommand) (*query.LoginResult, error) {
				return &query.LoginResult{Token: "mock.jwt.token", User: alice}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorised - invalid credentials",
			body: map[string]string{"identifier": "alice@example.com", "password": "wrongpass"},
			loginFn: func(cmd cqrs.LoginCommand) (*query.LoginResult, error) {
				return nil, apperr.Authentication("Invalid credentials")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]string{"identifier": "alice"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing identifier",
			body:           map[string]string{"password": "securepass123"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthTestRouter(&mockAuthCommander{}, &mockAuthQuerier{loginFn: tt.loginFn})
			w := authDoRequest(router, http.MethodPost, "/api/auth/login", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestLoginResponseShape(t *testing.T) {
	router := newAuthTestRouter(&mockAuthCommander{}, &mockAuthQuerier{
		loginFn: func(cmd cqrs.LoginCommand) (*query.LoginResult, error) {
			if cmd.Identifier != "alice" {
				t.Errorf("identifier not forwarded: %q", cmd.Identifier)
			}
			return &query.LoginResult{Token: "mock.jwt.token", User: alice}, nil
		},
	})

	w := authDoRequest(router, http.MethodPost, "/api/auth/login", map[string]string{"identifier": "alice", "password": "pw"})

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token != "mock.jwt.token" || resp.User.ID != "usr-abc" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if resp.User.Password != "" {
		t.Errorf("password leaked: %s", w.Body.String())
	}
}
