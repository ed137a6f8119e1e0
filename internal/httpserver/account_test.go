package httpserver

import (
	"net/http"
	"strings"
	"testing"

	"dealership/internal/domain"
	accountsvc "dealership/internal/service/account"
)

func TestSignupHandler_Created(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodPost, "/auth/signup", `{"email":"user@example.com","password":"Abcdefg1"}`, nil)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", code, body)
	}
	if !strings.Contains(string(body.Data), `"email":"user@example.com"`) {
		t.Fatalf("unexpected body: %s", body.Data)
	}
	if strings.Contains(string(body.Data), "password") {
		t.Fatalf("password hash leaked: %s", body.Data)
	}
}

func TestSignupHandler_Duplicate(t *testing.T) {
	env := newTestEnvWith(t, &stubAccounts{signupErr: domain.ErrAlreadyExists})

	code, _ := env.do(t, http.MethodPost, "/auth/signup", `{"email":"user@example.com","password":"Abcdefg1"}`, nil)
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", code)
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	env := newTestEnvWith(t, &stubAccounts{loginErr: accountsvc.ErrInvalidCredentials})

	code, body := env.do(t, http.MethodPost, "/auth/login", `{"email":"user@example.com","password":"nope"}`, nil)
	if code != http.StatusUnauthorized || body.Message != accountsvc.ErrInvalidCredentials.Error() {
		t.Fatalf("expected 401, got %d %+v", code, body)
	}

	code, _ = env.do(t, http.MethodPost, "/auth/login", `{"email":"user@example.com"}`, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", code)
	}
}

func TestMeHandler(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.do(t, http.MethodGet, "/auth/me", "", map[string]string{"Authorization": "Bearer advisor-token"})
	if code != http.StatusOK || !strings.Contains(string(body.Data), `"role":"advisor"`) {
		t.Fatalf("unexpected response %d %s", code, body.Data)
	}
	code, _ = env.do(t, http.MethodGet, "/auth/me", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
}
