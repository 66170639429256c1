package handler

import (
	"net/http"
	"testing"

	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/service"
)

func TestAuthHandler_SignupLoginMe(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup",
		`{"email":"ada@example.com","password":"s3cret-pass","name":"Ada"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	signup := decodeBody[service.AuthResult](t, rec)
	if signup.Token == "" || signup.User.Email != "ada@example.com" || signup.User.Name != "Ada" {
		t.Fatalf("unexpected signup response: %+v", signup)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"s3cret-pass"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", rec.Code)
	}
	login := decodeBody[service.AuthResult](t, rec)

	userID, err := env.issuer.Verify(login.Token)
	if err != nil {
		t.Fatalf("login token does not verify: %v", err)
	}
	if userID != signup.User.ID {
		t.Errorf("token user = %s, want %s", userID, signup.User.ID)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", "", login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", rec.Code)
	}
	me := decodeBody[model.PublicUser](t, rec)
	if me.ID != signup.User.ID {
		t.Errorf("me id = %s, want %s", me.ID, signup.User.ID)
	}
}

func TestAuthHandler_SignupDuplicate(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	body := `{"email":"dup@example.com","password":"pw"}`
	if rec := env.do(t, http.MethodPost, "/api/auth/signup", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first signup status = %d", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/auth/signup", body, "")
	assertError(t, rec, http.StatusBadRequest, CodeUserExists, "User already exists")
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing_password", `{"email":"a@example.com"}`, "Email and password are required"},
		{"missing_email", `{"password":"pw"}`, "Email and password are required"},
		{"bad_email", `{"email":"nope","password":"pw"}`, "Invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/signup", tt.body, "")
			assertError(t, rec, http.StatusBadRequest, CodeValidation, tt.message)
		})
	}
}

func TestAuthHandler_LoginFailuresLookAlike(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	if rec := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":"real@example.com","password":"right"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"real@example.com","password":"wrong"}`, "")
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ghost@example.com","password":"right"}`, "")

	assertError(t, wrongPassword, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
	assertError(t, unknownEmail, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
}

func TestAuthHandler_MeUnknownUser(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", env.token(t, "deleted-user"))
	assertError(t, rec, http.StatusNotFound, CodeNotFound, "User not found")
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":"first@example.com","password":"pw","name":"First"}`, "")
	first := decodeBody[service.AuthResult](t, rec)
	if rec := env.do(t, http.MethodPost, "/api/auth/signup", `{"email":"second@example.com","password":"pw"}`, ""); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/api/auth/me", `{"name":"Renamed"}`, first.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	updated := decodeBody[model.PublicUser](t, rec)
	if updated.Name != "Renamed" || updated.Email != "first@example.com" {
		t.Errorf("unexpected profile: %+v", updated)
	}

	rec = env.do(t, http.MethodPatch, "/api/auth/me", `{"email":"second@example.com"}`, first.Token)
	assertError(t, rec, http.StatusBadRequest, CodeEmailTaken, "Email already in use")
}
