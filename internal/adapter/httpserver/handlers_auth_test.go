package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/notecanvas/internal/domain"
	apperrors "github.com/pscheid92/notecanvas/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp_StartsSession(t *testing.T) {
	identity := signedInIdentity()
	var signedUp bool
	identity.signUpFn = func(_ context.Context, email, password, displayName string) (*domain.User, error) {
		signedUp = true
		assert.Equal(t, "ada@example.com", email)
		assert.Equal(t, "hunter22", password)
		assert.Equal(t, "Ada", displayName)
		return testUser, nil
	}
	identity.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return &domain.Session{Token: testToken, UserID: testUser.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signup",
		`{"email":"ada@example.com","password":"hunter22","display_name":"Ada"}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, signedUp)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testUser.ID.String(), resp.ID)
	assert.Equal(t, "Ada", resp.DisplayName)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignUp_EmailTaken(t *testing.T) {
	identity := &mockIdentity{
		signUpFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signup", `{"email":"a@b.c","password":"x","display_name":"A"}`, "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignUp_InvalidBody(t *testing.T) {
	srv := newTestServer(t, Services{})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signup", `{not json`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apperrors.TypeValidation, resp.Type)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	srv := newTestServer(t, Services{})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signin", `{"email":"ada@example.com","password":"wrong"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestSignIn_CookieAuthenticatesFollowUp(t *testing.T) {
	identity := signedInIdentity()
	identity.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return &domain.Session{Token: testToken, UserID: testUser.ID}, nil
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signin", `{"email":"ada@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := newRequest(http.MethodGet, "/api/me", "")
	req.AddCookie(cookies[0])
	me := serve(srv, req)

	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "ada@example.com")
}

func TestSignOut(t *testing.T) {
	identity := signedInIdentity()
	var deleted string
	identity.signOutFn = func(_ context.Context, token string) error {
		deleted = token
		return nil
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signout", "", testToken)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testToken, deleted)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSignOut_WithoutSession(t *testing.T) {
	identity := &mockIdentity{
		signOutFn: func(context.Context, string) error {
			t.Fatal("SignOut must not be called without a token")
			return nil
		},
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPost, "/auth/signout", "", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMe_ReportsAdmin(t *testing.T) {
	srv := newTestServer(t, Services{Tiers: &mockTiers{admin: true}})

	rec := doRequest(t, srv, http.MethodGet, "/api/me", "", testToken)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsAdmin)
}

func TestUpdateMe(t *testing.T) {
	identity := signedInIdentity()
	identity.updateDisplayNameFn = func(_ context.Context, userID uuid.UUID, name string) (*domain.User, error) {
		assert.Equal(t, testUser.ID, userID)
		updated := *testUser
		updated.DisplayName = name
		return &updated, nil
	}
	srv := newTestServer(t, Services{Identity: identity})

	rec := doRequest(t, srv, http.MethodPatch, "/api/me", `{"display_name":"Countess"}`, testToken)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_name":"Countess"`)
}

func TestAuthRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitAuth = 0.001
	srv := NewServer(cfg, Services{
		Identity: &mockIdentity{},
		Notes:    &mockNotes{},
		Calendar: &mockCalendar{},
		Food:     &mockFood{},
		Tiers:    &mockTiers{},
		Canvas:   &mockCanvas{},
	})

	first := doRequest(t, srv, http.MethodPost, "/auth/signin", `{"email":"a","password":"b"}`, "")
	second := doRequest(t, srv, http.MethodPost, "/auth/signin", `{"email":"a","password":"b"}`, "")

	assert.Equal(t, http.StatusUnauthorized, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), string(apperrors.TypeRateLimited))
}
