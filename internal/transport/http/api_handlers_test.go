package http

import (
	"fmt"
	"net/http"
	"testing"
)

func TestSignupLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	signed := decodeJSON[AuthResponse](t, resp)
	if signed.Token == "" || signed.RefreshToken == "" || signed.User == nil {
		t.Fatalf("incomplete auth response: %+v", signed)
	}

	resp = ts.request(http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret1",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", resp.Code)
	}

	resp = ts.request(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "secret1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", resp.Code, resp.Body.String())
	}

	resp = ts.request(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup("alice")

	resp := ts.request(http.MethodGet, "/api/auth/me", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me failed with %d", resp.Code)
	}
	me := decodeJSON[UserResponse](t, resp)
	if me.Username != "alice" || me.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", me)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.request(http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	signed := decodeJSON[AuthResponse](t, resp)

	resp = ts.request(http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: signed.RefreshToken})
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh failed with %d: %s", resp.Code, resp.Body.String())
	}
	fresh := decodeJSON[AuthResponse](t, resp)
	if fresh.Token == "" {
		t.Fatal("expected a fresh access token")
	}

	resp = ts.request(http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: signed.Token})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("access token must not refresh, got %d", resp.Code)
	}
}

func TestSignupRateLimit(t *testing.T) {
	ts := newTestServer(t)

	var last int
	for i := 0; i < 6; i++ {
		resp := ts.request(http.MethodPost, "/api/auth/signup", "", SignupRequest{
			Username: "user" + string(rune('a'+i)),
			Email:    "user" + string(rune('a'+i)) + "@example.com",
			Password: "secret1",
		})
		last = resp.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the sixth signup, got %d", last)
	}
}

func TestBlockEndpoints(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.signup("alice")
	ts.signup("bob")

	resp := ts.request(http.MethodGet, "/api/auth/me", aliceToken, nil)
	alice := decodeJSON[UserResponse](t, resp)

	// Bob signed up right after alice in a fresh database.
	bobID := alice.ID + 1

	resp = ts.request(http.MethodPost, fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("block failed with %d: %s", resp.Code, resp.Body.String())
	}

	resp = ts.request(http.MethodPost, fmt.Sprintf("/api/users/%d/block", alice.ID), aliceToken, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("self-block must fail, got %d", resp.Code)
	}

	resp = ts.request(http.MethodDelete, fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("unblock failed with %d", resp.Code)
	}
}
