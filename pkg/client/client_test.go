package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, seen *[]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Session{ID: "id-1", Email: "a@x.com", FullName: "Awa Ba", Token: "issued-token"})
	})
	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Profile{Agent: Agent{ID: "id-1", Email: "a@x.com"}, FullName: "Awa Ba"})
	})
	mux.HandleFunc("GET /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		*seen = append(*seen, r.Header.Get("Authorization"))
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(AgentPage{Page: 1, PageSize: 10, TotalPages: 1})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginRetainsToken(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := New(srv.URL)
	ctx := context.Background()

	session, err := c.Login(ctx, "a@x.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "issued-token" || c.Token() != "issued-token" {
		t.Fatalf("token not retained: session=%q client=%q", session.Token, c.Token())
	}

	if _, err := c.Me(ctx); err != nil {
		t.Fatalf("me: %v", err)
	}

	// Login went out unauthenticated, the follow-up carried the bearer token.
	if seen[0] != "" {
		t.Fatalf("login request should carry no token, got %q", seen[0])
	}
	if seen[1] != "Bearer issued-token" {
		t.Fatalf("follow-up request missing bearer token, got %q", seen[1])
	}
}

func TestExplicitAuthorizationWins(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := New(srv.URL, WithToken("retained-token"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/agents", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer explicit-token")

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	resp.Body.Close()

	if seen[0] != "Bearer explicit-token" {
		t.Fatalf("explicit header must win, got %q", seen[0])
	}
}

func TestUnauthenticatedSendsNoHeader(t *testing.T) {
	var seen []string
	srv := newTestServer(t, &seen)
	c := New(srv.URL)

	_, err := c.ListAgents(context.Background(), 1, 10, "")
	if err == nil {
		t.Fatalf("expected error from unauthenticated call")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if seen[0] != "" {
		t.Fatalf("unauthenticated client must send no Authorization header, got %q", seen[0])
	}
}
