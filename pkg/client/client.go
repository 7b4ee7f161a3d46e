// Package client is a typed HTTP client for the mini-bank API. It mirrors the
// dashboard's fetch wrapper: after Login or Register it retains the issued
// bearer token and attaches it to every request, unless the caller supplied
// an explicit Authorization header, in which case the explicit one wins.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to a mini-bank API server.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithToken seeds the client with a previously issued token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the retained session token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the retained session token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Do sends the request, attaching the retained bearer token when the caller
// did not set an Authorization header of their own.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") == "" {
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return c.httpc.Do(req)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Session is the login/registration response.
type Session struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Token    string `json:"token"`
}

// Login authenticates and retains the issued token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var session Session
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": email, "password": password}, &session)
	if err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

// RegisterInput carries self-service registration fields.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	AgentCode string `json:"agentCode,omitempty"`
}

// Register creates an account and retains the issued token (registration
// auto-authenticates).
func (c *Client) Register(ctx context.Context, in RegisterInput) (Session, error) {
	var session Session
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", in, &session); err != nil {
		return Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

// Agent is an account record as rendered by the dashboard.
type Agent struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	AgentCode     string    `json:"agentCode"`
	Phone         string    `json:"phone"`
	UserType      string    `json:"userType"`
	Status        string    `json:"status"`
	AccountNumber string    `json:"accountNumber"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile is the authenticated agent's own record.
type Profile struct {
	Agent    Agent  `json:"agent"`
	FullName string `json:"fullName"`
}

// Me fetches the authenticated agent's profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/me", nil, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// AgentPage is one page of an account listing.
type AgentPage struct {
	Items      []Agent `json:"items"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// ListAgents fetches a page of accounts. Zero values fall back to server
// defaults; q filters by name, email or agent code.
func (c *Client) ListAgents(ctx context.Context, page, pageSize int, q string) (AgentPage, error) {
	path := "/api/v1/agents?page=" + strconv.Itoa(page) + "&pageSize=" + strconv.Itoa(pageSize)
	if q != "" {
		path += "&q=" + q
	}
	var result AgentPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &result); err != nil {
		return AgentPage{}, err
	}
	return result, nil
}

// Transaction is a recorded money movement.
type Transaction struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"montant"`
	Reference     string    `json:"reference"`
	Status        string    `json:"statut"`
	Sender        string    `json:"expediteur"`
	Recipient     string    `json:"destinataire"`
	AccountNumber string    `json:"accountNumber"`
	UserType      string    `json:"userType"`
	Date          time.Time `json:"date"`
}

// Deposit records a deposit to the given account number.
func (c *Client) Deposit(ctx context.Context, account string, amount int64) (Transaction, error) {
	var tx Transaction
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/transactions/deposit",
		map[string]any{"account": account, "amount": amount}, &tx)
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// CancelTransaction cancels the referenced transaction.
func (c *Client) CancelTransaction(ctx context.Context, reference string) (Transaction, error) {
	var tx Transaction
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/transactions/"+reference+"/cancel", nil, &tx)
	if err != nil {
		return Transaction{}, err
	}
	return tx, nil
}
