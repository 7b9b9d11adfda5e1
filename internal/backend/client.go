// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/sera-tui/internal/model"
)

// Configuration constants for the Sera backend API.
const (
	// DefaultBaseURL is the fallback backend address for local development.
	DefaultBaseURL = "http://localhost:8000"

	// UploadTimeout bounds a document upload round trip. Exceeding it
	// aborts the request and surfaces a TimeoutError.
	UploadTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// sharedHTTPClient is used for all gateway requests. Connection pooling
// reduces TCP handshake overhead across sequential round trips.
// No Timeout here: message sends rely on the transport's own behavior,
// and bounded operations set a context deadline instead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// =============================================================================
// WIRE SCHEMAS
// =============================================================================

// sendRequest is the request body for POST /api/chat.
type sendRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}

// sendResponse is the response body for POST /api/chat.
type sendResponse struct {
	Response  string    `json:"response"`
	ChatID    string    `json:"chatId"`
	Timestamp time.Time `json:"timestamp"`
}

// uploadResponse is the response body for POST /api/upload.
type uploadResponse struct {
	ChatID   string `json:"chatId"`
	Analysis string `json:"analysis,omitempty"`
}

// historyResponse is the response body for GET /api/chats.
type historyResponse struct {
	Chats []model.ChatHistoryEntry `json:"chats"`
}

// documentsResponse is the response body for GET /api/chat/{id}/documents.
type documentsResponse struct {
	Documents []model.Document `json:"documents"`
}

// wireMessage is one message as the backend serializes it.
type wireMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// wireSession is the response body for GET /api/chat/{id}/history.
type wireSession struct {
	ID        string           `json:"id"`
	Messages  []wireMessage    `json:"messages"`
	Documents []model.Document `json:"documents"`
	CreatedAt time.Time        `json:"created_at"`
}

// apiErrorResponse is the error envelope the backend uses.
type apiErrorResponse struct {
	Detail string `json:"detail"`
}

// SendResult is the confirmed outcome of a message round trip.
type SendResult struct {
	AssistantText string
	Timestamp     time.Time
	SessionID     string
}

// UploadResult is the outcome of a document upload.
type UploadResult struct {
	SessionID string
	Analysis  string
}

// HealthStatus reports backend liveness.
type HealthStatus struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	ActiveSessions int    `json:"active_sessions"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the gateway to the Sera backend. All methods are side-effect
// free on client state; they only return data or fail. The base URL may be
// swapped at runtime by config hot reload, so reads go through BaseURL.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	userAgent  string
	verbose    bool
}

// NewClient creates a gateway client for the given base URL. An empty URL
// falls back to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    trimTrailingSlash(baseURL),
		httpClient: sharedHTTPClient,
		userAgent:  "sera-tui/0.1.0",
	}
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithVerbose enables request/response logging. Bodies are never logged.
func (c *Client) WithVerbose(verbose bool) *Client {
	c.verbose = verbose
	return c
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL swaps the backend address at runtime. Subsequent round trips
// use the new address; requests already in flight finish against the old
// one. An empty URL falls back to DefaultBaseURL.
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c.mu.Lock()
	c.baseURL = trimTrailingSlash(baseURL)
	c.mu.Unlock()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// FetchChatHistory lists all chat summaries.
func (c *Client) FetchChatHistory(ctx context.Context) ([]model.ChatHistoryEntry, error) {
	var resp historyResponse
	if err := c.getJSON(ctx, "fetch chat history", "/api/chats", &resp); err != nil {
		return nil, err
	}
	if resp.Chats == nil {
		resp.Chats = []model.ChatHistoryEntry{}
	}
	return resp.Chats, nil
}

// FetchChatSession fetches the full message log for one session.
// Fails with ErrNotFound if the id is unknown.
func (c *Client) FetchChatSession(ctx context.Context, id string) (*model.ChatSession, error) {
	const op = "fetch chat session"
	if id == "" {
		return nil, &BackendError{Op: op, Message: "empty session id"}
	}
	var resp wireSession
	if err := c.getJSON(ctx, op, "/api/chat/"+url.PathEscape(id)+"/history", &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, &BackendError{Op: op, Message: "response missing session id"}
	}
	session := &model.ChatSession{
		ID:        resp.ID,
		Messages:  make([]model.Message, 0, len(resp.Messages)),
		Documents: resp.Documents,
		CreatedAt: resp.CreatedAt,
	}
	for i, wm := range resp.Messages {
		role := model.Role(wm.Role)
		if role != model.RoleUser && role != model.RoleAssistant {
			return nil, &BackendError{Op: op, Message: fmt.Sprintf("unknown role %q at message %d", wm.Role, i)}
		}
		// Backends that omit message ids get stable positional ones.
		msgID := wm.ID
		if msgID == "" {
			msgID = resp.ID + "/" + strconv.Itoa(i)
		}
		session.Messages = append(session.Messages, model.Message{
			ID:        model.ConfirmedID(msgID),
			Role:      role,
			Content:   wm.Content,
			Timestamp: wm.Timestamp,
		})
	}
	return session, nil
}

// SendMessage sends one user message. If sessionID is empty the backend
// allocates a new session and returns its id.
func (c *Client) SendMessage(ctx context.Context, text, sessionID string) (*SendResult, error) {
	const op = "send message"
	body, err := json.Marshal(sendRequest{Message: text, ChatID: sessionID})
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	var resp sendResponse
	if err := c.do(req, op, 0, &resp); err != nil {
		return nil, err
	}
	if resp.ChatID == "" {
		return nil, &BackendError{Op: op, Message: "response missing chatId"}
	}
	if resp.Response == "" {
		return nil, &BackendError{Op: op, Message: "response missing assistant text"}
	}
	return &SendResult{
		AssistantText: resp.Response,
		Timestamp:     resp.Timestamp,
		SessionID:     resp.ChatID,
	}, nil
}

// UploadDocument uploads one document as multipart form data. The round
// trip is bounded by UploadTimeout. Callers are expected to have run
// ValidateUpload first; the backend re-validates regardless.
func (c *Client) UploadDocument(ctx context.Context, filename string, contents io.Reader, sessionID string) (*UploadResult, error) {
	const op = "upload document"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	if sessionID != "" {
		if err := mw.WriteField("chatId", sessionID); err != nil {
			return nil, &BackendError{Op: op, Message: err.Error()}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/api/upload", &buf)
	if err != nil {
		return nil, &BackendError{Op: op, Message: err.Error()}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp uploadResponse
	if err := c.do(req, op, UploadTimeout, &resp); err != nil {
		return nil, err
	}
	if resp.ChatID == "" {
		return nil, &BackendError{Op: op, Message: "response missing chatId"}
	}
	return &UploadResult{SessionID: resp.ChatID, Analysis: resp.Analysis}, nil
}

// DeleteChat deletes one chat session. Deleting an already-deleted id
// fails with ErrNotFound, which callers surface without crashing.
func (c *Client) DeleteChat(ctx context.Context, id string) error {
	const op = "delete chat"
	if id == "" {
		return &BackendError{Op: op, Message: "empty session id"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL()+"/api/chat/"+url.PathEscape(id), nil)
	if err != nil {
		return &BackendError{Op: op, Message: err.Error()}
	}
	return c.do(req, op, 0, nil)
}

// FetchDocuments lists the documents attached to one session.
func (c *Client) FetchDocuments(ctx context.Context, id string) ([]model.Document, error) {
	const op = "fetch documents"
	if id == "" {
		return nil, &BackendError{Op: op, Message: "empty session id"}
	}
	var resp documentsResponse
	if err := c.getJSON(ctx, op, "/api/chat/"+url.PathEscape(id)+"/documents", &resp); err != nil {
		return nil, err
	}
	if resp.Documents == nil {
		resp.Documents = []model.Document{}
	}
	return resp.Documents, nil
}

// Health probes backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.getJSON(ctx, "health check", "/api/health", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// getJSON issues a GET request and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+path, nil)
	if err != nil {
		return &BackendError{Op: op, Message: err.Error()}
	}
	return c.do(req, op, 0, out)
}

// do executes one request and decodes a successful JSON response into out
// (which may be nil for empty-bodied operations like delete).
func (c *Client) do(req *http.Request, op string, limit time.Duration, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, limit, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return &BackendError{Op: op, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp.StatusCode, errorDetail(body))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &BackendError{Op: op, Message: "malformed response: " + err.Error()}
	}
	return nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// errorDetail extracts the backend's error envelope, falling back to the
// raw body when the envelope does not parse.
func errorDetail(body []byte) string {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return string(body)
}

// logRequest logs an API request. Headers and bodies are never logged.
func (c *Client) logRequest(req *http.Request) {
	if c.verbose {
		log.Printf("API Request: %s %s", req.Method, req.URL.Path)
	}
}

// logResponse logs an API response with duration. Bodies are never logged.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	if c.verbose {
		log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
	}
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
