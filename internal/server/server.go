// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/util"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the stub backend.
	DefaultPort = 8000

	// MaxRequestBodySize bounds JSON request bodies.
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageLength bounds a single chat message.
	MaxMessageLength = 10000

	// Version is the server version.
	Version = "0.1.0"
)

// ============================================================================
// WIRE TYPES
// ============================================================================

type chatRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId,omitempty"`
}

type chatResponse struct {
	Response  string    `json:"response"`
	ChatID    string    `json:"chatId"`
	Timestamp time.Time `json:"timestamp"`
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId"`
	ChatID     string `json:"chatId"`
	Filename   string `json:"filename"`
	Analysis   string `json:"analysis,omitempty"`
}

type sessionResponse struct {
	ID        string           `json:"id"`
	Messages  []storedMessage  `json:"messages"`
	Documents []model.Document `json:"documents"`
	CreatedAt time.Time        `json:"created_at"`
}

type healthResponse struct {
	Status            string    `json:"status"`
	Service           string    `json:"service"`
	Timestamp         time.Time `json:"timestamp"`
	ActiveSessions    int       `json:"active_sessions"`
	UploadedDocuments int       `json:"uploaded_documents"`
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the stub Sera backend.
type Server struct {
	port   int
	store  *Store
	router *http.ServeMux
	server *http.Server
}

// NewServer creates a stub backend listening on the given port.
func NewServer(port int) *Server {
	if port <= 0 {
		port = DefaultPort
	}
	s := &Server{
		port:   port,
		store:  NewStore(),
		router: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the routed handler with the middleware chain applied.
// Exposed for tests.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(NewVisitorLimiter(DefaultRequestsPerSecond, DefaultBurst)),
	)(s.router)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /api/chats", s.handleListChats)
	s.router.HandleFunc("GET /api/chat/{id}/history", s.handleChatHistory)
	s.router.HandleFunc("GET /api/chat/{id}/documents", s.handleChatDocuments)
	s.router.HandleFunc("POST /api/chat", s.handleSendMessage)
	s.router.HandleFunc("POST /api/upload", s.handleUpload)
	s.router.HandleFunc("DELETE /api/chat/{id}", s.handleDeleteChat)
	s.router.HandleFunc("GET /api/health", s.handleHealth)
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"chats": s.store.Summaries()})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sess, ok := s.store.Session(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	docs, _ := s.store.Documents(id)
	if docs == nil {
		docs = []model.Document{}
	}
	msgs := sess.Messages
	if msgs == nil {
		msgs = []storedMessage{}
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{
		ID:        sess.ID,
		Messages:  msgs,
		Documents: docs,
		CreatedAt: sess.CreatedAt,
	})
}

func (s *Server) handleChatDocuments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	docs, ok := s.store.Documents(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	if docs == nil {
		docs = []model.Document{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		s.writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if len(text) > MaxMessageLength {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Message exceeds maximum length of %d characters", MaxMessageLength))
		return
	}

	sess, ok := s.store.GetOrCreateSession(req.ChatID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Chat session not found")
		return
	}

	docs, _ := s.store.Documents(sess.ID)
	reply := composeReply(text, docs)
	now := time.Now().UTC()

	s.store.AppendMessages(sess.ID,
		storedMessage{ID: uuid.NewString(), Role: "user", Content: text, Timestamp: now},
		storedMessage{ID: uuid.NewString(), Role: "assistant", Content: reply, Timestamp: now},
	)

	s.writeJSON(w, http.StatusOK, chatResponse{
		Response:  reply,
		ChatID:    sess.ID,
		Timestamp: now,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, backend.MaxUploadSize+MaxRequestBodySize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	if err := backend.ValidateUpload(header.Filename, header.Size); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	text, err := extractText(file, header)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "Could not extract text from document")
		return
	}

	chatID := r.FormValue("chatId")
	sess, ok := s.store.GetOrCreateSession(chatID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Chat session not found")
		return
	}

	doc := model.Document{
		ID:         uuid.NewString(),
		Filename:   header.Filename,
		UploadedAt: time.Now().UTC(),
		FileType:   strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
		FileSize:   header.Size,
		TextLength: len(text),
	}
	s.store.AddDocument(sess.ID, doc, text)

	analysis := composeAnalysis(doc, text)
	s.store.AppendMessages(sess.ID, storedMessage{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   analysis,
		Timestamp: time.Now().UTC(),
	})

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		DocumentID: doc.ID,
		ChatID:     sess.ID,
		Filename:   doc.Filename,
		Analysis:   analysis,
	})
}

func (s *Server) handleDeleteChat(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.DeleteSession(id) {
		s.writeError(w, http.StatusNotFound, "Chat session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, docs := s.store.Counts()
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:            "healthy",
		Service:           "sera-backend",
		Timestamp:         time.Now().UTC(),
		ActiveSessions:    sessions,
		UploadedDocuments: docs,
	})
}

// ============================================================================
// STUB ASSISTANT
// ============================================================================

// composeReply produces a canned assistant answer grounded in whatever
// documents the session has.
func composeReply(question string, docs []model.Document) string {
	if len(docs) == 0 {
		return "I don't have any documents for this chat yet. " +
			"Upload a policy document (.pdf, .docx or .txt) and I can answer questions about it."
	}

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Filename
	}
	return fmt.Sprintf("Based on %s, here is what I found about %q:\n\n"+
		"The uploaded %s covers this topic. In a production deployment this answer "+
		"would be generated from the document text.",
		strings.Join(names, ", "),
		util.TruncateRunes(question, 60),
		util.Pluralize(len(docs), "document", "documents"))
}

// composeAnalysis produces the post-upload document summary.
func composeAnalysis(doc model.Document, text string) string {
	words := len(strings.Fields(text))
	return fmt.Sprintf("I've analyzed **%s** (%s, %s, about %d words). "+
		"Ask me anything about its contents.",
		doc.Filename,
		strings.ToUpper(doc.FileType),
		formatBytes(doc.FileSize),
		words)
}

// extractText pulls plain text out of an upload. Only .txt files carry
// real text here; binary formats get a placeholder corpus sized to the
// upload so previews and counts stay plausible.
func extractText(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	data, err := io.ReadAll(io.LimitReader(file, backend.MaxUploadSize))
	if err != nil {
		return "", err
	}
	if ext == ".txt" {
		return string(data), nil
	}
	return fmt.Sprintf("[extracted text of %s, %d bytes]", header.Filename, len(data)), nil
}

func formatBytes(n int64) string {
	const kib = 1024
	switch {
	case n >= kib*kib:
		return strconv.FormatFloat(float64(n)/(kib*kib), 'f', 1, 64) + " MB"
	case n >= kib:
		return strconv.FormatFloat(float64(n)/kib, 'f', 1, 64) + " KB"
	default:
		return strconv.FormatInt(n, 10) + " B"
	}
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError uses the {detail} envelope the TUI client expects.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
