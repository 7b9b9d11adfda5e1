// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/session"
	"github.com/jeranaias/sera-tui/internal/ui/components"
)

// =============================================================================
// BACKEND COMMANDS
// =============================================================================

// refreshHistoryCmd fetches the chat history summaries.
func refreshHistoryCmd(c *backend.Client) tea.Cmd {
	return func() tea.Msg {
		entries, err := c.FetchChatHistory(context.Background())
		return HistoryMsg{Entries: entries, Err: err}
	}
}

// sendMessageCmd issues a message round trip against the session the user
// was in at submit time.
func sendMessageCmd(c *backend.Client, target session.Key, id model.MessageID, text string) tea.Cmd {
	return func() tea.Msg {
		result, err := c.SendMessage(context.Background(), text, target.ServerID())
		return SendResultMsg{Target: target, MessageID: id, Result: result, Err: err}
	}
}

// uploadDocumentCmd streams a local file to the backend. The file was
// validated before dispatch; an open failure here still resolves the
// upload so the reducer can roll the optimistic session back.
func uploadDocumentCmd(c *backend.Client, target session.Key, path, filename string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return UploadResultMsg{Target: target, Err: err}
		}
		defer f.Close()

		result, err := c.UploadDocument(context.Background(), filename, f, target.ServerID())
		return UploadResultMsg{Target: target, Result: result, Err: err}
	}
}

// refreshDocumentsCmd fetches the document list for a session.
func refreshDocumentsCmd(c *backend.Client, target session.Key) tea.Cmd {
	return func() tea.Msg {
		docs, err := c.FetchDocuments(context.Background(), target.ServerID())
		return DocumentsMsg{Target: target, Documents: docs, Err: err}
	}
}

// loadSessionCmd fetches a session's message log and document list
// concurrently and joins them, so the switch lands as one atomic result.
func loadSessionCmd(c *backend.Client, target session.Key) tea.Cmd {
	return func() tea.Msg {
		var (
			sess    *model.ChatSession
			sessErr error
			docs    []model.Document
			docsErr error
		)

		done := make(chan struct{})
		go func() {
			docs, docsErr = c.FetchDocuments(context.Background(), target.ServerID())
			close(done)
		}()
		sess, sessErr = c.FetchChatSession(context.Background(), target.ServerID())
		<-done

		msg := SessionMsg{Target: target, Session: sess, Documents: docs}
		if sessErr != nil {
			msg.Err = sessErr
		} else if docsErr != nil {
			msg.Err = docsErr
		}
		return msg
	}
}

// deleteChatCmd deletes a chat on the backend.
func deleteChatCmd(c *backend.Client, id string) tea.Cmd {
	return func() tea.Msg {
		err := c.DeleteChat(context.Background(), id)
		return DeleteResultMsg{ID: id, Err: err}
	}
}

// checkHealthCmd probes the backend once at startup.
func checkHealthCmd(c *backend.Client) tea.Cmd {
	return func() tea.Msg {
		status, err := c.Health(context.Background())
		return HealthMsg{Status: status, Err: err}
	}
}

// =============================================================================
// UI COMMANDS
// =============================================================================

// clearNoticeCmd arms the auto-dismiss timer for a notice. The sequence
// number makes a stale timer (for an already-replaced notice) a no-op.
func clearNoticeCmd(seq int) tea.Cmd {
	return tea.Tick(components.ToastDuration, func(time.Time) tea.Msg {
		return ClearNoticeMsg{Seq: seq}
	})
}
