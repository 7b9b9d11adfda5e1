// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a self-contained Sera backend for local
// development and demos. It implements the full chat API against an
// in-memory store, with canned assistant replies instead of a model.
//
// Endpoints:
//   - GET    /api/chats                 - List chat summaries
//   - GET    /api/chat/{id}/history     - Full message log for a chat
//   - GET    /api/chat/{id}/documents   - Documents attached to a chat
//   - POST   /api/chat                  - Send a message
//   - POST   /api/upload                - Upload a document (multipart)
//   - DELETE /api/chat/{id}             - Delete a chat
//   - GET    /api/health                - Health check
package server
