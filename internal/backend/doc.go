// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the HTTP gateway client for the Sera
// document-analysis service.
//
// One method per backend capability, each a single request/response pair:
// nothing here retries, and nothing here mutates client state. Responses
// are decoded against explicit per-endpoint schemas at this boundary; a
// shape mismatch fails with a BackendError rather than letting undefined
// values propagate into the stores.
package backend
