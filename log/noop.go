// Copyright (C) 2019-2024, Lux Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log re-exports github.com/luxfi/log for the content store's
// structured logging needs: the engine logs one Debug event per
// put/get/delete call. It does not log per-node decisions or failures;
// errors are returned to the caller unlogged.
package log

import (
	"github.com/luxfi/log"
)

// Logger is the structured logging interface the engine depends on.
type Logger = log.Logger

// NewNoOpLogger returns a logger that doesn't log anything
func NewNoOpLogger() log.Logger {
	return log.NewNoOpLogger()
}

// OrNoOp returns l unchanged if non-nil, otherwise a no-op Logger. Engine
// construction uses this so callers can pass a nil Logger without the
// engine nil-checking on every log call.
func OrNoOp(l log.Logger) log.Logger {
	if l == nil {
		return NewNoOpLogger()
	}
	return l
}
