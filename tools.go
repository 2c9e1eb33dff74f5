//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// These imports are not used at runtime. They keep go-based tools invoked
// via `go generate` (mockgen) tracked in go.mod so that a fresh checkout
// can regenerate the mocks.
package chat_room

import (
	_ "go.uber.org/mock/mockgen"
)
