//go:build tools

// Package tools pins build-time tools in go.mod.
//
// Mocks are configured in .mockery.yaml; regenerate them with
//
//	go run github.com/vektra/mockery/v2
package tools

import (
	_ "github.com/vektra/mockery/v2"
)
