// Package di exposes bindings through a samber/do injector and bootstraps the
// engine's ambient services (config, logging, metrics, the binding collection).
package di

import (
	"github.com/KOMKZ/go-yogan-binding/errcode"
	"github.com/samber/do/v2"
)

// Injector type alias
type Injector = do.Injector

// RootScope type alias
type RootScope = do.RootScope

// ModuleCode di module code
const ModuleCode = 14

// Error codes: 14xxxx
const (
	ErrCodeInvalidConfig = 1
	ErrCodeEngineClosed  = 2
)

var (
	// ErrInvalidConfig engine configuration failed validation
	ErrInvalidConfig = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidConfig,
		"di", "error.di.invalid_config", "invalid engine configuration",
	))

	// ErrEngineClosed the engine was shut down
	ErrEngineClosed = errcode.Register(errcode.New(
		ModuleCode, ErrCodeEngineClosed,
		"di", "error.di.engine_closed", "engine is shut down",
	))
)
