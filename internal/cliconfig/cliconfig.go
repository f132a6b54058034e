// Package cliconfig validates the flag sets cmd/corint's subcommands
// accept before any repository I/O happens, the same "fail before doing
// anything" discipline internal/config's validator.go applies to an
// authored pipeline config.
package cliconfig

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("existingdir", func(fl validator.FieldLevel) bool {
			info, err := os.Stat(fl.Field().String())
			return err == nil && info.IsDir()
		})
		validate = v
	})
	return validate
}

// RunConfig validates the shared inputs "run", "trace", and "validate"
// accept: a repository root to compile rules/rulesets/pipelines out of,
// and the event payload source to decide against.
type RunConfig struct {
	RegistryPath string `validate:"required,existingdir"`
	EventPath    string `validate:"omitempty,file"`
	RequestID    string `validate:"omitempty,max=128"`
	TimeoutMS    int    `validate:"gte=0"`
}

// Validate runs struct-tag validation and translates the first failure
// into a plain, flag-name-scoped error message a CLI user can act on
// without needing to know the validator library's field-path format.
func (c RunConfig) Validate() error {
	if err := instance().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("--%s: failed %q validation", fieldFlagName(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

// Timeout returns the configured timeout, or 0 (no deadline) when unset.
func (c RunConfig) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func fieldFlagName(structField string) string {
	switch structField {
	case "RegistryPath":
		return "registry"
	case "EventPath":
		return "event"
	case "RequestID":
		return "request-id"
	case "TimeoutMS":
		return "timeout-ms"
	default:
		return structField
	}
}
