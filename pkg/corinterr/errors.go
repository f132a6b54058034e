// Package corinterr defines the typed error taxonomy shared by every layer
// of the decision language stack: author-time errors raised while loading
// and compiling an artifact, and request-time errors raised while a
// Program executes against an event.
package corinterr

import (
	"errors"
	"fmt"
)

// Code identifies a well-known error category. Structural codes (E001-E007,
// W001-W003) mirror the semantic analyzer diagnostics in spec §4.3;
// the remaining codes cover the parser, resolver, and VM taxonomies in §7.
type Code string

const (
	// Author-time: parser
	CodeMissingField Code = "MISSING_FIELD"
	CodeInvalidValue Code = "INVALID_VALUE"
	CodeParseError   Code = "PARSE_ERROR"

	// Author-time: resolver
	CodeImportNotFound    Code = "IMPORT_NOT_FOUND"
	CodeCircularDependency Code = "CIRCULAR_DEPENDENCY"
	CodeDuplicateRuleID    Code = "DUPLICATE_RULE_ID"
	CodeDuplicateRulesetID Code = "DUPLICATE_RULESET_ID"
	CodeIDConflict         Code = "ID_CONFLICT"
	CodeExtendsNotFound    Code = "EXTENDS_NOT_FOUND"
	CodeCircularExtends    Code = "CIRCULAR_EXTENDS"

	// Author-time: analyzer / codegen
	CodeUnsupportedFeature Code = "UNSUPPORTED_FEATURE"
	CodeInvalidExpression  Code = "INVALID_EXPRESSION"

	// Author-time: semantic analyzer structural diagnostics
	CodeE001MissingEntry     Code = "E001"
	CodeE002EntryNotFound    Code = "E002"
	CodeE003DuplicateStepID  Code = "E003"
	CodeE004RouterHasNext    Code = "E004"
	CodeE005RouterNoRoutes   Code = "E005"
	CodeE006UnknownStepRef   Code = "E006"
	CodeE007PipelineCycle    Code = "E007"
	CodeW001Unreachable      Code = "W001"
	CodeW002DeadEnd          Code = "W002"
	CodeW003UnusedRoute      Code = "W003"

	// Request-time recoverable
	CodeExternalCallFailed      Code = "EXTERNAL_CALL_FAILED"
	CodeFeatureStoreUnavailable Code = "FEATURE_STORE_UNAVAILABLE"
	CodeLLMProviderUnavailable  Code = "LLM_PROVIDER_UNAVAILABLE"

	// Request-time fatal
	CodeStackError      Code = "STACK_ERROR"
	CodeTypeError       Code = "TYPE_ERROR"
	CodeInvalidOperation Code = "INVALID_OPERATION"
	CodeUnknownField    Code = "UNKNOWN_FIELD"
	CodeReservedField   Code = "RESERVED_FIELD"
	CodeExecutionError  Code = "EXECUTION_ERROR"
)

// CorintError is a typed error enriched with contextual data, in the style
// of a closed error-code enum rather than a tree of distinct Go types: the
// specification itself is code-based (E001-E007, W001-W003), so a single
// struct keyed by Code plays that role more directly than one struct per
// code would.
type CorintError struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]interface{}
}

func (e *CorintError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *CorintError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is allows errors.Is comparisons keyed on error code alone.
func (e *CorintError) Is(target error) bool {
	var other *CorintError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithContext clones the error with additional contextual metadata merged in.
func (e *CorintError) WithContext(ctx map[string]interface{}) *CorintError {
	if e == nil {
		return nil
	}
	merged := make(map[string]interface{}, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &CorintError{Code: e.Code, Message: e.Message, Cause: e.Cause, Context: merged}
}

func New(code Code, message string, cause error, context map[string]interface{}) *CorintError {
	return &CorintError{Code: code, Message: message, Cause: cause, Context: context}
}

// Convenience constructors mirroring the common call sites across the stack.

func NewMissingField(field string) *CorintError {
	return New(CodeMissingField, "missing required field", nil, map[string]interface{}{"field": field})
}

func NewInvalidValue(message string, ctx map[string]interface{}) *CorintError {
	return New(CodeInvalidValue, message, nil, ctx)
}

// NewParseError wraps a YAML/grammar parse failure with file-relative location.
func NewParseError(path string, line int, cause error) *CorintError {
	ctx := map[string]interface{}{"path": path}
	if line > 0 {
		ctx["line"] = line
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return New(CodeParseError, msg, cause, ctx)
}

func NewImportNotFound(path string) *CorintError {
	return New(CodeImportNotFound, "import not found", nil, map[string]interface{}{"path": path})
}

func NewCircularDependency(stack []string) *CorintError {
	return New(CodeCircularDependency, "circular dependency detected", nil, map[string]interface{}{"stack": stack})
}

func NewDuplicateRuleID(id string, paths []string) *CorintError {
	return New(CodeDuplicateRuleID, "duplicate rule id", nil, map[string]interface{}{"id": id, "paths": paths})
}

func NewDuplicateRulesetID(id string, paths []string) *CorintError {
	return New(CodeDuplicateRulesetID, "duplicate ruleset id", nil, map[string]interface{}{"id": id, "paths": paths})
}

func NewIDConflict(id string) *CorintError {
	return New(CodeIDConflict, "rule id conflicts with ruleset id", nil, map[string]interface{}{"id": id})
}

func NewExtendsNotFound(rulesetID, parentID string) *CorintError {
	return New(CodeExtendsNotFound, "extends target not found", nil, map[string]interface{}{"ruleset_id": rulesetID, "parent_id": parentID})
}

func NewCircularExtends(chain []string) *CorintError {
	return New(CodeCircularExtends, "circular ruleset inheritance detected", nil, map[string]interface{}{"chain": chain})
}

func NewUnsupportedFeature(message string) *CorintError {
	return New(CodeUnsupportedFeature, message, nil, nil)
}

func NewInvalidExpression(message string, ctx map[string]interface{}) *CorintError {
	return New(CodeInvalidExpression, message, nil, ctx)
}

// Structural diagnostic constructors (E001-E007). These double as warnings
// when used with W001-W003; the caller decides which list to append to.

func NewDiagnostic(code Code, message string, ctx map[string]interface{}) *CorintError {
	return New(code, message, nil, ctx)
}

func NewExternalCallFailed(target string, cause error) *CorintError {
	return New(CodeExternalCallFailed, "external call failed", cause, map[string]interface{}{"target": target})
}

func NewFeatureStoreUnavailable(featureType string) *CorintError {
	return New(CodeFeatureStoreUnavailable, "feature store unavailable", nil, map[string]interface{}{"feature_type": featureType})
}

func NewLLMProviderUnavailable(provider string, cause error) *CorintError {
	return New(CodeLLMProviderUnavailable, "llm provider unavailable", cause, map[string]interface{}{"provider": provider})
}

func NewStackError(message string) *CorintError {
	return New(CodeStackError, message, nil, nil)
}

func NewTypeError(expected, actual string) *CorintError {
	return New(CodeTypeError, "invalid type", nil, map[string]interface{}{"expected": expected, "actual": actual})
}

func NewInvalidOperation(message string) *CorintError {
	return New(CodeInvalidOperation, message, nil, nil)
}

func NewUnknownField(path []string) *CorintError {
	return New(CodeUnknownField, "unknown field in strict mode", nil, map[string]interface{}{"path": path})
}

func NewReservedField(key string) *CorintError {
	return New(CodeReservedField, "event data uses a reserved field name", nil, map[string]interface{}{"field": key})
}

func NewExecutionError(message string, ctx map[string]interface{}) *CorintError {
	return New(CodeExecutionError, message, nil, ctx)
}

// IsFatal reports whether the error terminates the decision without a
// signal, per the request-time-fatal band in spec §7.
func IsFatal(err error) bool {
	var ce *CorintError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case CodeStackError, CodeTypeError, CodeInvalidOperation, CodeUnknownField, CodeReservedField, CodeExecutionError:
		return true
	default:
		return false
	}
}

// IsRecoverable reports whether the error is a request-time-recoverable
// condition with a documented fallback behaviour.
func IsRecoverable(err error) bool {
	var ce *CorintError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case CodeExternalCallFailed, CodeFeatureStoreUnavailable, CodeLLMProviderUnavailable:
		return true
	default:
		return false
	}
}
