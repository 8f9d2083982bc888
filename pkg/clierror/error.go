package clierror

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Exit codes returned by attestctl.
const (
	ExitSuccess  = 0 // Operation completed successfully
	ExitGeneral  = 1 // Unknown/unhandled error
	ExitStore    = 2 // Result database unreachable or corrupt
	ExitNotFound = 3 // Resource doesn't exist
)

// Error codes (strings) for programmatic error handling
const (
	CodeStoreOpenFailed      = "STORE_OPEN_FAILED"
	CodeResultNotFound       = "RESULT_NOT_FOUND"
	CodeEvidenceDecodeFailed = "EVIDENCE_DECODE_FAILED"
	CodeInvalidFilter        = "INVALID_FILTER"
	CodeInternalError        = "INTERNAL_ERROR"
)

// CLIError represents a structured error for CLI output.
type CLIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
	ExitCode  int    `json:"-"` // Not serialized, used for os.Exit
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// StoreOpenFailed creates an error for an unreachable result database.
func StoreOpenFailed(path string, err error) *CLIError {
	return &CLIError{
		Code:      CodeStoreOpenFailed,
		Message:   fmt.Sprintf("failed to open result database '%s': %s", path, err),
		Hint:      "Check that attestd has run at least once, or pass --db",
		Retryable: true,
		ExitCode:  ExitStore,
	}
}

// ResultNotFound creates an error when no result exists for an endpoint.
func ResultNotFound(endpoint string) *CLIError {
	return &CLIError{
		Code:      CodeResultNotFound,
		Message:   fmt.Sprintf("no attestation result for endpoint '%s'", endpoint),
		Hint:      "Check the endpoint name with 'attestctl results list'",
		Retryable: false,
		ExitCode:  ExitNotFound,
	}
}

// EvidenceDecodeFailed creates an error for a corrupt evidence snapshot.
func EvidenceDecodeFailed(endpoint string, err error) *CLIError {
	return &CLIError{
		Code:      CodeEvidenceDecodeFailed,
		Message:   fmt.Sprintf("failed to decode evidence for '%s': %s", endpoint, err),
		Hint:      "The stored snapshot is corrupt; a new handshake will replace it",
		Retryable: false,
		ExitCode:  ExitGeneral,
	}
}

// InvalidFilter creates an error for an unrecognized filter value.
func InvalidFilter(flag, value string, allowed ...string) *CLIError {
	hint := ""
	if len(allowed) > 0 {
		hint = fmt.Sprintf("Valid values: %s", strings.Join(allowed, ", "))
	}
	return &CLIError{
		Code:      CodeInvalidFilter,
		Message:   fmt.Sprintf("invalid value '%s' for --%s", value, flag),
		Hint:      hint,
		Retryable: false,
		ExitCode:  ExitGeneral,
	}
}

// InternalError creates an error for unexpected internal errors.
func InternalError(err error) *CLIError {
	msg := "an unexpected internal error occurred"
	if err != nil {
		msg = fmt.Sprintf("internal error: %s", err.Error())
	}
	return &CLIError{
		Code:      CodeInternalError,
		Message:   msg,
		Retryable: false,
		ExitCode:  ExitGeneral,
	}
}

// FormatError returns the error formatted for the given output format.
// Supported formats: "json" for JSON output, anything else for
// human-readable format.
func FormatError(err *CLIError, outputFormat string) string {
	if outputFormat == "json" {
		data, jsonErr := json.MarshalIndent(err, "", "  ")
		if jsonErr != nil {
			// Fallback to simple JSON if marshaling fails
			return fmt.Sprintf(`{"code":"%s","message":"%s"}`, err.Code, err.Message)
		}
		return string(data)
	}

	output := fmt.Sprintf("Error [%s]: %s", err.Code, err.Message)
	if err.Hint != "" {
		output += fmt.Sprintf("\nHint: %s", err.Hint)
	}
	return output
}

// PrintError prints the error to stderr in the appropriate format.
func PrintError(err *CLIError, outputFormat string) {
	fmt.Fprintln(os.Stderr, FormatError(err, outputFormat))
}
