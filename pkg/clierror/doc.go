// Package clierror provides structured errors for CLI output with codes,
// exit codes, and remediation hints.
//
// CLI errors separate internal error details from what gets displayed
// to operators: each carries a stable code for scripting, a
// human-readable message, and an optional hint.
package clierror
