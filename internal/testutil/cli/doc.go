// Package cli provides shared test utilities for testing cobra
// commands.
//
// Execute a command and check output:
//
//	result := cli.Run(myCmd, "--help")
//	result.AssertSuccess(t)
//	result.AssertContains(t, "Usage:")
//
// Run captures both stdout and stderr as written through the command's
// own output streams. For commands with persistent state, use Reset
// before execution:
//
//	result := cli.Reset(rootCmd).Run("--help")
package cli
