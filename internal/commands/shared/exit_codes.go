// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes of the blockza-mcp binary.
const (
	ExitSuccess   = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitConfig    = 3
	ExitToolError = 4
)

// Error codes for structured JSON output.
const (
	ErrorCodeFailure     = "E001"
	ErrorCodeUsage       = "E002"
	ErrorCodeConfig      = "E003"
	ErrorCodeToolError   = "E004"
	ErrorCodeUnknownTool = "E005"
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUsageError creates an error for invalid arguments or flags.
func NewUsageError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: msg, Cause: cause}
}

// NewConfigError creates an error for configuration that failed to load.
func NewConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Cause: cause}
}

// NewToolError creates an error for a tool call that returned an error result.
func NewToolError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitToolError, Message: msg, Cause: cause}
}

// ExitCode returns the exit code for err: the code of the first ExitError in
// its chain, ExitFailure otherwise, or ExitSuccess for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// errorCode maps an exit code to its JSON error code.
func errorCode(exitCode int) string {
	switch exitCode {
	case ExitUsage:
		return ErrorCodeUsage
	case ExitConfig:
		return ErrorCodeConfig
	case ExitToolError:
		return ErrorCodeToolError
	default:
		return ErrorCodeFailure
	}
}

// WriteError reports err on stderr, or as a JSON error envelope on stdout
// when --json is set, and returns the exit code to use.
func WriteError(stdout, stderr io.Writer, command string, err error) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}
	if GetJSON() {
		_ = EmitJSONError(stdout, command, []JSONError{{
			Code:    errorCode(code),
			Message: err.Error(),
		}})
		return code
	}
	fmt.Fprintln(stderr, RenderError("Error: "+err.Error()))
	return code
}

// HandleExitError reports err and exits with the matching code. It returns
// only when err is nil.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(WriteError(os.Stdout, os.Stderr, "blockza-mcp", err))
}
