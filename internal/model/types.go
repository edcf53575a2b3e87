// Package model defines the domain types for the appenv CLI.
//
// All entities in this package are pure data structures with no external
// dependencies. They represent the resolved client environment, the run
// mode, and the error/exit-code contract shared by every command.
package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Mode identifies the build mode an environment is resolved for.
// The mode selects which dotenv files participate in resolution and
// determines the forced NODE_ENV value.
type Mode string

const (
	// ModeDevelopment is the mode used by local dev servers.
	ModeDevelopment Mode = "development"

	// ModeProduction is the mode used when producing a distributable build.
	ModeProduction Mode = "production"

	// ModeTest is the mode used by test runners. In this mode .env.local
	// is excluded so tests behave identically for everyone.
	ModeTest Mode = "test"
)

// String returns the string representation of Mode.
// This satisfies fmt.Stringer for human-readable CLI output.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks whether the Mode value is one of the predefined modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeDevelopment, ModeProduction, ModeTest:
		return true
	default:
		return false
	}
}

// ParseMode converts a string to a Mode.
// Returns an error if the string does not match any valid mode.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(s))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid mode: %q (valid: development, production, test)", s)
	}
	return mode, nil
}

// Reserved variable names that are always part of the client environment
// regardless of the configured prefix.
const (
	// VarNodeEnv is forced to the run mode and cannot be overridden by
	// env files or the shell.
	VarNodeEnv = "NODE_ENV"

	// VarPublicURL holds the base URL the built assets are served from.
	VarPublicURL = "PUBLIC_URL"
)

// DefaultPrefix is the variable name prefix required for a variable to be
// exposed to client code when the project config does not override it.
const DefaultPrefix = "REACT_APP_"

// Variable source identifiers used in the Source field of Variable.
// File-sourced variables use the env file name (e.g. ".env.local") instead.
const (
	// SourceShell marks a variable inherited from the process environment.
	SourceShell = "shell"

	// SourceBuiltin marks a variable synthesized by the resolver itself
	// (NODE_ENV, and PUBLIC_URL when it falls back to the project config).
	SourceBuiltin = "builtin"
)

// Variable is a single resolved environment variable together with the
// source it was taken from. Source is SourceShell, SourceBuiltin, or the
// base name of the env file that defined the winning value.
type Variable struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// ClientEnv is the fully resolved client-visible environment for one mode.
// This is the primary aggregate entity in the domain: every command
// (show, inject, check, exec, build) operates on a ClientEnv.
type ClientEnv struct {
	// Mode is the mode this environment was resolved for.
	Mode Mode `json:"mode"`

	// Prefix is the variable name prefix that was applied as the filter.
	Prefix string `json:"prefix"`

	// Vars holds the resolved variables, sorted by name. Sorting makes
	// every rendering of the environment deterministic.
	Vars []Variable `json:"vars"`
}

// Lookup returns the value for name and whether it is defined.
func (e *ClientEnv) Lookup(name string) (string, bool) {
	for _, v := range e.Vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Map returns the environment as a plain name→value map.
func (e *ClientEnv) Map() map[string]string {
	m := make(map[string]string, len(e.Vars))
	for _, v := range e.Vars {
		m[v.Name] = v.Value
	}
	return m
}

// Environ returns the environment in the "NAME=value" form accepted by
// os/exec and the Docker API.
func (e *ClientEnv) Environ() []string {
	environ := make([]string, 0, len(e.Vars))
	for _, v := range e.Vars {
		environ = append(environ, v.Name+"="+v.Value)
	}
	return environ
}

// Sort orders Vars by name in place. Resolvers call this once after
// assembling the variable set.
func (e *ClientEnv) Sort() {
	sort.Slice(e.Vars, func(i, j int) bool {
		return e.Vars[i].Name < e.Vars[j].Name
	})
}

// varNameRegex matches valid environment variable names: a letter or
// underscore followed by letters, digits, and underscores.
var varNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidVarName reports whether name is a syntactically valid environment
// variable name.
func ValidVarName(name string) bool {
	return varNameRegex.MatchString(name)
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigInvalid indicates the project configuration (appenv.json /
	// appenv.yaml) or a command flag value is invalid.
	ExitConfigInvalid ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitEnvFileInvalid indicates an env file exists but could not be
	// read or parsed.
	ExitEnvFileInvalid ExitCode = 4

	// ExitLintFindings indicates the check command found problems.
	ExitLintFindings ExitCode = 5

	// ExitInjectTargetMissing indicates an inject target file or the
	// public directory does not exist.
	ExitInjectTargetMissing ExitCode = 6

	// ExitChildFailed indicates the child process run by exec or build
	// exited non-zero. The actual child exit code is propagated when known.
	ExitChildFailed ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
