package judge

import (
	"context"
	"errors"
)

// ExecRequest is one run of untrusted code against a single stdin.
type ExecRequest struct {
	Language    string `json:"language"`
	Code        string `json:"code"`
	Stdin       string `json:"stdin"`
	TimeLimitMs int    `json:"time_limit_ms"`
}

// ExecResult is the execution service's report for one run.
type ExecResult struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	ExitCode      int    `json:"exit_code"`
	TimedOut      bool   `json:"timed_out"`
	CompileError  bool   `json:"compile_error"`
	CompileOutput string `json:"compile_output,omitempty"`
	RuntimeMs     int    `json:"runtime_ms"`
}

// ErrExecutorUnavailable is returned once connectivity retries are exhausted.
// Callers surface it as a JudgingFailed verdict, never as WrongAnswer.
var ErrExecutorUnavailable = errors.New("execution service unavailable")

// Executor runs code against one input. Implementations own all resilience
// (timeouts, retries, failure classification); the execution service itself
// is an untrusted, possibly slow or unavailable network dependency.
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)
}
