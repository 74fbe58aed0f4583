// Package process provides an Executor that hands every directive to a local command.
//
// The command receives the directive code on stdin and the dispatch parameters as
// environment variables:
//
//	SPARKBRIDGE_SILENT=true|false
//	SPARKBRIDGE_STORE_HISTORY=true|false
//	SPARKBRIDGE_ALLOW_STDIN=true|false
//
// It must print one JSON reply on stdout:
//
//	{"status": "ok", "execution_count": 3, "data": {"text/plain": "..."}}
//	{"status": "error", "ename": "SyntaxError", "evalue": "invalid syntax"}
//
// A non-zero exit or an unreadable reply is a transport error.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

const waitDelay = 500 * time.Millisecond

// Executor implements ports.Executor by running a configured command per directive.
type Executor struct {
	cfg Config
}

// NewExecutor creates an Executor for cfg.
func NewExecutor(cfg Config) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Executor{cfg: cfg}, nil
}

type reply struct {
	Status         domain.DispatchStatus `json:"status"`
	ErrorName      string                `json:"ename"`
	ErrorValue     string                `json:"evalue"`
	ExecutionCount int                   `json:"execution_count"`
	Data           map[string]any        `json:"data"`
}

// Dispatch implements ports.Executor.
func (e *Executor) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.cfg.Command, e.cfg.Args...)
	cmd.Dir = e.cfg.Dir
	// Children that inherit stdout must not keep Wait blocked after a kill.
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(directive.Code)

	// Parameters travel as environment variables, never as flags.
	env := cmd.Environ()
	for k, v := range e.cfg.Environment {
		env = append(env, k+"="+v)
	}
	p := directive.Params
	env = append(env,
		"SPARKBRIDGE_SILENT="+strconv.FormatBool(p.Silent),
		"SPARKBRIDGE_STORE_HISTORY="+strconv.FormatBool(p.RecordHistory),
		"SPARKBRIDGE_ALLOW_STDIN="+strconv.FormatBool(p.AllowInteractiveInput),
	)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return domain.DispatchResult{}, fmt.Errorf("executor command interrupted: %w", ctx.Err())
		}
		return domain.DispatchResult{}, fmt.Errorf("executor command failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}

	var r reply
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &r); err != nil {
		return domain.DispatchResult{}, fmt.Errorf("invalid executor reply: %w", err)
	}
	switch r.Status {
	case domain.StatusOK, domain.StatusError:
	default:
		return domain.DispatchResult{}, fmt.Errorf("invalid executor reply: unknown status %q", r.Status)
	}

	return domain.DispatchResult{
		Status:         r.Status,
		ErrorName:      r.ErrorName,
		ErrorValue:     r.ErrorValue,
		ExecutionCount: r.ExecutionCount,
		Data:           r.Data,
	}, nil
}
