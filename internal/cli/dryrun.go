package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/sparkbridge/pkg/connstr"
	"github.com/aretw0/sparkbridge/pkg/domain"
)

// DryRunExecutor prints every directive instead of sending it and always
// succeeds. Passwords in registration directives are masked.
type DryRunExecutor struct {
	mu    sync.Mutex
	out   io.Writer
	count int
}

// NewDryRunExecutor creates a DryRunExecutor writing to out.
func NewDryRunExecutor(out io.Writer) *DryRunExecutor {
	return &DryRunExecutor{out: out}
}

// Dispatch implements ports.Executor.
func (e *DryRunExecutor) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.count++
	fmt.Fprintf(e.out, "--- directive %d (silent=%t) ---\n%s\n", e.count, directive.Params.Silent, maskSecret(directive.Code))
	return domain.DispatchResult{Status: domain.StatusOK, ExecutionCount: e.count}, nil
}

// maskSecret hides the password of a registration directive.
func maskSecret(code string) string {
	fields := strings.Fields(code)
	for i, f := range fields {
		cfg, err := connstr.Parse(f)
		if err != nil || cfg.Secret == "" {
			continue
		}
		fields[i] = connstr.Build(cfg.Endpoint, cfg.Identity, "****")
		return strings.Join(fields, " ")
	}
	return code
}
