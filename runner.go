package sparkbridge

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// Runner reads cells from Input and executes them on a Kernel.
// Cells are separated by a blank line; a line holding only "exit" or "quit" ends the loop.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Silent   bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms text before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes cells until EOF, an exit command or context cancellation.
// Cell failures are printed and do not stop the loop; a faulted session keeps
// rejecting cells until the kernel is shut down.
func (r *Runner) Run(ctx context.Context, kernel *Kernel) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	scanner := bufio.NewScanner(r.Input)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- SparkBridge ---")
		fmt.Fprintln(r.Output, "End a cell with an empty line. Type 'exit' to quit.")
	}

	var cell []string
	flush := func() {
		code := strings.Join(cell, "\n")
		cell = cell[:0]
		if strings.TrimSpace(code) == "" {
			return
		}
		r.execute(ctx, kernel, code)
	}

	r.prompt(len(cell))
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimRight(scanner.Text(), "\r")

		if len(cell) == 0 {
			switch strings.TrimSpace(line) {
			case "exit", "quit":
				if !r.Headless {
					fmt.Fprintln(r.Output, "Bye!")
				}
				return nil
			}
		}

		if strings.TrimSpace(line) == "" {
			flush()
		} else {
			cell = append(cell, line)
		}
		r.prompt(len(cell))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	flush()
	return nil
}

func (r *Runner) prompt(lines int) {
	if r.Headless {
		return
	}
	if lines == 0 {
		fmt.Fprint(r.Output, "> ")
		return
	}
	fmt.Fprint(r.Output, ". ")
}

func (r *Runner) execute(ctx context.Context, kernel *Kernel, code string) {
	res, err := kernel.Execute(ctx, code, r.Silent)
	var directiveErr *domain.DirectiveError
	switch {
	case errors.As(err, &directiveErr):
		r.print(fmt.Sprintf("Error: %s", directiveErr.Message))
	case errors.Is(err, domain.ErrSessionFaulted):
		r.print("Session faulted. Restart the kernel to continue.")
	case err != nil:
		r.print(fmt.Sprintf("Error: %v", err))
	default:
		if text, ok := res.Data["text/plain"].(string); ok && text != "" {
			r.print(text)
		} else if !r.Headless {
			r.print(fmt.Sprintf("[%d] %s", res.ExecutionCount, res.Status))
		}
	}
}

func (r *Runner) print(text string) {
	output := text
	if r.Renderer != nil {
		if rendered, err := r.Renderer(text); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}
