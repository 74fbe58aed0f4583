package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// Executor implements ports.Executor by POSTing every directive as JSON to
// <BaseURL>/dispatch and decoding a domain.DispatchResult from the reply.
type Executor struct {
	BaseURL string
	Client  *http.Client
	Header  http.Header
}

// NewExecutor creates an Executor for a kernel gateway.
func NewExecutor(baseURL string, timeout time.Duration) *Executor {
	return &Executor{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Header:  make(http.Header),
	}
}

// Dispatch implements ports.Executor.
func (e *Executor) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	body, err := json.Marshal(directive)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("failed to marshal directive: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/dispatch", bytes.NewReader(body))
	if err != nil {
		return domain.DispatchResult{}, err
	}
	for k, vs := range e.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		return domain.DispatchResult{}, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.DispatchResult{}, fmt.Errorf("gateway returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var result domain.DispatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.DispatchResult{}, fmt.Errorf("invalid gateway reply: %w", err)
	}
	if result.Status != domain.StatusOK && result.Status != domain.StatusError {
		return domain.DispatchResult{}, fmt.Errorf("invalid gateway reply: unknown status %q", result.Status)
	}
	return result, nil
}
