package memory

import (
	"context"
	"sync"

	"github.com/aretw0/sparkbridge/pkg/domain"
)

// Reply is a scripted executor answer.
type Reply struct {
	Result domain.DispatchResult
	Err    error
}

// Executor implements ports.Executor by recording every directive and answering
// from a script. Directives without a scripted reply succeed.
type Executor struct {
	mu         sync.Mutex
	dispatched []domain.Directive
	byCode     map[string]Reply
	queue      []Reply
}

// NewExecutor creates an Executor that answers "ok" to everything.
func NewExecutor() *Executor {
	return &Executor{byCode: make(map[string]Reply)}
}

// ReplyTo scripts the reply for every directive whose code equals code.
func (e *Executor) ReplyTo(code string, reply Reply) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.byCode[code] = reply
	return e
}

// Enqueue scripts replies consumed in order by directives without a ReplyTo match.
func (e *Executor) Enqueue(replies ...Reply) *Executor {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = append(e.queue, replies...)
	return e
}

// Dispatch implements ports.Executor.
func (e *Executor) Dispatch(ctx context.Context, directive domain.Directive) (domain.DispatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dispatched = append(e.dispatched, directive)

	if reply, ok := e.byCode[directive.Code]; ok {
		return reply.Result, reply.Err
	}
	if len(e.queue) > 0 {
		reply := e.queue[0]
		e.queue = e.queue[1:]
		return reply.Result, reply.Err
	}
	return domain.OK(), nil
}

// Dispatched returns a copy of the directives received so far.
func (e *Executor) Dispatched() []domain.Directive {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Directive(nil), e.dispatched...)
}

// Codes returns the code of every directive received so far.
func (e *Executor) Codes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	codes := make([]string, len(e.dispatched))
	for i, d := range e.dispatched {
		codes[i] = d.Code
	}
	return codes
}

// Reset forgets recorded directives. Scripted replies are kept.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatched = nil
}
