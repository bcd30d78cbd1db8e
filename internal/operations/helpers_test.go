package operations

import (
	"context"
	"sync"
)

// fakeStep records its execution and returns a fixed error
type fakeStep struct {
	BaseStage
	err   error
	calls *callLog
}

type callLog struct {
	mu  sync.Mutex
	ids []string
}

func (c *callLog) add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, id)
}

func (c *callLog) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.ids...)
}

func newFakeStep(id string, deps []string, critical bool, err error, calls *callLog) *fakeStep {
	base := NewBaseStage(id, "step "+id, deps)
	base.critical = critical
	return &fakeStep{BaseStage: base, err: err, calls: calls}
}

func (s *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	if s.calls != nil {
		s.calls.add(s.ID())
	}
	return s.err
}
