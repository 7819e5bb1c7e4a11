package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/service"
)

// stepClock returns start, then advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{next: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}

type invalidation struct {
	UserID uuid.UUID
	Views  []service.View
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls []invalidation
	err   error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userID uuid.UUID, views ...service.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, invalidation{UserID: userID, Views: views})
	return r.err
}

func (r *recordingInvalidator) Calls() []invalidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]invalidation(nil), r.calls...)
}

type fakeProvider struct {
	mu      sync.Mutex
	foods   []model.Food
	err     error
	queries []string
}

func (p *fakeProvider) Search(_ context.Context, query string, limit int) ([]model.Food, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, query)
	if p.err != nil {
		return nil, p.err
	}
	out := append([]model.Food(nil), p.foods...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

func externalFood(code, name string, cal float64) model.Food {
	return model.Food{
		Source:       model.SourceExternal,
		SourceFoodID: "off-" + code,
		Name:         name,
		ServingUnit:  "g",
		ServingSize:  100,
		Calories:     cal,
	}
}

func strPtr(s string) *string {
	return &s
}
