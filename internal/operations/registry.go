package operations

import (
	"fmt"
	"strings"
	"sync"
)

// Registry manages registered steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // registration order
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{steps: make(map[string]Step)}
}

// Register adds a step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}
	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}
	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, ok := r.steps[id]
	if !ok {
		return nil, fmt.Errorf("step with ID %s not found (registered: %s)", id, strings.Join(r.order, ", "))
	}
	return step, nil
}

// Has reports whether a step is registered
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.steps[id]
	return ok
}

// ListIDs returns the registered step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// GetDependencyOrder returns the steps topologically sorted; among steps
// that become ready together, registration order wins.
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inDegree := make(map[string]int, len(r.steps))
	dependents := make(map[string][]string)
	for _, id := range r.order {
		for _, dep := range r.steps[id].GetDependencies() {
			if _, ok := r.steps[dep]; !ok {
				return nil, NewDependencyError(id, dep, fmt.Sprintf("depends on unknown step %s", dep))
			}
			inDegree[id]++
			dependents[dep] = append(dependents[dep], id)
		}
	}

	done := make(map[string]bool, len(r.steps))
	ordered := make([]Step, 0, len(r.steps))
	for len(ordered) < len(r.steps) {
		progressed := false
		for _, id := range r.order {
			if done[id] || inDegree[id] > 0 {
				continue
			}
			done[id] = true
			ordered = append(ordered, r.steps[id])
			for _, d := range dependents[id] {
				inDegree[d]--
			}
			progressed = true
			break
		}
		if !progressed {
			return nil, fmt.Errorf("dependency cycle detected")
		}
	}
	return ordered, nil
}

// Select returns the requested steps in dependency order. An empty request
// selects every step.
func (r *Registry) Select(ids []string) ([]Step, error) {
	ordered, err := r.GetDependencyOrder()
	if err != nil || len(ids) == 0 {
		return ordered, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !r.Has(id) {
			return nil, fmt.Errorf("step with ID %s not found (registered: %s)", id, strings.Join(r.ListIDs(), ", "))
		}
		want[id] = true
	}
	selected := make([]Step, 0, len(ids))
	for _, s := range ordered {
		if want[s.ID()] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
