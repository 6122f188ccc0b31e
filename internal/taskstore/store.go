// Package taskstore holds the authoritative local copy of the task list.
// Mutations are server-confirmed: nothing changes locally until the backend
// answers, so a failed call leaves the cache exactly as it was.
package taskstore

import (
	"context"
	"sync"

	"taskcli/internal/api"
)

// API is the slice of the backend client the task store uses.
type API interface {
	ListTasks(ctx context.Context) ([]api.Task, error)
	CreateTask(ctx context.Context, req api.TaskCreate) (api.Task, error)
	UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (api.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// SessionSource reports whether a session is active. Without one the store
// stays empty and never touches the network.
type SessionSource interface {
	Authenticated() bool
}

// Snapshot is the task list state at one point in time.
type Snapshot struct {
	Tasks   []api.Task
	Loading bool
	Err     string
}

// Store is the in-memory task cache for the current session.
type Store struct {
	api     API
	session SessionSource

	mu      sync.Mutex
	tasks   []api.Task
	loading bool
	err     string
	subs    []func(Snapshot)
}

// New creates an empty task store.
func New(backend API, session SessionSource) *Store {
	return &Store{api: backend, session: session}
}

// Subscribe registers fn to run after every state change. Subscribers are
// invoked synchronously, in registration order.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Find returns the cached task with the given id.
func (s *Store) Find(id string) (api.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return api.Task{}, false
}

// Load replaces the cache with the full list from the backend, in server
// order. Without a session it resets to empty without a network call. On
// failure the cache is emptied and the error recorded and returned.
func (s *Store) Load(ctx context.Context) error {
	if !s.session.Authenticated() {
		s.set(nil, false, "")
		return nil
	}

	s.set(s.copyTasks(), true, "")

	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		s.set(nil, false, err.Error())
		return err
	}

	s.set(tasks, false, "")
	return nil
}

// Create sends a creation request and, on success, prepends the server's
// returned task. Title validation is the caller's responsibility.
func (s *Store) Create(ctx context.Context, title string, description *string) (api.Task, error) {
	created, err := s.api.CreateTask(ctx, api.TaskCreate{Title: title, Description: description})
	if err != nil {
		return api.Task{}, err
	}

	s.mu.Lock()
	s.tasks = append([]api.Task{created}, s.tasks...)
	s.notifyLocked()
	return created, nil
}

// Update sends a partial update and replaces the matching task with the
// server's representation. The display order is re-derived only when the
// patch carried the completed field; other patches preserve it.
func (s *Store) Update(ctx context.Context, id string, patch api.TaskPatch) (api.Task, error) {
	updated, err := s.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return api.Task{}, err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = updated
			break
		}
	}
	if patch.Completed != nil {
		s.tasks = sortForDisplay(s.tasks)
	}
	s.notifyLocked()
	return updated, nil
}

// Delete removes the task with the given id after the backend confirms.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	s.notifyLocked()
	return nil
}

// Toggle flips the completed state of a cached task. An unknown id is a
// no-op: no network call, no state change.
func (s *Store) Toggle(ctx context.Context, id string) error {
	task, ok := s.Find(id)
	if !ok {
		return nil
	}
	completed := !task.Completed
	_, err := s.Update(ctx, id, api.TaskPatch{Completed: &completed})
	return err
}

// sortForDisplay partitions into incomplete-then-completed, each group in
// its prior relative order.
func sortForDisplay(tasks []api.Task) []api.Task {
	sorted := make([]api.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.Completed {
			sorted = append(sorted, t)
		}
	}
	for _, t := range tasks {
		if t.Completed {
			sorted = append(sorted, t)
		}
	}
	return sorted
}

// set replaces the whole state and notifies subscribers.
func (s *Store) set(tasks []api.Task, loading bool, errMsg string) {
	s.mu.Lock()
	s.tasks = tasks
	s.loading = loading
	s.err = errMsg
	s.notifyLocked()
}

// notifyLocked snapshots, unlocks, and runs subscribers. Callers must hold
// the mutex and must not use it afterwards.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:   s.copyTasksLocked(),
		Loading: s.loading,
		Err:     s.err,
	}
}

func (s *Store) copyTasks() []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTasksLocked()
}

func (s *Store) copyTasksLocked() []api.Task {
	if s.tasks == nil {
		return nil
	}
	out := make([]api.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
