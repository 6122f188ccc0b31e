// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskcli/internal/api"
)

// FakeAPI is an in-memory backend implementing the session and task store
// interfaces. It hands out uuid tokens and ids the way the real server
// does, and records every network-shaped call so tests can assert that an
// operation stayed local.
type FakeAPI struct {
	mu       sync.Mutex
	users    map[string]string   // username -> password
	sessions map[string]api.User // access token -> profile
	tasks    []api.Task
	token    *oauth2.Token // token currently attached to requests
	calls    []string

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	MeErr       error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeAPI creates an empty fake backend.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		users:    make(map[string]string),
		sessions: make(map[string]api.User),
	}
}

// errUnauthorized mirrors the server's rejected-token response.
func errUnauthorized() error {
	return &api.Error{Status: 401, Message: "Сессия истекла, войдите заново"}
}

// AddUser seeds an account.
func (f *FakeAPI) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// IssueToken mints a valid token for username, as if a login had happened
// elsewhere. Seeds the account if needed.
func (f *FakeAPI) IssueToken(username string) *oauth2.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; !ok {
		f.users[username] = ""
	}
	return f.mintLocked(username)
}

// SeedTask appends a task with server-assigned id and timestamps and
// returns it.
func (f *FakeAPI) SeedTask(title string, description *string, completed bool) api.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := f.newTaskLocked(title, description)
	task.Completed = completed
	if completed {
		now := task.CreatedAt
		task.CompletedAt = &now
	}
	f.tasks = append(f.tasks, task)
	return task
}

// Tasks returns a copy of the backend's task list, in server order.
func (f *FakeAPI) Tasks() []api.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]api.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns the calls made so far, e.g. "POST /auth/login".
func (f *FakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// SetToken implements session.API.
func (f *FakeAPI) SetToken(tok *oauth2.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = tok
}

// ClearToken implements session.API.
func (f *FakeAPI) ClearToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = nil
}

// Login implements session.API.
func (f *FakeAPI) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	f.record("POST /auth/login")
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[username]
	if !ok || stored != password {
		return nil, &api.Error{Status: 401, Message: "Неверное имя пользователя или пароль"}
	}
	return f.mintLocked(username), nil
}

// Register implements session.API.
func (f *FakeAPI) Register(ctx context.Context, username, password string) (*oauth2.Token, error) {
	f.record("POST /auth/register")
	if f.RegisterErr != nil {
		return nil, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return nil, &api.Error{Status: 400, Message: "Имя пользователя уже занято"}
	}
	f.users[username] = password
	return f.mintLocked(username), nil
}

// Me implements session.API.
func (f *FakeAPI) Me(ctx context.Context) (api.User, error) {
	f.record("GET /auth/me")
	if f.MeErr != nil {
		return api.User{}, f.MeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, err := f.authedLocked()
	if err != nil {
		return api.User{}, err
	}
	return user, nil
}

// ListTasks implements taskstore.API.
func (f *FakeAPI) ListTasks(ctx context.Context) ([]api.Task, error) {
	f.record("GET /tasks")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return nil, err
	}
	out := make([]api.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

// CreateTask implements taskstore.API.
func (f *FakeAPI) CreateTask(ctx context.Context, req api.TaskCreate) (api.Task, error) {
	f.record("POST /tasks")
	if f.CreateErr != nil {
		return api.Task{}, f.CreateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return api.Task{}, err
	}
	task := f.newTaskLocked(req.Title, req.Description)
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements taskstore.API.
func (f *FakeAPI) UpdateTask(ctx context.Context, id string, patch api.TaskPatch) (api.Task, error) {
	f.record("PATCH /tasks/" + id)
	if f.UpdateErr != nil {
		return api.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return api.Task{}, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			if *patch.Description == "" {
				// Cleared: goes out as null on the wire.
				t.Description = nil
			} else {
				t.Description = patch.Description
			}
		}
		if patch.Completed != nil && *patch.Completed != t.Completed {
			t.Completed = *patch.Completed
			if t.Completed {
				now := time.Now().UTC()
				t.CompletedAt = &now
			} else {
				t.CompletedAt = nil
			}
		}
		t.UpdatedAt = time.Now().UTC()
		return *t, nil
	}
	return api.Task{}, &api.Error{Status: 404, Message: "Задача не найдена"}
}

// DeleteTask implements taskstore.API.
func (f *FakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.record("DELETE /tasks/" + id)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.authedLocked(); err != nil {
		return err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &api.Error{Status: 404, Message: "Задача не найдена"}
}

func (f *FakeAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *FakeAPI) mintLocked(username string) *oauth2.Token {
	tok := &oauth2.Token{AccessToken: uuid.NewString(), TokenType: "bearer"}
	f.sessions[tok.AccessToken] = api.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	return tok
}

func (f *FakeAPI) authedLocked() (api.User, error) {
	if f.token == nil {
		return api.User{}, errUnauthorized()
	}
	user, ok := f.sessions[f.token.AccessToken]
	if !ok {
		return api.User{}, errUnauthorized()
	}
	return user, nil
}

func (f *FakeAPI) newTaskLocked(title string, description *string) api.Task {
	now := time.Now().UTC()
	return api.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
