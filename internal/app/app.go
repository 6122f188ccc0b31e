// Package app wires the backend client and the stores into one application
// value created at startup and shared by every command.
package app

import (
	"context"
	"log"
	"os"

	"taskcli/internal/api"
	"taskcli/internal/config"
	"taskcli/internal/session"
	"taskcli/internal/taskstore"
)

// App is the application state: one session store and one task store over
// a shared backend client. Created once, torn down never, reset on logout.
type App struct {
	Session *session.Store
	Tasks   *taskstore.Store
}

// New builds an App over the real backend client and wires the session to
// the task store: whenever the session resolves or the token changes, the
// task list reloads (or empties, when the session became anonymous).
func New(ctx context.Context, cfg *config.Config) *App {
	client := api.New(cfg.BaseURL)
	if cfg.Debug {
		client.SetLogger(log.New(os.Stderr, "api: ", 0))
	}

	sess := session.New(cfg, client)
	tasks := taskstore.New(client, sess)
	wire(ctx, sess, tasks)

	return &App{Session: sess, Tasks: tasks}
}

// NewWithAPI builds an App over an injected backend (for testing).
func NewWithAPI(ctx context.Context, cfg *config.Config, backend Backend) *App {
	sess := session.New(cfg, backend)
	tasks := taskstore.New(backend, sess)
	wire(ctx, sess, tasks)

	return &App{Session: sess, Tasks: tasks}
}

// Backend is everything the stores need from a backend client.
type Backend interface {
	session.API
	taskstore.API
}

func wire(ctx context.Context, sess *session.Store, tasks *taskstore.Store) {
	lastToken := ""
	sess.Subscribe(func(st session.State) {
		if st.Loading {
			return
		}
		if st.Token == lastToken {
			return
		}
		lastToken = st.Token
		// Load errors land in the task snapshot; commands and the UI
		// surface them from there.
		_ = tasks.Load(ctx)
	})
}
