package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"taskcli/internal/api"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("login must not carry an auth header, got %q", got)
		}
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode credentials: %v", err)
		}
		if creds.Username != "bob" || creds.Password != "hunter2" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-123",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	tok, err := c.Login(context.Background(), "bob", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok.AccessToken != "tok-123" {
		t.Errorf("expected access token tok-123, got %q", tok.AccessToken)
	}
}

func TestClient_BearerHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	c.SetToken(&oauth2.Token{AccessToken: "tok-123", TokenType: "bearer"})
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
}

func TestClient_ListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`[
			{"id":"t1","title":"Buy milk","description":null,"completed":false,
			 "completed_at":null,"created_at":"2026-01-02T10:00:00Z","updated_at":"2026-01-02T10:00:00Z"},
			{"id":"t2","title":"Call mom","description":"after lunch","completed":true,
			 "completed_at":"2026-01-03T09:00:00Z","created_at":"2026-01-01T08:00:00Z","updated_at":"2026-01-03T09:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "t1" || tasks[0].Description != nil {
		t.Errorf("unexpected first task: %+v", tasks[0])
	}
	if tasks[1].Description == nil || *tasks[1].Description != "after lunch" {
		t.Errorf("unexpected second task description: %+v", tasks[1].Description)
	}
	if !tasks[1].Completed || tasks[1].CompletedAt == nil {
		t.Errorf("expected second task completed with timestamp: %+v", tasks[1])
	}
}

func TestClient_UpdateTask_ClearsDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/t1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		// A cleared description must be an explicit null, not omitted and
		// not an empty string.
		if !strings.Contains(string(body), `"description":null`) {
			t.Errorf("expected explicit null description, got %s", body)
		}
		if strings.Contains(string(body), `"title"`) {
			t.Errorf("unset title must be omitted, got %s", body)
		}
		w.Write([]byte(`{"id":"t1","title":"Call mom","description":null,"completed":false,
			"completed_at":null,"created_at":"2026-01-02T10:00:00Z","updated_at":"2026-01-02T11:00:00Z"}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	empty := ""
	task, err := c.UpdateTask(context.Background(), "t1", api.TaskPatch{Description: &empty})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.Description != nil {
		t.Errorf("expected null description in the echo, got %q", *task.Description)
	}
}

func TestClient_DeleteTask_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/tasks/t1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	if err := c.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Invalid credentials"}`))
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	_, err := c.Login(context.Background(), "bob", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", apiErr.Status)
	}
	if apiErr.Message != "Неверное имя пользователя или пароль" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
	if err.Error() != apiErr.Message {
		t.Errorf("Error() should return the normalized message, got %q", err.Error())
	}
}

func TestClient_ClearToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no auth header after ClearToken, got %q", got)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL)
	c.SetToken(&oauth2.Token{AccessToken: "tok-123"})
	c.ClearToken()
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
}
