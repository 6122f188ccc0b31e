package taskstore_test

import (
	"context"
	"testing"

	"taskcli/internal/api"
	"taskcli/internal/taskstore"
	"taskcli/internal/testutil"
)

// staticSession is a SessionSource pinned to one value.
type staticSession bool

func (s staticSession) Authenticated() bool { return bool(s) }

func newStore(t *testing.T) (*taskstore.Store, *testutil.FakeAPI) {
	t.Helper()
	f := testutil.NewFakeAPI()
	f.SetToken(f.IssueToken("bob"))
	return taskstore.New(f, staticSession(true)), f
}

func ids(tasks []api.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func sameIDs(a []api.Task, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i] {
			return false
		}
	}
	return true
}

func TestLoad_NoSession(t *testing.T) {
	f := testutil.NewFakeAPI()
	s := taskstore.New(f, staticSession(false))

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Tasks) != 0 || snap.Loading || snap.Err != "" {
		t.Errorf("expected empty resolved state, got %+v", snap)
	}
	if calls := f.Calls(); len(calls) != 0 {
		t.Errorf("expected no network calls without a session, got %v", calls)
	}
}

func TestLoad_ServerOrder(t *testing.T) {
	s, f := newStore(t)
	t1 := f.SeedTask("first", nil, false)
	t2 := f.SeedTask("second", nil, true)
	t3 := f.SeedTask("third", nil, false)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	snap := s.Snapshot()
	if !sameIDs(snap.Tasks, []string{t1.ID, t2.ID, t3.ID}) {
		t.Errorf("expected server order, got %v", ids(snap.Tasks))
	}
	if snap.Loading || snap.Err != "" {
		t.Errorf("expected resolved state, got %+v", snap)
	}
}

func TestLoad_Failure(t *testing.T) {
	s, f := newStore(t)
	f.SeedTask("kept on server", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	f.ListErr = &api.Error{Status: 500, Message: "Ошибка сервера, попробуйте позже"}
	if err := s.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	snap := s.Snapshot()
	if len(snap.Tasks) != 0 {
		t.Errorf("failed load must empty the cache, got %v", ids(snap.Tasks))
	}
	if snap.Err != "Ошибка сервера, попробуйте позже" {
		t.Errorf("unexpected error message: %q", snap.Err)
	}
}

func TestCreate_PrependsServerEcho(t *testing.T) {
	s, f := newStore(t)
	f.SeedTask("existing", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	created, err := s.Create(context.Background(), "new task", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}
	if snap.Tasks[0].ID != created.ID {
		t.Errorf("created task must be at index 0, got %v", ids(snap.Tasks))
	}
	if snap.Tasks[0].Title != created.Title {
		t.Errorf("cache must hold the server's echo, got %q want %q", snap.Tasks[0].Title, created.Title)
	}
}

func TestCreate_FailureLeavesCacheUntouched(t *testing.T) {
	s, f := newStore(t)
	f.SeedTask("existing", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := ids(s.Snapshot().Tasks)

	f.CreateErr = &api.Error{Status: 422, Message: "Значение слишком короткое"}
	if _, err := s.Create(context.Background(), "x", nil); err == nil {
		t.Fatal("expected error")
	}

	if !sameIDs(s.Snapshot().Tasks, before) {
		t.Errorf("failed create must not mutate the cache")
	}
}

func TestUpdate_CompletedRepartitions(t *testing.T) {
	s, f := newStore(t)
	a := f.SeedTask("a", nil, false)
	b := f.SeedTask("b", nil, false)
	c := f.SeedTask("c", nil, false)
	d := f.SeedTask("d", nil, true)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Complete the middle incomplete task: it moves to the front of the
	// completed partition, everything else keeps its relative order.
	completed := true
	if _, err := s.Update(context.Background(), b.ID, api.TaskPatch{Completed: &completed}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap := s.Snapshot()
	if !sameIDs(snap.Tasks, []string{a.ID, c.ID, b.ID, d.ID}) {
		t.Errorf("expected [a c b d], got %v", ids(snap.Tasks))
	}
}

func TestUpdate_TitlePreservesOrder(t *testing.T) {
	s, f := newStore(t)
	a := f.SeedTask("a", nil, true)
	b := f.SeedTask("b", nil, false)
	c := f.SeedTask("c", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A completed task sits first in server order; a title-only patch must
	// not re-partition around it.
	title := "a renamed"
	updated, err := s.Update(context.Background(), a.ID, api.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	snap := s.Snapshot()
	if !sameIDs(snap.Tasks, []string{a.ID, b.ID, c.ID}) {
		t.Errorf("title patch must preserve order, got %v", ids(snap.Tasks))
	}
	if snap.Tasks[0].Title != "a renamed" || updated.Title != "a renamed" {
		t.Errorf("expected the server's representation in place, got %q", snap.Tasks[0].Title)
	}
}

func TestUpdate_FailureLeavesCacheUntouched(t *testing.T) {
	s, f := newStore(t)
	a := f.SeedTask("a", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	f.UpdateErr = &api.Error{Status: 404, Message: "Задача не найдена"}
	title := "renamed"
	if _, err := s.Update(context.Background(), a.ID, api.TaskPatch{Title: &title}); err == nil {
		t.Fatal("expected error")
	}

	snap := s.Snapshot()
	if snap.Tasks[0].Title != "a" {
		t.Errorf("failed update must not mutate the cache, got %q", snap.Tasks[0].Title)
	}
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	s, f := newStore(t)
	a := f.SeedTask("a", nil, false)
	b := f.SeedTask("b", nil, false)
	c := f.SeedTask("c", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	snap := s.Snapshot()
	if !sameIDs(snap.Tasks, []string{a.ID, c.ID}) {
		t.Errorf("expected [a c], got %v", ids(snap.Tasks))
	}
}

func TestToggle(t *testing.T) {
	s, f := newStore(t)
	a := f.SeedTask("a", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Toggle(context.Background(), a.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := s.Snapshot().Tasks[0]; !got.Completed || got.CompletedAt == nil {
		t.Errorf("expected completed with timestamp, got %+v", got)
	}

	if err := s.Toggle(context.Background(), a.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got := s.Snapshot().Tasks[0]; got.Completed || got.CompletedAt != nil {
		t.Errorf("expected reopened task, got %+v", got)
	}
}

func TestToggle_UnknownID(t *testing.T) {
	s, f := newStore(t)
	f.SeedTask("a", nil, false)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	before := ids(s.Snapshot().Tasks)
	callsBefore := len(f.Calls())

	if err := s.Toggle(context.Background(), "no-such-id"); err != nil {
		t.Fatalf("Toggle on unknown id must be a no-op, got %v", err)
	}

	if got := len(f.Calls()); got != callsBefore {
		t.Errorf("toggle on unknown id must not call the network, got %d new calls", got-callsBefore)
	}
	if !sameIDs(s.Snapshot().Tasks, before) {
		t.Error("toggle on unknown id must not change state")
	}
}

func TestSubscribe(t *testing.T) {
	s, f := newStore(t)
	f.SeedTask("a", nil, false)

	var got []taskstore.Snapshot
	s.Subscribe(func(snap taskstore.Snapshot) {
		got = append(got, snap)
	})

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// One notification entering the loading state, one on the result.
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if !got[0].Loading {
		t.Errorf("first notification should be loading, got %+v", got[0])
	}
	if got[1].Loading || len(got[1].Tasks) != 1 {
		t.Errorf("second notification should carry the list, got %+v", got[1])
	}
}
