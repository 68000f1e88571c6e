package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo-manager/models"
)

// fakeClock returns times one second apart starting at start.
func fakeClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

var clockStart = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

// runStoreTests exercises the Store contract against newStore.
func runStoreTests(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("ListTasksOrder", func(t *testing.T) { testListTasksOrder(t, newStore(t)) })
	t.Run("ListTasksEmpty", func(t *testing.T) { testListTasksEmpty(t, newStore(t)) })
	t.Run("CreateTask", func(t *testing.T) { testCreateTask(t, newStore(t)) })
	t.Run("ToggleTaskDone", func(t *testing.T) { testToggleTaskDone(t, newStore(t)) })
	t.Run("DeleteTaskKeepsTags", func(t *testing.T) { testDeleteTaskKeepsTags(t, newStore(t)) })
	t.Run("TagCRUD", func(t *testing.T) { testTagCRUD(t, newStore(t)) })
	t.Run("RelateIdempotent", func(t *testing.T) { testRelateIdempotent(t, newStore(t)) })
	t.Run("UnrelateAbsentTag", func(t *testing.T) { testUnrelateAbsentTag(t, newStore(t)) })
	t.Run("DeleteTagDetaches", func(t *testing.T) { testDeleteTagDetaches(t, newStore(t)) })
	t.Run("UnrelateAllForTag", func(t *testing.T) { testUnrelateAllForTag(t, newStore(t)) })
	t.Run("MissingRows", func(t *testing.T) { testMissingRows(t, newStore(t)) })
}

func mustCreateTask(t *testing.T, s Store, content string) *models.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), content, nil)
	if err != nil {
		t.Fatalf("CreateTask(%q) failed: %v", content, err)
	}
	return task
}

func mustCreateTag(t *testing.T, s Store, name string) *models.Tag {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateTag(%q) failed: %v", name, err)
	}
	return tag
}

func mustRelate(t *testing.T, s Store, taskID, tagID int64) {
	t.Helper()
	if err := s.RelateTag(context.Background(), taskID, tagID); err != nil {
		t.Fatalf("RelateTag(%d, %d) failed: %v", taskID, tagID, err)
	}
}

func taskIDs(tasks []models.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testListTasksOrder(t *testing.T, s Store) {
	ctx := context.Background()
	a := mustCreateTask(t, s, "A")
	b := mustCreateTask(t, s, "B")
	c := mustCreateTask(t, s, "C")
	if _, err := s.ToggleTaskDone(ctx, a.ID); err != nil {
		t.Fatalf("ToggleTaskDone failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	want := []int64{c.ID, b.ID, a.ID}
	if got := taskIDs(tasks); !equalIDs(got, want) {
		t.Errorf("Expected order %v, got %v", want, got)
	}
}

func testListTasksEmpty(t *testing.T, s Store) {
	tasks, err := s.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", tasks)
	}
}

func testCreateTask(t *testing.T, s Store) {
	ctx := context.Background()
	deadline := time.Date(2024, 10, 20, 12, 12, 0, 0, time.UTC)

	created, err := s.CreateTask(ctx, "Buy milk", &deadline)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	task, err := s.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.Content != "Buy milk" {
		t.Errorf("Expected content 'Buy milk', got '%s'", task.Content)
	}
	if task.IsDone {
		t.Errorf("Expected new task to be not done")
	}
	if len(task.Tags) != 0 {
		t.Errorf("Expected no tags, got %d", len(task.Tags))
	}
	if task.Deadline == nil || !task.Deadline.Equal(deadline) {
		t.Errorf("Expected deadline %v, got %v", deadline, task.Deadline)
	}
	if !task.CreatedAt.Equal(clockStart) {
		t.Errorf("Expected created_at %v, got %v", clockStart, task.CreatedAt)
	}

	noDeadline := mustCreateTask(t, s, "No deadline")
	got, err := s.GetTask(ctx, noDeadline.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Deadline != nil {
		t.Errorf("Expected no deadline, got %v", got.Deadline)
	}
}

func testToggleTaskDone(t *testing.T, s Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "Toggle me")

	toggled, err := s.ToggleTaskDone(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTaskDone failed: %v", err)
	}
	if !toggled.IsDone {
		t.Errorf("Expected task to be done after one toggle")
	}

	toggled, err = s.ToggleTaskDone(ctx, task.ID)
	if err != nil {
		t.Fatalf("ToggleTaskDone failed: %v", err)
	}
	if toggled.IsDone {
		t.Errorf("Expected task to be back to not done after two toggles")
	}
	if !toggled.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("Expected created_at to stay %v, got %v", task.CreatedAt, toggled.CreatedAt)
	}
}

func testDeleteTaskKeepsTags(t *testing.T, s Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "Doomed")
	tag := mustCreateTag(t, s, "keep")
	mustRelate(t, s, task.ID, tag.ID)

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetTag(ctx, tag.ID); err != nil {
		t.Errorf("Expected tag to survive task deletion, got %v", err)
	}
}

func testTagCRUD(t *testing.T, s Store) {
	ctx := context.Background()
	first := mustCreateTag(t, s, "Old Tag")
	second := mustCreateTag(t, s, "Other")

	renamed, err := s.RenameTag(ctx, first.ID, "Updated Tag")
	if err != nil {
		t.Fatalf("RenameTag failed: %v", err)
	}
	if renamed.Name != "Updated Tag" {
		t.Errorf("Expected name 'Updated Tag', got '%s'", renamed.Name)
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 2 || tags[0].ID != first.ID || tags[1].ID != second.ID {
		t.Fatalf("Expected tags in insertion order, got %#v", tags)
	}
	if tags[0].Name != "Updated Tag" {
		t.Errorf("Expected renamed tag in list, got '%s'", tags[0].Name)
	}

	if err := s.DeleteTag(ctx, first.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}
	tags, err = s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != second.ID {
		t.Errorf("Expected only tag %d left, got %#v", second.ID, tags)
	}
}

func testRelateIdempotent(t *testing.T, s Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "Tagged")
	tag := mustCreateTag(t, s, "home")

	mustRelate(t, s, task.ID, tag.ID)
	mustRelate(t, s, task.ID, tag.ID)

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != tag.ID {
		t.Errorf("Expected exactly tag %d, got %#v", tag.ID, got.Tags)
	}
}

func testUnrelateAbsentTag(t *testing.T, s Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "Plain")
	kept := mustCreateTag(t, s, "kept")
	absent := mustCreateTag(t, s, "absent")
	mustRelate(t, s, task.ID, kept.ID)

	if err := s.UnrelateTag(ctx, task.ID, absent.ID); err != nil {
		t.Fatalf("Expected removing an absent tag to succeed, got %v", err)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != kept.ID {
		t.Errorf("Expected tags unchanged, got %#v", got.Tags)
	}

	if err := s.UnrelateTag(ctx, task.ID, kept.ID); err != nil {
		t.Fatalf("UnrelateTag failed: %v", err)
	}
	got, err = s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("Expected no tags, got %#v", got.Tags)
	}
}

func testDeleteTagDetaches(t *testing.T, s Store) {
	ctx := context.Background()
	first := mustCreateTask(t, s, "First")
	second := mustCreateTask(t, s, "Second")
	shared := mustCreateTag(t, s, "shared")
	other := mustCreateTag(t, s, "other")
	mustRelate(t, s, first.ID, shared.ID)
	mustRelate(t, s, second.ID, shared.ID)
	mustRelate(t, s, second.ID, other.ID)

	if err := s.DeleteTag(ctx, shared.ID); err != nil {
		t.Fatalf("DeleteTag failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected both tasks to survive, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.HasTag(shared.ID) {
			t.Errorf("Expected tag %d removed from task %d", shared.ID, task.ID)
		}
	}
	got, err := s.GetTask(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !got.HasTag(other.ID) {
		t.Errorf("Expected unrelated tag %d to stay on task %d", other.ID, second.ID)
	}
	if _, err := s.GetTag(ctx, shared.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected deleted tag to be gone, got %v", err)
	}
}

func testUnrelateAllForTag(t *testing.T, s Store) {
	ctx := context.Background()
	first := mustCreateTask(t, s, "First")
	second := mustCreateTask(t, s, "Second")
	tag := mustCreateTag(t, s, "bulk")
	mustRelate(t, s, first.ID, tag.ID)
	mustRelate(t, s, second.ID, tag.ID)

	if err := s.UnrelateAllForTag(ctx, tag.ID); err != nil {
		t.Fatalf("UnrelateAllForTag failed: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	for _, task := range tasks {
		if len(task.Tags) != 0 {
			t.Errorf("Expected task %d to have no tags, got %#v", task.ID, task.Tags)
		}
	}
	if _, err := s.GetTag(ctx, tag.ID); err != nil {
		t.Errorf("Expected tag row to remain, got %v", err)
	}
}

func testMissingRows(t *testing.T, s Store) {
	ctx := context.Background()
	task := mustCreateTask(t, s, "Exists")
	tag := mustCreateTag(t, s, "exists")

	checks := []struct {
		name string
		err  error
	}{
		{"GetTask", func() error { _, err := s.GetTask(ctx, 999); return err }()},
		{"ToggleTaskDone", func() error { _, err := s.ToggleTaskDone(ctx, 999); return err }()},
		{"DeleteTask", s.DeleteTask(ctx, 999)},
		{"GetTag", func() error { _, err := s.GetTag(ctx, 999); return err }()},
		{"RenameTag", func() error { _, err := s.RenameTag(ctx, 999, "x"); return err }()},
		{"DeleteTag", s.DeleteTag(ctx, 999)},
		{"RelateTag unknown task", s.RelateTag(ctx, 999, tag.ID)},
		{"RelateTag unknown tag", s.RelateTag(ctx, task.ID, 999)},
		{"UnrelateTag unknown task", s.UnrelateTag(ctx, 999, tag.ID)},
	}
	for _, c := range checks {
		if !errors.Is(c.err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", c.name, c.err)
		}
	}
}
