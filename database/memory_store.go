package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"todo-manager/models"
)

// MemoryStore implements Store in process memory. It backs the "memory"
// driver and the handler tests.
type MemoryStore struct {
	mu         sync.Mutex
	now        func() time.Time
	tasks      map[int64]*models.Task
	tags       map[int64]*models.Tag
	taskTags   map[int64]map[int64]struct{}
	nextTaskID int64
	nextTagID  int64
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		now:      o.now,
		tasks:    map[int64]*models.Task{},
		tags:     map[int64]*models.Tag{},
		taskTags: map[int64]map[int64]struct{}{},
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// taskCopy returns a detached copy of the task with its tags in id order.
// Callers hold m.mu.
func (m *MemoryStore) taskCopy(t *models.Task) models.Task {
	out := *t
	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}
	out.Tags = []models.Tag{}
	for tagID := range m.taskTags[t.ID] {
		out.Tags = append(out.Tags, *m.tags[tagID])
	}
	sort.Slice(out.Tags, func(i, j int) bool { return out.Tags[i].ID < out.Tags[j].ID })
	return out
}

func (m *MemoryStore) ListTasks(context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]models.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, m.taskCopy(t))
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsDone != b.IsDone {
			return !a.IsDone
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return tasks, nil
}

func (m *MemoryStore) GetTask(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	out := m.taskCopy(t)
	return &out, nil
}

func (m *MemoryStore) CreateTask(_ context.Context, content string, deadline *time.Time) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTaskID++
	t := &models.Task{
		ID:        m.nextTaskID,
		Content:   content,
		CreatedAt: m.now().UTC(),
	}
	if deadline != nil {
		d := deadline.UTC()
		t.Deadline = &d
	}
	m.tasks[t.ID] = t

	out := m.taskCopy(t)
	return &out, nil
}

func (m *MemoryStore) ToggleTaskDone(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	t.IsDone = !t.IsDone
	out := m.taskCopy(t)
	return &out, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	delete(m.taskTags, id)
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStore) ListTags(context.Context) ([]models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make([]models.Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		tags = append(tags, *tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MemoryStore) GetTag(_ context.Context, id int64) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag, ok := m.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	out := *tag
	return &out, nil
}

func (m *MemoryStore) CreateTag(_ context.Context, name string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTagID++
	tag := &models.Tag{ID: m.nextTagID, Name: name}
	m.tags[tag.ID] = tag
	out := *tag
	return &out, nil
}

func (m *MemoryStore) RenameTag(_ context.Context, id int64, name string) (*models.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tag, ok := m.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	tag.Name = name
	out := *tag
	return &out, nil
}

func (m *MemoryStore) DeleteTag(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tags[id]; !ok {
		return fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	m.unrelateAll(id)
	delete(m.tags, id)
	return nil
}

func (m *MemoryStore) RelateTag(_ context.Context, taskID, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireTaskAndTag(taskID, tagID); err != nil {
		return err
	}
	set, ok := m.taskTags[taskID]
	if !ok {
		set = map[int64]struct{}{}
		m.taskTags[taskID] = set
	}
	set[tagID] = struct{}{}
	return nil
}

func (m *MemoryStore) UnrelateTag(_ context.Context, taskID, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireTaskAndTag(taskID, tagID); err != nil {
		return err
	}
	delete(m.taskTags[taskID], tagID)
	return nil
}

func (m *MemoryStore) UnrelateAllForTag(_ context.Context, tagID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unrelateAll(tagID)
	return nil
}

func (m *MemoryStore) unrelateAll(tagID int64) {
	for _, set := range m.taskTags {
		delete(set, tagID)
	}
}

func (m *MemoryStore) requireTaskAndTag(taskID, tagID int64) error {
	if _, ok := m.tasks[taskID]; !ok {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}
	if _, ok := m.tags[tagID]; !ok {
		return fmt.Errorf("tag %d: %w", tagID, ErrNotFound)
	}
	return nil
}
