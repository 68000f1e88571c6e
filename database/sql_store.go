package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todo-manager/models"
)

// SQLStore implements Store on database/sql. Queries use $n placeholders,
// which lib/pq, pgx and go-sqlite3 all accept.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB, opts ...Option) *SQLStore {
	o := buildOptions(opts)
	return &SQLStore{db: db, now: o.now}
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func exists(ctx context.Context, q queryer, table string, id int64) (bool, error) {
	var found bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = $1)", id).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("error checking %s %d: %w", table, id, err)
	}
	return found, nil
}

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var deadline sql.NullTime
	if err := row.Scan(&t.ID, &t.Content, &t.CreatedAt, &deadline, &t.IsDone); err != nil {
		return t, err
	}
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	t.Tags = []models.Tag{}
	return t, nil
}

// ListTasks loads all tasks, then all associations in a second query.
func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, created_at, deadline, is_done
		FROM task
		ORDER BY is_done ASC, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	index := map[int64]int{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error reading task row: %w", err)
		}
		index[t.ID] = len(tasks)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	tagRows, err := s.db.QueryContext(ctx, `
		SELECT tt.task_id, t.id, t.name
		FROM task_tags tt
		JOIN tag t ON t.id = tt.tag_id
		ORDER BY t.id
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing task tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var taskID int64
		var tag models.Tag
		if err := tagRows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("error reading task tag row: %w", err)
		}
		if i, ok := index[taskID]; ok {
			tasks[i].Tags = append(tasks[i].Tags, tag)
		}
	}
	return tasks, tagRows.Err()
}

func (s *SQLStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	return getTask(ctx, s.db, id)
}

func getTask(ctx context.Context, q queryer, id int64) (*models.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, `
		SELECT id, content, created_at, deadline, is_done
		FROM task WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting task %d: %w", id, err)
	}

	tags, err := taskTags(ctx, q, id)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return &t, nil
}

func taskTags(ctx context.Context, q queryer, taskID int64) ([]models.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT t.id, t.name
		FROM tag t
		JOIN task_tags tt ON t.id = tt.tag_id
		WHERE tt.task_id = $1
		ORDER BY t.id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("error getting tags of task %d: %w", taskID, err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *SQLStore) CreateTask(ctx context.Context, content string, deadline *time.Time) (*models.Task, error) {
	createdAt := s.now().UTC().Truncate(time.Microsecond)

	var deadlineArg sql.NullTime
	if deadline != nil {
		deadlineArg = sql.NullTime{Time: deadline.UTC(), Valid: true}
	}

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO task (content, created_at, deadline, is_done)
		VALUES ($1, $2, $3, $4) RETURNING id
	`, content, createdAt, deadlineArg, false).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("error inserting task: %w", err)
	}

	t := &models.Task{
		ID:        id,
		Content:   content,
		CreatedAt: createdAt,
		Tags:      []models.Tag{},
	}
	if deadlineArg.Valid {
		d := deadlineArg.Time
		t.Deadline = &d
	}
	return t, nil
}

func (s *SQLStore) ToggleTaskDone(ctx context.Context, id int64) (*models.Task, error) {
	var task *models.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE task SET is_done = NOT is_done WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("error toggling task %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("task %d: %w", id, ErrNotFound)
		}

		task, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *SQLStore) DeleteTask(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = $1", id); err != nil {
			return fmt.Errorf("error detaching tags of task %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM task WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("error deleting task %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("task %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *SQLStore) ListTags(ctx context.Context) ([]models.Tag, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM tag ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("error reading tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (s *SQLStore) GetTag(ctx context.Context, id int64) (*models.Tag, error) {
	tag := &models.Tag{}
	err := s.db.QueryRowContext(ctx, "SELECT id, name FROM tag WHERE id = $1", id).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting tag %d: %w", id, err)
	}
	return tag, nil
}

func (s *SQLStore) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name}
	err := s.db.QueryRowContext(ctx, "INSERT INTO tag (name) VALUES ($1) RETURNING id", name).Scan(&tag.ID)
	if err != nil {
		return nil, fmt.Errorf("error inserting tag: %w", err)
	}
	return tag, nil
}

func (s *SQLStore) RenameTag(ctx context.Context, id int64, name string) (*models.Tag, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE tag SET name = $1 WHERE id = $2", name, id)
	if err != nil {
		return nil, fmt.Errorf("error renaming tag %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	return &models.Tag{ID: id, Name: name}, nil
}

func (s *SQLStore) DeleteTag(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM task_tags WHERE tag_id = $1", id); err != nil {
			return fmt.Errorf("error detaching tag %d: %w", id, err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM tag WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("error deleting tag %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *SQLStore) RelateTag(ctx context.Context, taskID, tagID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireTaskAndTag(ctx, tx, taskID, tagID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, taskID, tagID)
		if err != nil {
			return fmt.Errorf("error adding tag %d to task %d: %w", tagID, taskID, err)
		}
		return nil
	})
}

func (s *SQLStore) UnrelateTag(ctx context.Context, taskID, tagID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireTaskAndTag(ctx, tx, taskID, tagID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM task_tags WHERE task_id = $1 AND tag_id = $2", taskID, tagID)
		if err != nil {
			return fmt.Errorf("error removing tag %d from task %d: %w", tagID, taskID, err)
		}
		return nil
	})
}

func (s *SQLStore) UnrelateAllForTag(ctx context.Context, tagID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM task_tags WHERE tag_id = $1", tagID)
	if err != nil {
		return fmt.Errorf("error detaching tag %d: %w", tagID, err)
	}
	return nil
}

func requireTaskAndTag(ctx context.Context, tx *sql.Tx, taskID, tagID int64) error {
	found, err := exists(ctx, tx, "task", taskID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("task %d: %w", taskID, ErrNotFound)
	}

	found, err = exists(ctx, tx, "tag", tagID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("tag %d: %w", tagID, ErrNotFound)
	}
	return nil
}
