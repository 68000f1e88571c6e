package handlers

import (
	"context"
	"fmt"
	"net/http"

	"todo-manager/forms"
	"todo-manager/models"
	"todo-manager/utilities"
)

type taskListPage struct {
	Tasks []models.Task `json:"tasks"`
}

type taskFormPage struct {
	Form   forms.TaskForm `json:"form"`
	Errors forms.Errors   `json:"errors,omitempty"`
}

// taskTagPage is shown by add-tag and remove-tag. Tags holds the candidate
// tags for the selection.
type taskTagPage struct {
	Task   *models.Task        `json:"task"`
	Tags   []models.Tag        `json:"tags"`
	Form   forms.TagSelectForm `json:"form"`
	Errors forms.Errors        `json:"errors,omitempty"`
}

// ListTasksHandler lists every task, not-done first, newest first.
func (h *Handlers) ListTasksHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	utilities.LogDebug("Listing tasks for %s", caller.UID)

	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		fail(w, err, "ListTasksHandler: error listing tasks")
		return
	}

	utilities.LogDebug("ListTasksHandler: %d tasks", len(tasks))
	writeJSON(w, http.StatusOK, taskListPage{Tasks: tasks})
}

// CreateTaskHandler shows the task form on GET and creates the task on POST.
func (h *Handlers) CreateTaskHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, taskFormPage{})
		return
	}

	var form forms.TaskForm
	if err := forms.Decode(r, &form); err != nil {
		utilities.LogError(err, "CreateTaskHandler: error decoding form")
		writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	if err := form.Validate(); err != nil {
		if ferrs, ok := validationErrors(err); ok {
			utilities.LogDebug("CreateTaskHandler: validation failed: %v", ferrs)
			writeJSON(w, http.StatusBadRequest, taskFormPage{Form: form, Errors: ferrs})
			return
		}
		fail(w, err, "CreateTaskHandler: error validating form")
		return
	}

	deadline, err := form.DeadlineIn(h.location)
	if err != nil {
		fail(w, err, "CreateTaskHandler: error parsing deadline")
		return
	}

	task, err := h.store.CreateTask(r.Context(), form.Content, deadline)
	if err != nil {
		fail(w, err, "CreateTaskHandler: error inserting task")
		return
	}

	utilities.LogInfo("Task created: %d by %s", task.ID, caller.UID)
	h.record(r.Context(), caller, models.ActivityTaskCreated, task.ID, 0, task.Content)
	redirect(w, r, taskListPath)
}

// ToggleTaskDoneHandler flips the done flag of a task.
func (h *Handlers) ToggleTaskDoneHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	taskID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "ToggleTaskDoneHandler: invalid task id")
		return
	}

	task, err := h.store.ToggleTaskDone(r.Context(), taskID)
	if err != nil {
		fail(w, err, "ToggleTaskDoneHandler: error toggling task")
		return
	}

	utilities.LogInfo("Task %d marked done=%t by %s", task.ID, task.IsDone, caller.UID)
	h.record(r.Context(), caller, models.ActivityTaskToggled, task.ID, 0, fmt.Sprintf("is_done=%t", task.IsDone))
	redirect(w, r, taskListPath)
}

// DeleteTaskHandler removes a task. Its tags are kept.
func (h *Handlers) DeleteTaskHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	taskID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "DeleteTaskHandler: invalid task id")
		return
	}

	if err := h.store.DeleteTask(r.Context(), taskID); err != nil {
		fail(w, err, "DeleteTaskHandler: error deleting task")
		return
	}

	utilities.LogInfo("Task %d deleted by %s", taskID, caller.UID)
	h.record(r.Context(), caller, models.ActivityTaskDeleted, taskID, 0, "")
	redirect(w, r, taskListPath)
}

// AddTagHandler attaches an existing tag to a task. The form offers the
// tags the task does not have yet.
func (h *Handlers) AddTagHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	h.taskTagHandler(w, r, caller, taskTagAction{
		name:   "AddTagHandler",
		kind:   models.ActivityTaskTagged,
		apply:  h.store.RelateTag,
		offers: func(task *models.Task, tag models.Tag) bool { return !task.HasTag(tag.ID) },
	})
}

// RemoveTagHandler detaches a tag from a task. Removing a tag the task does
// not carry succeeds without changes. The form offers the task's tags.
func (h *Handlers) RemoveTagHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	h.taskTagHandler(w, r, caller, taskTagAction{
		name:   "RemoveTagHandler",
		kind:   models.ActivityTaskUntagged,
		apply:  h.store.UnrelateTag,
		offers: func(task *models.Task, tag models.Tag) bool { return task.HasTag(tag.ID) },
	})
}

type taskTagAction struct {
	name   string
	kind   string
	apply  func(ctx context.Context, taskID, tagID int64) error
	offers func(task *models.Task, tag models.Tag) bool
}

func (h *Handlers) taskTagHandler(w http.ResponseWriter, r *http.Request, caller Caller, action taskTagAction) {
	ctx := r.Context()

	taskID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, action.name+": invalid task id")
		return
	}

	task, err := h.store.GetTask(ctx, taskID)
	if err != nil {
		fail(w, err, action.name+": error getting task")
		return
	}

	candidates, err := h.candidateTags(ctx, task, action.offers)
	if err != nil {
		fail(w, err, action.name+": error listing tags")
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, taskTagPage{Task: task, Tags: candidates})
		return
	}

	var form forms.TagSelectForm
	if err := forms.Decode(r, &form); err != nil {
		utilities.LogError(err, action.name+": error decoding form")
		writeError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	tag, err := form.Resolve(ctx, h.store.GetTag)
	if err != nil {
		if ferrs, ok := validationErrors(err); ok {
			utilities.LogDebug("%s: validation failed: %v", action.name, ferrs)
			writeJSON(w, http.StatusBadRequest, taskTagPage{Task: task, Tags: candidates, Form: form, Errors: ferrs})
			return
		}
		fail(w, err, action.name+": error resolving tag")
		return
	}

	if err := action.apply(ctx, task.ID, tag.ID); err != nil {
		fail(w, err, action.name+": error updating task tags")
		return
	}

	utilities.LogInfo("%s: task %d, tag %d by %s", action.name, task.ID, tag.ID, caller.UID)
	h.record(ctx, caller, action.kind, task.ID, tag.ID, tag.Name)
	redirect(w, r, taskListPath)
}

func (h *Handlers) candidateTags(ctx context.Context, task *models.Task, offers func(*models.Task, models.Tag) bool) ([]models.Tag, error) {
	tags, err := h.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	candidates := []models.Tag{}
	for _, tag := range tags {
		if offers(task, tag) {
			candidates = append(candidates, tag)
		}
	}
	return candidates, nil
}
