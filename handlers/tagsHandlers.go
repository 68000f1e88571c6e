package handlers

import (
	"net/http"

	"todo-manager/forms"
	"todo-manager/models"
	"todo-manager/utilities"
)

type tagListPage struct {
	Tags []models.Tag `json:"tags"`
}

type tagFormPage struct {
	Tag    *models.Tag   `json:"tag,omitempty"`
	Form   forms.TagForm `json:"form"`
	Errors forms.Errors  `json:"errors,omitempty"`
}

// ListTagsHandler lists every tag in creation order.
func (h *Handlers) ListTagsHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	utilities.LogDebug("Listing tags for %s", caller.UID)

	tags, err := h.store.ListTags(r.Context())
	if err != nil {
		fail(w, err, "ListTagsHandler: error listing tags")
		return
	}
	writeJSON(w, http.StatusOK, tagListPage{Tags: tags})
}

// CreateTagHandler shows the tag form on GET and creates the tag on POST.
func (h *Handlers) CreateTagHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, tagFormPage{})
		return
	}

	form, ok := decodeTagForm(w, r, nil, "CreateTagHandler")
	if !ok {
		return
	}

	tag, err := h.store.CreateTag(r.Context(), form.Name)
	if err != nil {
		fail(w, err, "CreateTagHandler: error inserting tag")
		return
	}

	utilities.LogInfo("Tag created: %d (%s) by %s", tag.ID, tag.Name, caller.UID)
	h.record(r.Context(), caller, models.ActivityTagCreated, 0, tag.ID, tag.Name)
	redirect(w, r, tagListPath)
}

// UpdateTagHandler shows the rename form on GET and renames the tag on POST.
func (h *Handlers) UpdateTagHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	tagID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "UpdateTagHandler: invalid tag id")
		return
	}

	current, err := h.store.GetTag(r.Context(), tagID)
	if err != nil {
		fail(w, err, "UpdateTagHandler: error getting tag")
		return
	}

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, tagFormPage{Tag: current, Form: forms.TagForm{Name: current.Name}})
		return
	}

	form, ok := decodeTagForm(w, r, current, "UpdateTagHandler")
	if !ok {
		return
	}

	tag, err := h.store.RenameTag(r.Context(), tagID, form.Name)
	if err != nil {
		fail(w, err, "UpdateTagHandler: error renaming tag")
		return
	}

	utilities.LogInfo("Tag %d renamed from %q to %q by %s", tag.ID, current.Name, tag.Name, caller.UID)
	h.record(r.Context(), caller, models.ActivityTagRenamed, 0, tag.ID, tag.Name)
	redirect(w, r, tagListPath)
}

// DeleteTagHandler removes a tag and detaches it from every task.
func (h *Handlers) DeleteTagHandler(w http.ResponseWriter, r *http.Request, caller Caller) {
	tagID, err := pathID(r, "id")
	if err != nil {
		fail(w, err, "DeleteTagHandler: invalid tag id")
		return
	}

	if err := h.store.DeleteTag(r.Context(), tagID); err != nil {
		fail(w, err, "DeleteTagHandler: error deleting tag")
		return
	}

	utilities.LogInfo("Tag %d deleted by %s", tagID, caller.UID)
	h.record(r.Context(), caller, models.ActivityTagDeleted, 0, tagID, "")
	redirect(w, r, tagListPath)
}

// decodeTagForm reads and validates a TagForm. On failure it writes the
// response and returns false.
func decodeTagForm(w http.ResponseWriter, r *http.Request, current *models.Tag, name string) (forms.TagForm, bool) {
	var form forms.TagForm
	if err := forms.Decode(r, &form); err != nil {
		utilities.LogError(err, name+": error decoding form")
		writeError(w, http.StatusBadRequest, "Invalid form payload")
		return form, false
	}

	if err := form.Validate(); err != nil {
		if ferrs, ok := validationErrors(err); ok {
			utilities.LogDebug("%s: validation failed: %v", name, ferrs)
			writeJSON(w, http.StatusBadRequest, tagFormPage{Tag: current, Form: form, Errors: ferrs})
			return form, false
		}
		fail(w, err, name+": error validating form")
		return form, false
	}
	return form, true
}
