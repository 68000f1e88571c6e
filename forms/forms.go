package forms

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"todo-manager/database"
	"todo-manager/models"
)

// DateTimeLayouts are the accepted deadline formats, tried in order.
// Layouts without an offset are read in the caller's location.
var DateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseDateTime parses value with the first matching layout.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	for _, layout := range DateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid date/time", value)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("schema"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("datetime_any", func(fl validator.FieldLevel) bool {
		_, err := ParseDateTime(fl.Field().String(), time.UTC)
		return err == nil
	})
	return v
}

// check runs the struct validator on form and converts its failures.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := Errors{}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			out.Add(fe.Field(), RequiredField, "This field is required.")
		case "max":
			out.Add(fe.Field(), TooLong, fmt.Sprintf(
				"Ensure this value has at most %s characters (it has %d).",
				fe.Param(), len([]rune(fe.Value().(string)))))
		case "datetime_any":
			out.Add(fe.Field(), InvalidFormat, "Enter a valid date/time.")
		default:
			out.Add(fe.Field(), InvalidFormat, fmt.Sprintf("Failed on the %q rule.", fe.Tag()))
		}
	}
	return out
}

// TaskForm is the create-task form. Deadline is optional.
type TaskForm struct {
	Content  string `schema:"content" json:"content" validate:"notblank"`
	Deadline string `schema:"deadline" json:"deadline" validate:"omitempty,datetime_any"`
}

// Clean trims the submitted values.
func (f *TaskForm) Clean() {
	f.Content = strings.TrimSpace(f.Content)
	f.Deadline = strings.TrimSpace(f.Deadline)
}

// Validate cleans and checks the form, returning Errors on failure.
func (f *TaskForm) Validate() error {
	f.Clean()
	return check(f)
}

// DeadlineIn returns the parsed deadline, or nil when none was given.
// It must only be called on a validated form.
func (f *TaskForm) DeadlineIn(loc *time.Location) (*time.Time, error) {
	if f.Deadline == "" {
		return nil, nil
	}
	t, err := ParseDateTime(f.Deadline, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TagForm is the create and rename tag form.
type TagForm struct {
	Name string `schema:"name" json:"name" validate:"notblank,max=50"`
}

func (f *TagForm) Clean() {
	f.Name = strings.TrimSpace(f.Name)
}

func (f *TagForm) Validate() error {
	f.Clean()
	return check(f)
}

// TagLookup resolves a tag by id, returning an error wrapping
// database.ErrNotFound when it does not exist.
type TagLookup func(ctx context.Context, id int64) (*models.Tag, error)

// TagSelectForm selects one existing tag, as used by add-tag and remove-tag.
type TagSelectForm struct {
	Tag string `schema:"tag" json:"tag" validate:"required"`
}

// Resolve validates the selection and returns the selected tag. A missing,
// malformed or unknown id is reported as a required-field error; any other
// lookup failure is returned as is.
func (f *TagSelectForm) Resolve(ctx context.Context, lookup TagLookup) (*models.Tag, error) {
	f.Tag = strings.TrimSpace(f.Tag)
	if err := check(f); err != nil {
		return nil, err
	}

	invalid := Errors{}
	invalid.Add("tag", RequiredField, "This field is required.")

	id, err := strconv.ParseInt(f.Tag, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid
	}

	tag, err := lookup(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}
