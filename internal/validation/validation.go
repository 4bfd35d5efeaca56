package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Ashin-Amanulla/unmar2025-registration-sub001/internal/models"
)

// FieldErrors maps a JSON field path (e.g. "reportedBy.email") to one
// human-readable message. A nil or empty FieldErrors means the payload is valid.
type FieldErrors map[string]string

// Keys returns the failing field paths in sorted order.
func (fe FieldErrors) Keys() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, k := range fe.Keys() {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Summary joins the messages, ordered by field, into one line for an
// `error` response string.
func (fe FieldErrors) Summary() string {
	msgs := make([]string, 0, len(fe))
	for _, k := range fe.Keys() {
		msgs = append(msgs, fe[k])
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return models.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
			return models.Priority(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return models.Status(fl.Field().String()).Valid()
		})
	})
	return v
}

// Struct runs the shared validator over any tagged struct and returns
// field-keyed messages. Every field is checked; only the first failure per
// field is kept.
func Struct(s any) FieldErrors {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"_": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = message(key, fe)
	}
	return out
}

// ValidateIssue checks a report payload against the entity constraints.
func ValidateIssue(in models.NewIssue) FieldErrors {
	return Struct(in)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var labels = map[string]string{
	"title":            "Title",
	"description":      "Description",
	"category":         "Category",
	"priority":         "Priority",
	"status":           "Status",
	"reportedBy.name":  "Name",
	"reportedBy.email": "Email",
	"reportedBy.phone": "Phone",
	"text":             "Comment",
	"assignedTo":       "Assignee",
	"resolution":       "Resolution",
}

func message(key string, fe validator.FieldError) string {
	label, ok := labels[key]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "email":
		return "Please enter a valid email address"
	case "category", "priority", "status":
		return fmt.Sprintf("Please select a valid %s", strings.ToLower(label))
	}
	return label + " is invalid"
}
