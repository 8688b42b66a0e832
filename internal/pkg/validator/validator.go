package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validator
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Register custom tag name function to use json tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return true
		}
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{
		validate: v,
	}
}

// Validate validates a struct and returns one FieldError per failed rule,
// in the order the validator reported them. It returns nil when i is valid.
func (v *Validator) Validate(i interface{}) []FieldError {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Message: err.Error()}}
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:    namespacePath(fe.Namespace()),
			Message: msgForTag(fe),
		})
	}
	return Format(issues)
}

// namespacePath turns "Request.items[2].name" into [items 2 name]. The leading
// struct name is dropped and bracketed indexes become their own segments.
func namespacePath(ns string) []PathSegment {
	parts := strings.Split(ns, ".")
	if len(parts) > 0 {
		parts = parts[1:]
	}

	var path []PathSegment
	for _, part := range parts {
		name := part
		var rest string
		if i := strings.IndexByte(part, '['); i >= 0 {
			name, rest = part[:i], part[i:]
		}
		if name != "" {
			path = append(path, Key(name))
		}
		for strings.HasPrefix(rest, "[") {
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				break
			}
			inner := rest[1:end]
			if n, err := strconv.Atoi(inner); err == nil {
				path = append(path, Index(n))
			} else {
				path = append(path, Key(inner))
			}
			rest = rest[end+1:]
		}
	}
	return path
}

// msgForTag returns a human-readable message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not provided", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "bcp47_language_tag":
		return fmt.Sprintf("%s must be a valid language tag", field)
	default:
		return fmt.Sprintf("%s failed validation for tag: %s", field, fe.Tag())
	}
}
