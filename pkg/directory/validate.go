package directory

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/plyworks/rolodex/pkg/errors"
)

// validate is the shared validator instance, configured to report
// field paths by json tag name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationResult is the outcome of validating a canonical export.
// Errors holds one "<dot.path> - <message>" string per violated
// constraint, in deterministic reporting order: duplicate-id issues
// first if present, else duplicate-objectId issues, else structural
// errors in validation order.
type ValidationResult struct {
	Success bool
	Errors  []string
}

// Err converts a failed result into a *errors.ValidationError, or nil
// when the result is successful.
func (r ValidationResult) Err(subject string) error {
	if r.Success {
		return nil
	}
	return errors.NewValidationError(subject, r.Errors)
}

// ValidateExport validates a canonical export against the schema and
// the collection invariants. The categories are checked in order and
// the first failing category short-circuits, so reported errors are
// deterministic across runs.
func ValidateExport(exp *Export) ValidationResult {
	if exp == nil {
		return ValidationResult{Errors: []string{"_root - export is nil"}}
	}

	if errs := duplicateIDs(exp.ContactEntities); len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	if errs := duplicateObjectIDs(exp.ContactEntities); len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}
	if errs := structuralErrors(exp); len(errs) > 0 {
		return ValidationResult{Errors: errs}
	}

	return ValidationResult{Success: true}
}

// ValidateEntity validates a single entity structurally. Used by the
// transformer to drop malformed rows without failing the batch.
func ValidateEntity(entity *ContactEntity) ValidationResult {
	if err := validate.Struct(entity); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			errs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s - %s", fieldPath(fe.Namespace()), fieldMessage(fe)))
			}
			return ValidationResult{Errors: errs}
		}
		return ValidationResult{Errors: []string{"_root - " + err.Error()}}
	}
	if entity.ObjectID == "" {
		return ValidationResult{Errors: []string{objectIDMessage(entity.Kind)}}
	}
	return ValidationResult{Success: true}
}

// objectIDMessage renders the missing-objectId violation for a kind.
// Both kinds require one; internal entities get theirs backfilled
// deterministically by Load, so an empty value here means the entity
// was built in memory and skipped normalization.
func objectIDMessage(kind Kind) string {
	if kind == KindInternal {
		return "objectId - required for internal entities"
	}
	return "objectId - required for external entities"
}

// duplicateIDs rejects collections where two entities share an id.
func duplicateIDs(entities []ContactEntity) []string {
	seen := make(map[string]bool, len(entities))
	reported := make(map[string]bool)
	var errs []string
	for _, entity := range entities {
		if entity.ID == "" {
			continue // structural validation reports missing ids
		}
		if seen[entity.ID] && !reported[entity.ID] {
			errs = append(errs, fmt.Sprintf("ContactEntities - duplicate id %q", entity.ID))
			reported[entity.ID] = true
		}
		seen[entity.ID] = true
	}
	return errs
}

// duplicateObjectIDs rejects collections where two entities share a
// non-empty objectId, across both kinds.
func duplicateObjectIDs(entities []ContactEntity) []string {
	seen := make(map[string]bool, len(entities))
	reported := make(map[string]bool)
	var errs []string
	for _, entity := range entities {
		if entity.ObjectID == "" {
			continue
		}
		if seen[entity.ObjectID] && !reported[entity.ObjectID] {
			errs = append(errs, fmt.Sprintf("ContactEntities - duplicate objectId %q", entity.ObjectID))
			reported[entity.ObjectID] = true
		}
		seen[entity.ObjectID] = true
	}
	return errs
}

// structuralErrors runs tag-driven validation over the whole export,
// then the hand-written objectId presence check (defense in depth; the
// per-entity schema should already reject it on import paths).
func structuralErrors(exp *Export) []string {
	var errs []string
	if err := validate.Struct(exp); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s - %s", fieldPath(fe.Namespace()), fieldMessage(fe)))
			}
		} else {
			errs = append(errs, "_root - "+err.Error())
		}
	}
	for i, entity := range exp.ContactEntities {
		if entity.ObjectID == "" {
			errs = append(errs, fmt.Sprintf("ContactEntities.%d.%s", i, objectIDMessage(entity.Kind)))
		}
	}
	return errs
}

// fieldPath converts a validator namespace like
// "Export.ContactEntities[0].contactPoints[1].type" into the dotted
// form "ContactEntities.0.contactPoints.1.type".
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	namespace = strings.ReplaceAll(namespace, "[", ".")
	return strings.ReplaceAll(namespace, "]", "")
}

// fieldMessage renders a human-readable message for a field error.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
