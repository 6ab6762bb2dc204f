package validation

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskflow-gateway/internal/entities"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// registerRules registers the tags used in the DTO struct tags.
func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"entity_id":    isEntityID,
		"task_type":    isTaskType,
		"task_status":  isTaskStatus,
		"priority":     isPriority,
		"related_to":   isRelatedTo,
		"role":         isRole,
		"custom_email": isGoodEmailFormat,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// jsonFieldName reports fields by their JSON name.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// isEntityID accepts a UUID or a numeric id, also inside slices via dive.
func isEntityID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isTaskType(fl validator.FieldLevel) bool {
	return entities.TaskType(fl.Field().String()).Valid()
}

func isTaskStatus(fl validator.FieldLevel) bool {
	return entities.TaskStatus(fl.Field().String()).Valid()
}

func isPriority(fl validator.FieldLevel) bool {
	return entities.Priority(fl.Field().String()).Valid()
}

func isRole(fl validator.FieldLevel) bool {
	return entities.Role(fl.Field().String()).Valid()
}

// isRelatedTo checks an attachment owner kind.
func isRelatedTo(fl validator.FieldLevel) bool {
	_, ok := entities.ParseOwner(fl.Field().String(), uuid.Nil.String())
	return ok
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}
