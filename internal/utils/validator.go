package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/CourseLab-2025/quiz-engine/internal/errors"
	"github.com/CourseLab-2025/quiz-engine/internal/models"
)

// Validator wraps struct-tag validation with the engine's custom tags
// registered once.
type Validator struct {
	structValidator *validator.Validate
}

// NewValidator creates the central validator instance.
func NewValidator() *Validator {
	structValidator := validator.New()
	RegisterCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and converts field errors to the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateQuestionKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, kind := range models.AllKinds {
		if string(kind) == value {
			return true
		}
	}
	return false
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_kind", ValidateQuestionKind)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
