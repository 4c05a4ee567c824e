package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"Email":            "Email",
	"Password":         "Password",
	"FullName":         "Full name",
	"Role":             "Role",
	"MiddlemanID":      "Middleman",
	"Phone":            "Phone number",
	"Address":          "Address",
	"DateOfBirth":      "Date of birth",
	"NationalID":       "National ID",
	"EducationLevel":   "Education level",
	"ExperienceYears":  "Years of experience",
	"Skills":           "Skills",
	"Languages":        "Languages",
	"Level":            "Language level",
	"Name":             "Name",
	"DocumentType":     "Document type",
	"Decision":         "Decision",
	"Notes":            "Review notes",
	"Action":           "Action",
	"Reason":           "Reason",
	"ConfirmationText": "Confirmation text",
	"Value":            "Value",
}

// FormatValidationErrors converts validator.ValidationErrors to readable messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s: must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s: must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: invalid email format", label)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s: must be a valid identifier", label)
	case "valid_name":
		return fmt.Sprintf("%s: only letters, spaces and . ' - are allowed", label)
	case "valid_phone":
		return fmt.Sprintf("%s: invalid phone number (7-15 digits, optional +)", label)
	case "national_id":
		return fmt.Sprintf("%s: must be 11 digits", label)
	case "no_emoji":
		return fmt.Sprintf("%s: must not contain emoji or special symbols", label)
	case "document_type":
		return fmt.Sprintf("%s: unknown document type", label)
	case "language_level":
		return fmt.Sprintf("%s: must be one of A1, A2, B1, B2, C1, C2, NATIVE", label)
	case "role":
		return fmt.Sprintf("%s: unknown role", label)
	case "application_action":
		return fmt.Sprintf("%s: must be one of BEGIN_EVALUATION, APPROVE, REJECT, REQUEST_UPDATE", label)
	default:
		return fmt.Sprintf("%s: failed validation (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
