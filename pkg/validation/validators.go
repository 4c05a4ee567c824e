package validation

import (
	"regexp"
	"unicode"

	"go-recruitment-workflow/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, spaces and common name punctuation: . ' -
	nameRegex = regexp.MustCompile(`^[\p{L} .'-]+$`)

	// E164-like phone: optional +, 7-15 digits
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	// Turkish national ID: 11 digits, no leading zero
	nationalIDRegex = regexp.MustCompile(`^[1-9][0-9]{10}$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("national_id", NationalID)
	_ = v.RegisterValidation("document_type", DocumentType)
	_ = v.RegisterValidation("language_level", LanguageLevel)
	_ = v.RegisterValidation("role", Role)
	_ = v.RegisterValidation("application_action", ApplicationAction)
}

func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

func NationalID(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nationalIDRegex.MatchString(val)
}

// NoEmoji rejects supplementary-plane characters and symbol categories
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

func DocumentType(fl validator.FieldLevel) bool {
	return domain.DocumentType(fl.Field().String()).Valid()
}

func LanguageLevel(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, lvl := range domain.ValidLanguageLevels {
		if val == lvl {
			return true
		}
	}
	return false
}

func Role(fl validator.FieldLevel) bool {
	return domain.Role(fl.Field().String()).Valid()
}

func ApplicationAction(fl validator.FieldLevel) bool {
	switch domain.ApplicationAction(fl.Field().String()) {
	case domain.ActionBeginEvaluation, domain.ActionApprove, domain.ActionReject, domain.ActionRequestUpdate:
		return true
	}
	return false
}
