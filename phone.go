package session

import (
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is used when a number is submitted without a country
// prefix. The marketplace launched in Ghana.
const defaultPhoneRegion = "GH"

// NormalizePhone parses a submitted phone number and returns it in E.164
// form, e.g. "+233500000000". Numbers without a leading + are interpreted
// in the default region.
func NormalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryValidation, "phone number could not be parsed").
			WithTextCode(TextCodeValidation).
			WithCode(errors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("phone number is not valid", errors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithCode(errors.CodeBadRequest)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// validPhone adapts NormalizePhone into an ozzo validation rule.
func validPhone(value any) error {
	raw, _ := value.(string)
	if raw == "" {
		return nil // Required is enforced separately
	}
	_, err := NormalizePhone(raw)
	return err
}
