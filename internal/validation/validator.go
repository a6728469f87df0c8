package validation

import (
	"regexp"

	validatorv10 "github.com/go-playground/validator/v10"
)

// collection names end up in file keys and DynamoDB partition keys
var collectionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// New returns a configured validator with the custom "collection" tag registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// RegisterValidation only fails for empty or reserved tag names.
	_ = v.RegisterValidation("collection", validateCollection)

	return v
}

func validateCollection(fl validatorv10.FieldLevel) bool {
	return collectionPattern.MatchString(fl.Field().String())
}
