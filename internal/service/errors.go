package service

import "errors"

// Domain errors surfaced to the API layer, which maps them onto HTTP statuses.
var (
	ErrEmptyTagList        = errors.New("tag list is empty")
	ErrEmptyIngredientList = errors.New("ingredient list is empty")
	ErrDuplicateTag        = errors.New("tag list contains duplicates")
	ErrDuplicateIngredient = errors.New("ingredient list contains duplicates")
	ErrAlreadyExists       = errors.New("relation already exists")
	ErrNotFound            = errors.New("not found")
	ErrSelfSubscription    = errors.New("cannot subscribe to yourself")
	ErrPermissionDenied    = errors.New("permission denied")
)

// IsValidationError reports whether err is one of the recipe payload
// validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyTagList) ||
		errors.Is(err, ErrEmptyIngredientList) ||
		errors.Is(err, ErrDuplicateTag) ||
		errors.Is(err, ErrDuplicateIngredient)
}
