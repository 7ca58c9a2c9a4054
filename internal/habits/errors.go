package habits

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrValidation indicates bad or missing caller input.
	ErrValidation = errors.New("habits: invalid input")
	// ErrNotFound indicates an operation referenced an id that does not exist.
	ErrNotFound = errors.New("habits: not found")
	// ErrConnectivity indicates the backing store could not be reached or the
	// storage call failed. Callers decide whether to surface and retry.
	ErrConnectivity = errors.New("habits: storage unavailable")
)

// storageError classifies an error returned by the store into the package
// taxonomy, keeping the original cause in the chain.
func storageError(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	return fmt.Errorf("%w: %s: %v", ErrConnectivity, operation, err)
}
