package document

import (
	"fmt"
	"math"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/ngram-search/pkg/errors"
)

// ID identifies a document. IDs are assigned by the document source and are
// immutable once a collection is built.
type ID uint16

// MaxID is the largest representable document identifier.
const MaxID = math.MaxUint16

// NewID converts v to an ID, failing instead of wrapping when v does not fit.
func NewID(v int) (ID, error) {
	if v < 0 || v > MaxID {
		return 0, fmt.Errorf("%w: %d not in [0, %d]", apperrors.ErrIDOutOfRange, v, MaxID)
	}
	return ID(v), nil
}

// CheckCapacity reports whether a collection of n documents can be given
// distinct identifiers.
func CheckCapacity(n int) error {
	if n > MaxID+1 {
		return fmt.Errorf("%w: %d documents exceed the %d representable ids",
			apperrors.ErrIDOutOfRange, n, MaxID+1)
	}
	return nil
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
