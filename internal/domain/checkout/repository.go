package checkout

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("checkout intent not found")

type Repository interface {
	Save(*Intent) error
	FindByID(intentID string) (*Intent, error)
	FindByChargeID(chargeID string) (*Intent, error)
	// MarkExpired transitions every pending intent whose expiry is before
	// the cutoff and returns how many were touched.
	MarkExpired(cutoff time.Time) (int, error)
}
