// model/reservation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationTTL is how long a hold is considered valid. The expiry is
// derived and exposed, not enforced by any sweep.
const ReservationTTL = 7 * 24 * time.Hour

type Reservation struct {
	ID         uuid.UUID `json:"id"`
	InstanceID uuid.UUID `json:"instance_id"`
	UserID     uuid.UUID `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpireAt   time.Time `json:"expire_at"`
}
