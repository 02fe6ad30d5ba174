package monitor

import (
	"time"

	"github.com/google/uuid"
)

// Monitor is a monitored resource owned by a user. Check execution lives
// elsewhere; this package only manages the records that quota enforcement
// counts.
type Monitor struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	URL       string
	Interval  int // seconds between checks
	CreatedAt time.Time
}
