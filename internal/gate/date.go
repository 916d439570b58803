package gate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/keepsakelabs/giftvault/internal/models"
)

// ReferenceZoneName is the fixed timezone all date checks are evaluated in,
// regardless of the viewer's local zone. This makes the reveal moment
// observer-independent.
const ReferenceZoneName = "Asia/Kolkata"

// referenceZone is resolved once. IST has no DST, so the fixed-offset
// fallback is exact when the tz database is unavailable.
var referenceZone = func() *time.Location {
	loc, err := time.LoadLocation(ReferenceZoneName)
	if err != nil {
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}()

// Eligibility is the outcome of a date check.
type Eligibility struct {
	Eligible bool
	// Remaining is the live countdown shown while locked, formatted as
	// whole hours and minutes ("5h 32m"). Empty when eligible.
	Remaining string
}

// CheckDate evaluates whether the reveal date has arrived, interpreting both
// the configured date and now in the reference timezone.
//
// The whole calendar day of birthdayDate is eligible. A date that fails to
// parse grants access (fail-open): a broken record must never trap the
// recipient, and the creator flow validates dates at save time.
func CheckDate(now time.Time, birthdayDate string, log *slog.Logger) Eligibility {
	ist := now.In(referenceZone)

	bday, err := time.ParseInLocation(models.DateLayout, birthdayDate, referenceZone)
	if err != nil {
		if log != nil {
			log.Warn("unparseable reveal date, failing open", "date", birthdayDate, "error", err)
		}
		return Eligibility{Eligible: true}
	}

	today := time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, referenceZone)

	if today.Before(bday) {
		return Eligibility{Remaining: untilMidnight(ist)}
	}
	// On the day or past it. The midnight boundary is closed: access opens
	// the moment the reference-zone date flips.
	return Eligibility{Eligible: true}
}

// untilMidnight formats the wall-clock time from now until the next midnight
// in the reference zone as whole hours and minutes.
func untilMidnight(ist time.Time) string {
	next := time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, referenceZone).AddDate(0, 0, 1)
	diff := next.Sub(ist)
	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// PollInterval is how often a locked view recomputes the countdown.
const PollInterval = time.Minute

// Watch re-evaluates eligibility every PollInterval and delivers each result
// to fn, starting with an immediate evaluation. It returns when the context
// is cancelled or when an evaluation reports eligible, so a waiting view
// unlocks without user action.
func Watch(ctx context.Context, birthdayDate string, log *slog.Logger, fn func(Eligibility)) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		e := CheckDate(time.Now(), birthdayDate, log)
		fn(e)
		if e.Eligible {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
