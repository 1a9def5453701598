// Package schedule wires per-symbol daily jobs onto a cron runner.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// Daily registers one cron entry per symbol firing at the given wall-clock
// time (hh:mm) in the given location. The caller owns the cron lifecycle
// (Start/Stop); this only adds entries.
func Daily(c *cron.Cron, symbols []string, at string, loc *time.Location, job func(symbol string)) error {
	hour, minute, err := parseClock(at)
	if err != nil {
		return err
	}

	spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), minute, hour)

	for _, symbol := range symbols {
		symbol := symbol
		if _, err := c.AddFunc(spec, func() { job(symbol) }); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err,
				"failed to schedule daily job for %s", symbol)
		}
	}

	return nil
}

func parseClock(at string) (hour, minute int, err error) {
	parts := strings.SplitN(at, ":", 2)
	if len(parts) != 2 {
		return 0, 0, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid time %q, want hh:mm", at)
	}

	t, parseErr := time.Parse("15:04", at)
	if parseErr != nil {
		return 0, 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, parseErr, "invalid time %q", at)
	}

	return t.Hour(), t.Minute(), nil
}
