package memory

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// StartSweeper schedules Sweep on the given cron spec (e.g. "@every 10m").
// Stop the returned cron on shutdown.
func StartSweeper(repo *SessionRepository, spec string, log zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := repo.Sweep(time.Now()); n > 0 {
			log.Debug().Int("removed", n).Msg("expired sessions swept")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
