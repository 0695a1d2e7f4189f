package game

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-defense/internal/engine"
)

// posted moves fn to the simulation goroutine when the caller is not on
// it. A posted fn's error is logged since nobody is left to receive it.
func posted(clock *engine.Clock, logger *log.Logger, action string, fn func() error) bool {
	if !clock.IsThreadChangeNeeded() {
		return false
	}
	clock.Post(func() {
		if err := fn(); err != nil {
			logger.Warn(action, "err", err)
		}
	})
	return true
}
