// Package engines constructs speech engines from configuration.
package engines

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/voxsync/voxsync/tts"
	"github.com/voxsync/voxsync/tts/engines/exec"
	"github.com/voxsync/voxsync/tts/engines/mock"
)

// New builds the engine named by cfg.Engine. An exec engine whose command
// is missing or cannot be found falls back to the mock engine so speech
// still works out of the box.
func New(cfg tts.Config) (tts.Engine, error) {
	switch cfg.Engine {
	case "", "mock":
		return mock.New(cfg.Mock), nil
	case "exec":
		eng := exec.New(cfg.Exec)
		if !eng.Available() {
			log.Warn("exec engine not available, falling back to mock", "command", cfg.Exec.Command)
			return mock.New(cfg.Mock), nil
		}
		return eng, nil
	default:
		return nil, fmt.Errorf("%w: %q", tts.ErrUnknownEngine, cfg.Engine)
	}
}
