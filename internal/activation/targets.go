package activation

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/xabinapal/ccswitch/internal/config"
	"github.com/xabinapal/ccswitch/internal/shell"
)

// StrategyConfig holds what BuildStrategies needs to construct each target.
type StrategyConfig struct {
	Targets          []string
	SettingsFile     string
	SettingsDefaults SettingsDefaults
	Observation      shell.Observation
	Home             string
	EnvStore         EnvStore
	Out              io.Writer
	Logger           *logrus.Entry
}

// BuildStrategies turns target names into strategies, in order. The manual
// target always runs last, wherever it appears in Targets.
func BuildStrategies(cfg StrategyConfig) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(cfg.Targets)+1)
	seen := make(map[string]bool, len(cfg.Targets))

	for _, name := range cfg.Targets {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case config.TargetSettings:
			strategies = append(strategies, NewSettingsStrategy(cfg.SettingsFile, cfg.SettingsDefaults, cfg.Logger))
		case config.TargetShell:
			strategies = append(strategies, NewShellStrategy(cfg.Observation, cfg.Home))
		case config.TargetOS:
			strategies = append(strategies, NewOSEnvStrategy(cfg.Observation, cfg.Home, cfg.EnvStore))
		case config.TargetManual:
		default:
			return nil, fmt.Errorf("unknown activation target %q", name)
		}
	}

	strategies = append(strategies, NewManualStrategy(shell.Detect(cfg.Observation), cfg.Out))
	return strategies, nil
}
