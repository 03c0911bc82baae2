// Package scenarios selects how the gateway talks to the mart service.
package scenarios

import (
	"fmt"
	"log/slog"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/router"
)

type Factory func(cfg config.Config, logger *slog.Logger, exec executor.Interface) (router.Backend, error)

var reg = map[string]Factory{}

func Register(name string, f Factory) {
	reg[name] = f
}

func New(name string, cfg config.Config, logger *slog.Logger, exec executor.Interface) (router.Backend, error) {
	if f, ok := reg[name]; ok {
		return f(cfg, logger, exec)
	}
	if f, ok := reg["direct"]; ok {
		logger.Warn("unknown scenario; falling back to direct", "scenario", name)
		return f(cfg, logger, exec)
	}
	return nil, fmt.Errorf("no factory for scenario %q and no direct registered", name)
}
