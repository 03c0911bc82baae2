// Package direct serves every request straight from the mart service.
package direct

import (
	"log/slog"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/config"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/router"
	"github.com/mohammed-shakir/biomart-gateway/internal/scenarios"
	"github.com/mohammed-shakir/biomart-gateway/pkg/biomart"
)

func init() {
	scenarios.Register("direct", newDirect)
}

func newDirect(cfg config.Config, logger *slog.Logger, exec executor.Interface) (router.Backend, error) {
	c := biomart.NewWithService(exec,
		biomart.WithLogger(logger),
		biomart.WithVirtualSchema(cfg.VirtualSchema),
	)
	return c, nil
}
