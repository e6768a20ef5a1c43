package airfryer

import (
	"github.com/joshp123/condor/internal/config"
	"github.com/joshp123/condor/internal/core"
	"github.com/joshp123/condor/internal/logger"
	"github.com/joshp123/condor/internal/plugins"
)

func init() {
	plugins.Register(func(cfg *config.Config, log *logger.Logger) (core.Plugin, bool) {
		return NewPlugin(cfg, log)
	})
}
