package modkit

import (
	"biokb/internal/modkit/repokit"
	"biokb/internal/platform/config"
	"biokb/internal/platform/logger"
)

// Deps holds the core dependencies every adapter constructor takes
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	DB  repokit.TxRunner
}
