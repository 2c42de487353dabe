package util

import (
	"fmt"
	"time"

	"github.com/ljmet/condorsub/compute"
	"github.com/ljmet/condorsub/compute/gridengine"
	"github.com/ljmet/condorsub/compute/htcondor"
	"github.com/ljmet/condorsub/compute/noop"
	"github.com/ljmet/condorsub/compute/pbs"
	"github.com/ljmet/condorsub/compute/slurm"
	"github.com/ljmet/condorsub/config"
	"github.com/ljmet/condorsub/database"
	"github.com/ljmet/condorsub/database/boltdb"
)

// NewSubmitter returns the submitter for the configured backend.
func NewSubmitter(conf config.Submit) (compute.Submitter, error) {
	timeout := time.Duration(conf.Timeout)
	switch conf.Backend {
	case htcondor.Name:
		return htcondor.NewBackend(conf.Command, timeout), nil
	case slurm.Name:
		return slurm.NewBackend(conf.Command, timeout), nil
	case pbs.Name:
		return pbs.NewBackend(conf.Command, timeout), nil
	case gridengine.Name:
		return gridengine.NewBackend(conf.Command, timeout), nil
	case noop.Name:
		return noop.NewBackend(), nil
	default:
		return nil, fmt.Errorf("%w: unknown Submit.Backend %q", config.ErrInvalid, conf.Backend)
	}
}

// OpenLedger opens and initializes the configured ledger.
func OpenLedger(conf config.Ledger) (database.Ledger, error) {
	db, err := boltdb.NewBoltDB(conf)
	if err != nil {
		return nil, err
	}
	if err := db.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing ledger %s: %w", conf.Path, err)
	}
	return db, nil
}
