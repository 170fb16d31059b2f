package storage

import (
	"context"
	"fmt"
)

// Supported storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and locates a KV backend.
type Options struct {
	Driver     string
	Path       string // directory for file, database file for sqlite
	DSN        string // postgres connection string
	Migrations string // postgres migrations directory
}

// Open returns the backend named by opts.Driver. Postgres migrations are
// applied before the pool is opened.
func Open(ctx context.Context, opts Options) (KV, error) {
	var (
		kv  KV
		err error
	)
	switch opts.Driver {
	case DriverFile, "":
		kv, err = OpenFile(opts.Path)
	case DriverSQLite:
		kv, err = OpenSQLite(opts.Path)
	case DriverPostgres:
		if opts.Migrations != "" {
			if err := RunMigrations(opts.DSN, opts.Migrations); err != nil {
				return nil, err
			}
		}
		kv, err = New(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return kv, nil
}
