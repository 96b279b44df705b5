// Package store persists normalized records, upserting on council_reference.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/planningalerts-scrapers/horizon-xml/pkg/record"
)

var upsertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "horizon_store_upserts_total",
	Help: "Record upserts by driver and result",
}, []string{"driver", "result"})

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Driver names.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverJSONL  = "jsonl"
)

// Sink receives records one at a time.
type Sink interface {
	Upsert(ctx context.Context, rec record.Record) error
	Close() error
}

// Config selects and configures a sink.
type Config struct {
	Driver string `yaml:"driver"`

	SQLitePath string `yaml:"sqlite_path"`

	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// DefaultConfig stores into data.sqlite in the working directory.
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		SQLitePath:      "data.sqlite",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "planning",
		MongoCollection: "applications",
		RedisAddr:       "localhost:6379",
		RedisPrefix:     "horizon",
	}
}

// Open connects the configured sink.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisPrefix)
	case DriverJSONL:
		return NewJSONL(os.Stdout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func observe(driver string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upsertsTotal.WithLabelValues(driver, result).Inc()
}
