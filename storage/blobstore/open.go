package blobstore

import (
	"github.com/pkg/errors"

	"github.com/sarvodaya/feedesk/core"
	"github.com/sarvodaya/feedesk/storage/blobstore/inmem"
	"github.com/sarvodaya/feedesk/storage/blobstore/redisblob"
	"github.com/sarvodaya/feedesk/storage/blobstore/sqlblob"
)

// Open returns the BlobStore selected by conf.Driver.
func Open(conf core.StoreConfig) (core.BlobStore, error) {
	switch conf.Driver {
	case "memory", "inmem":
		return inmemblob.Open(), nil
	case "sqlite", "sqlite3":
		s, err := sqlblob.Open(sqlblob.DriverSQLite, conf.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "opening sqlite store")
		}
		return s, nil
	case "postgres":
		s, err := sqlblob.Open(sqlblob.DriverPostgres, conf.DSN)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres store")
		}
		return s, nil
	case "redis":
		s, err := redisblob.Open(conf.RedisAddr, conf.RedisPassword, conf.RedisPrefix)
		if err != nil {
			return nil, errors.Wrap(err, "opening redis store")
		}
		return s, nil
	default:
		return nil, errors.Errorf("unknown store driver %q", conf.Driver)
	}
}
