package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// New creates a new mongo client, retrying the initial connection according
// to the config. It returns an error when every attempt fails.
func New(ctx context.Context, cfg Config) (*mongo.Client, error) {
	for range cfg.RetryAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.ConnectionURL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(cfg.RetryWrites).
				SetRetryReads(cfg.RetryReads),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client, nil
			}
		}

		time.Sleep(cfg.RetryInterval)
	}

	return nil, ErrFailedToConnect
}

// NewDatabase creates a new mongo client and returns a handle for the
// configured application database.
func NewDatabase(ctx context.Context, cfg Config) (*mongo.Database, error) {
	client, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.DatabaseName), nil
}
