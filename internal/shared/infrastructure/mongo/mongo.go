package mongo

import (
	"context"
	"errors"
	"time"

	"Strongholds/internal/shared/serverconfig"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const (
	appName         = "strongholds"
	defaultDatabase = "strongholds"
	defaultTimeout  = 3 * time.Second
)

// Open 连接 MongoDB 并确认主节点可达，返回回放所在的库和断开函数。
func Open(ctx context.Context, cfg serverconfig.MongoDBConfig, l *zap.Logger) (*mongo.Database, func(), error) {
	if cfg.URI == "" {
		return nil, nil, errors.New("mongodb uri is empty")
	}
	if l == nil {
		l = zap.NewNop()
	}
	timeout := time.Duration(cfg.ConnectTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	dbName := cfg.Database
	if dbName == "" {
		dbName = defaultDatabase
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			l.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnect()
		return nil, nil, err
	}

	// uri 可能带账号密码，只记库名
	l.Info("open mongodb success", zap.String("database", dbName), zap.Duration("timeout", timeout))
	return client.Database(dbName), disconnect, nil
}
