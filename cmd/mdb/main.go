// Command mdb is the document data service. It serves orders and posts as
// JSON documents kept in Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aoideee/storegate/internal/data"
	"github.com/aoideee/storegate/internal/web"
)

// collections served by this service, in route order.
var collections = []string{"order", "post"}

type serverConfig struct {
	port  int
	env   string
	redis struct {
		addr     string
		password string
		db       int
		prefix   string
	}
}

// applicationDependencies bundles what the handlers need.
type applicationDependencies struct {
	*web.Responder
	config    serverConfig
	logger    *slog.Logger
	documents data.DocumentModel
}

func main() {
	var cfg serverConfig

	flag.IntVar(&cfg.port, "port", 5002, "Server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment(development|staging|production)")
	flag.StringVar(&cfg.redis.addr, "redis-addr", "localhost:6379", "Redis address")
	flag.StringVar(&cfg.redis.password, "redis-password", os.Getenv("STOREGATE_MDB_REDIS_PASSWORD"), "Redis password")
	flag.IntVar(&cfg.redis.db, "redis-db", 0, "Redis database number")
	flag.StringVar(&cfg.redis.prefix, "redis-prefix", "mdb:", "Key prefix for document collections")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	client, err := openRedis(cfg)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	logger.Info("redis connection established", "addr", cfg.redis.addr)

	app := &applicationDependencies{
		Responder: &web.Responder{Logger: logger},
		config:    cfg,
		logger:    logger,
		documents: data.DocumentModel{Client: client, Prefix: cfg.redis.prefix},
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	err = web.Serve(srv, logger, cfg.env, func() {
		if err := client.Close(); err != nil {
			logger.Error("closing redis client", "error", err)
		}
	})
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

// openRedis connects and pings with a 5-second timeout.
func openRedis(cfg serverConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.redis.addr,
		Password: cfg.redis.password,
		DB:       cfg.redis.db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
