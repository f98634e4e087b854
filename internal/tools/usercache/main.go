// Command usercache lists, and optionally evicts, entries of the Redis user cache.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/accounts-api/internal/infrastructure/redis"
)

func main() {
	var (
		addr    = flag.String("addr", "127.0.0.1:6379", "redis address host:port")
		pass    = flag.String("pass", "", "redis password")
		db      = flag.Int("db", 0, "redis db")
		id      = flag.String("id", "", "only this user id (default: all cached users)")
		doDel   = flag.Bool("del", false, "delete matched keys")
		limit   = flag.Int64("count", 200, "SCAN COUNT hint")
		timeout = flag.Duration("timeout", 2*time.Second, "per-command timeout")
	)
	flag.Parse()

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     *addr,
		Password: *pass,
		DB:       *db,
	})
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "redis ping failed: %v\n", err)
		os.Exit(1)
	}

	pattern := redis.UserCacheKeyPrefix + "*"
	if *id != "" {
		pattern = redis.UserCacheKeyPrefix + *id
	}
	fmt.Printf("Connected: addr=%s db=%d pattern=%q\n", *addr, *db, pattern)

	total, err := inspect(rdb, os.Stdout, options{
		Pattern: pattern,
		Delete:  *doDel,
		Count:   *limit,
		Timeout: *timeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if total == 0 {
		fmt.Println("No keys matched.")
	}
}
