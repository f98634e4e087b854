package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type options struct {
	Pattern string
	Delete  bool
	Count   int64
	Timeout time.Duration
}

// entrySummary is the printable part of a cached user. Password and token fields are never decoded.
type entrySummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// inspect walks keys matching o.Pattern with SCAN and reports each one to w.
func inspect(rdb *goredis.Client, w io.Writer, o options) (int, error) {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}

	var cursor uint64
	total := 0

	for {
		ctxScan, cancelScan := context.WithTimeout(context.Background(), o.Timeout)
		keys, next, err := rdb.Scan(ctxScan, cursor, o.Pattern, o.Count).Result()
		cancelScan()
		if err != nil {
			return total, fmt.Errorf("SCAN error: %w", err)
		}

		for _, k := range keys {
			total++
			ctxCmd, cancelCmd := context.WithTimeout(context.Background(), o.Timeout)
			raw, _ := rdb.Get(ctxCmd, k).Bytes() // a key may expire between SCAN and GET
			ttl, _ := rdb.TTL(ctxCmd, k).Result()
			cancelCmd()

			var s entrySummary
			if err := json.Unmarshal(raw, &s); err != nil {
				fmt.Fprintf(w, "%d) %s\n   ttl=%s\n   (undecodable entry)\n", total, k, ttl)
			} else {
				fmt.Fprintf(w, "%d) %s\n   ttl=%s\n   email=%s role=%s\n", total, k, ttl, s.Email, s.Role)
			}

			if o.Delete {
				ctxDel, cancelDel := context.WithTimeout(context.Background(), o.Timeout)
				n, err := rdb.Del(ctxDel, k).Result()
				cancelDel()
				if err != nil {
					fmt.Fprintf(w, "   DEL error: %v\n", err)
				} else {
					fmt.Fprintf(w, "   DEL ok: %d\n", n)
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return total, nil
}
