// Command keygen mints a gateway API key and adds its hash to the Redis
// allow-list. The plaintext key is printed once and never stored.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kasuboski/openai-gateway/internal/keystore"
)

func main() {
	addr := flag.String("redis", "localhost:6379", "redis address")
	password := flag.String("password", "", "redis password")
	db := flag.Int("db", 0, "redis database")
	setName := flag.String("set", "gateway:api_keys", "allow-list set name")
	flag.Parse()

	key := "sk-gw-" + strings.ReplaceAll(uuid.New().String(), "-", "")

	rdb := redis.NewClient(&redis.Options{
		Addr:     *addr,
		Password: *password,
		DB:       *db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.SAdd(ctx, *setName, keystore.HashKey(key)).Err(); err != nil {
		log.Fatalf("failed to store key hash: %v", err)
	}

	fmt.Println("API key minted. Store it now; it cannot be recovered:")
	fmt.Println(key)
}
