package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
)

type ReleaseLock func() error

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
	keyPrefix      string
}

var ctx = context.Background()

type Config struct {
	LockExpirationSeconds int    `envconfig:"HPOA_REDIS_LOCK_EXPIRATION" default:"600"`
	Host                  string `envconfig:"HPOA_REDIS_HOST" required:"true"`
	Port                  string `envconfig:"HPOA_REDIS_PORT" default:"6379"`
	DB                    int    `envconfig:"HPOA_REDIS_DB" default:"0"`
	Password              string `envconfig:"HPOA_REDIS_PASSWORD" default:""`
	HAMode                bool   `envconfig:"HPOA_REDIS_HA_MODE" default:"false"`
	HASentinelPort        string `envconfig:"HPOA_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName  string `envconfig:"HPOA_REDIS_HA_MASTER_NAME" default:"mymaster"`
	KeyPrefix             string `envconfig:"HPOA_REDIS_KEY_PREFIX" default:"hpoa"`
}

func NewClient() (*Client, error) {
	cfg, err := readEnvironment()
	if err != nil {
		return nil, err
	}
	return NewClientFromConfig(cfg), nil
}

func NewClientFromConfig(cfg *Config) *Client {
	var client redis.UniversalClient
	if cfg.HAMode {
		client = createFailoverClient(cfg)
	} else {
		client = createClient(cfg)
	}
	return &Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
		keyPrefix:      cfg.KeyPrefix,
	}
}

func createFailoverClient(cfg *Config) *redis.Client {
	return redis.NewFailoverClient(&redis.FailoverOptions{
		SentinelAddrs: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)},
		MasterName:    cfg.HASentinelMasterName,
		MaxRetries:    6,
		DB:            cfg.DB,
		Password:      cfg.Password,
	})
}

func createClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         cfg.DB,
		Password:   cfg.Password,
	})
}

// Key joins parts under the configured prefix, e.g. "hpoa:report:latest".
func (client *Client) Key(parts ...string) string {
	if client.keyPrefix == "" {
		return strings.Join(parts, ":")
	}
	return client.keyPrefix + ":" + strings.Join(parts, ":")
}

// Lock obtains an exclusive lock named name, retrying for about 20 seconds.
func (client *Client) Lock(name string) (ReleaseLock, error) {
	lockCl := redislock.New(client.client)
	str := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lock, err := lockCl.Obtain(ctx, client.Key("lock", name), client.lockExpiration, &redislock.Options{RetryStrategy: str})
	if err != nil {
		return nil, fmt.Errorf("could not obtain lock %s: %w", name, err)
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

// Get returns the raw value at key; found is false when the key is not set.
func (client *Client) Get(key string) (value []byte, found bool, err error) {
	response := client.client.Get(ctx, key)
	if errors.Is(response.Err(), redis.Nil) {
		return nil, false, nil
	}
	if response.Err() != nil {
		return nil, false, response.Err()
	}
	b, err := response.Bytes()
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (client *Client) Set(key string, value []byte) error {
	return client.client.Set(ctx, key, value, 0).Err()
}

func (client *Client) GetJSON(key string, v interface{}) (bool, error) {
	b, found, err := client.Get(key)
	if err != nil || !found {
		return found, err
	}
	return true, json.Unmarshal(b, v)
}

func (client *Client) SetJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(key, b)
}

// PushHistory prepends value to the list at key and keeps the newest keep items.
func (client *Client) PushHistory(key string, value []byte, keep int64) error {
	pipe := client.client.TxPipeline()
	pipe.LPush(ctx, key, value)
	pipe.LTrim(ctx, key, 0, keep-1)
	_, err := pipe.Exec(ctx)
	return err
}

func (client *Client) Close() error {
	return client.client.Close()
}

func readEnvironment() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
