package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"storefront/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long a one-time code stays valid.
const DefaultTTL = 10 * time.Minute

// Store persists one-time codes keyed by email address. A code verifies at
// most once: Consume removes it atomically on a successful match.
type Store interface {
	// Save stores a code for the email, replacing any previous one.
	Save(ctx context.Context, email, code string, ttl time.Duration) error

	// Consume verifies the code for the email. On a match the token is deleted
	// in the same step so it can never verify twice. Expired or unknown codes
	// report false.
	Consume(ctx context.Context, email, code string) (bool, error)

	// Close releases the underlying connection.
	Close() error
}

// consumeScript compares and deletes in one atomic server-side step. A failed
// match leaves the token in place so a typo does not burn the code.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// redisStore implements Store on Redis; TTL handling comes from key expiry.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and returns a Store backed by it.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("OTP store connected")

	return &redisStore{
		client: client,
		logger: logger.With().Str("component", "otp-store").Logger(),
	}, nil
}

func key(email string) string {
	return "otp:" + email
}

// Save stores a code for the email, replacing any previous one.
func (s *redisStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(email), code, ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to save OTP")
		return fmt.Errorf("failed to save OTP: %w", err)
	}
	return nil
}

// Consume verifies and deletes the code for the email in one atomic step.
func (s *redisStore) Consume(ctx context.Context, email, code string) (bool, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{key(email)}, code).Int()
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to consume OTP")
		return false, fmt.Errorf("failed to consume OTP: %w", err)
	}
	return res == 1, nil
}

// Close releases the underlying connection.
func (s *redisStore) Close() error {
	return s.client.Close()
}

// GenerateCode returns a random six-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
