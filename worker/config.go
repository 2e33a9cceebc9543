package worker

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/protocol"
)

var ErrBadConfig = errors.New("bad worker configuration")

// WorkerConfig holds configuration for one search worker process.
type WorkerConfig struct {
	// Index is this worker's position in the pool, 0-based.
	Index int

	// Depth is the worker search depth; each root move is searched
	// Depth-1 plies past the move itself.
	Depth int

	// Evaluator names the static evaluator (positional or disccount).
	Evaluator string

	// WeightsFile optionally replaces the positional weight table.
	WeightsFile string

	NatsURL       string
	SubjectPrefix string

	// How long to keep trying to reach NATS on startup.
	ConnectTimeout time.Duration

	// LogFile, if set, receives this worker's log; the index is appended.
	LogFile string
	Debug   bool
}

// DefaultWorkerConfig creates a WorkerConfig from the environment.
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		Index:          getEnvInt("OTHELLO_WORKER_INDEX", 0),
		Depth:          getEnvInt("OTHELLO_WORKER_DEPTH", 6),
		Evaluator:      getEnv("OTHELLO_EVALUATOR", equity.PositionalName),
		WeightsFile:    getEnv("OTHELLO_WEIGHTS_FILE", ""),
		NatsURL:        getEnv("OTHELLO_NATS_URL", "nats://127.0.0.1:4222"),
		SubjectPrefix:  getEnv("OTHELLO_SUBJECT_PREFIX", protocol.DefaultSubjectPrefix),
		ConnectTimeout: getEnvDuration("OTHELLO_CONNECT_TIMEOUT", 30*time.Second),
		LogFile:        getEnv("OTHELLO_LOG_FILE", ""),
		Debug:          getEnv("OTHELLO_DEBUG", "") == "true",
	}
}

func (c *WorkerConfig) Validate() error {
	if c.Index < 0 {
		return fmt.Errorf("%w: index %d", ErrBadConfig, c.Index)
	}
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth %d", ErrBadConfig, c.Depth)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration from an environment variable or returns a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
