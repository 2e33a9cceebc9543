package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog/log"
)

func TestDefaults(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.GetInt(ConfigWorkers), 3)
	is.Equal(cfg.GetInt(ConfigWorkerDepth), 6)
	is.Equal(cfg.GetInt(ConfigRerankDepth), 1)
	is.Equal(cfg.GetString(ConfigTransport), TransportLocal)
	is.Equal(cfg.GetString(ConfigColour), "black")
	is.NoErr(cfg.Validate())
}

func TestLoadPriority(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "othello.yaml")
	is.NoErr(os.WriteFile(path, []byte("workers: 5\nworker-depth: 4\ncolour: white\n"), 0644))

	t.Setenv("OTHELLO_WORKER_DEPTH", "3")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--config-file", path, "--colour", "black", "--debug"}))
	is.Equal(cfg.GetInt(ConfigWorkers), 5)         // file
	is.Equal(cfg.GetInt(ConfigWorkerDepth), 3)     // env beats file
	is.Equal(cfg.GetString(ConfigColour), "black") // flag beats file
	is.True(cfg.GetBool(ConfigDebug))
	is.Equal(cfg.GetInt(ConfigRerankDepth), 1) // default
	_, ok := cfg.SanitizedSettings()[ConfigWorkerDepth]
	is.True(ok)
}

func TestLoadRejectsBadValues(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	err := cfg.Load([]string{"--workers", "0"})
	is.True(errors.Is(err, ErrBadConfig))

	err = cfg.Load([]string{"--transport", "carrier-pigeon"})
	is.True(errors.Is(err, ErrBadConfig))
}

func TestLoadKeepsArgs(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--workers", "2", "gen", "3"}))
	is.Equal(cfg.Args(), []string{"gen", "3"})
	is.Equal(cfg.GetInt(ConfigWorkers), 2)
}

func TestSetupLoggingToFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "othello.log")
	closer, err := SetupLogging(path, true)
	is.NoErr(err)
	log.Debug().Msg("written-to-file")
	is.NoErr(closer.Close())
	_, _ = SetupLogging("", false)

	data, err := os.ReadFile(path)
	is.NoErr(err)
	is.True(strings.Contains(string(data), "written-to-file"))
}
