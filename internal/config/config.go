// Package config loads and validates runtime configuration for the probed
// agent daemon.
//
// Precedence, lowest to highest: built-in defaults, the TOML file handed to
// LoadAgentConfig, then PROBED_* environment variables. A .env.local or .env
// file in the working directory seeds the environment before overrides are
// applied.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/probelab/probectl/internal/protocol"
)

// Sequencer source selectors accepted by AgentConfig.
const (
	SourceSim  = "sim"
	SourceFile = "file"
)

var (
	ErrMissingName      = errors.New("config: agent name is required")
	ErrMissingListen    = errors.New("config: listen_addr is required")
	ErrUnknownSource    = errors.New("config: unknown sequencer source")
	ErrMissingImagePath = errors.New("config: sequencer image_path is required when source is \"file\"")
	ErrSimRevisionRange = errors.New("config: sequencer sim_revision must fit in one byte")
	ErrSimSizeRange     = errors.New("config: sequencer sim_size exceeds the register trailer budget")
)

// AgentConfig is the probed runtime configuration. An empty AdminListenAddr
// leaves the admin surface disabled; an empty AdminToken leaves the metrics
// route open.
type AgentConfig struct {
	Name            string          `toml:"name" env:"PROBED_NAME"`
	ListenAddr      string          `toml:"listen_addr" env:"PROBED_LISTEN_ADDR"`
	AdminListenAddr string          `toml:"admin_listen_addr" env:"PROBED_ADMIN_LISTEN_ADDR"`
	AdminToken      string          `toml:"admin_token" env:"PROBED_ADMIN_TOKEN"`
	Reuseport       bool            `toml:"reuseport" env:"PROBED_REUSEPORT"`
	Sequencer       SequencerConfig `toml:"sequencer"`
}

// SequencerConfig selects where the agent reads register images from.
type SequencerConfig struct {
	Source      string `toml:"source" env:"PROBED_SEQUENCER_SOURCE"`
	ImagePath   string `toml:"image_path" env:"PROBED_SEQUENCER_IMAGE_PATH"`
	SimRevision int    `toml:"sim_revision" env:"PROBED_SEQUENCER_SIM_REVISION"`
	SimSize     int    `toml:"sim_size" env:"PROBED_SEQUENCER_SIM_SIZE"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name:       "probed",
		ListenAddr: ":9301",
		Sequencer: SequencerConfig{
			Source:      SourceSim,
			SimRevision: 1,
			SimSize:     protocol.SeqRegsResponseV0Trailer,
		},
	}
}

// LoadAgentConfig builds the probed config. An empty path skips the file
// layer and loads defaults plus environment overrides.
func LoadAgentConfig(ctx context.Context, path string) (AgentConfig, error) {
	cfg := DefaultAgentConfig()

	if strings.TrimSpace(path) != "" {
		var raw AgentConfig
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return AgentConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		overlayFile(&cfg, raw, meta)
	}

	if err := loadDotenv(); err != nil {
		return AgentConfig{}, err
	}
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return AgentConfig{}, fmt.Errorf("config env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return AgentConfig{}, err
	}
	return cfg, nil
}

// overlayFile copies only the keys the file actually defines, so file
// omissions keep defaults instead of zeroing them.
func overlayFile(cfg *AgentConfig, raw AgentConfig, meta toml.MetaData) {
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("admin_listen_addr") {
		cfg.AdminListenAddr = strings.TrimSpace(raw.AdminListenAddr)
	}
	if meta.IsDefined("admin_token") {
		cfg.AdminToken = strings.TrimSpace(raw.AdminToken)
	}
	if meta.IsDefined("reuseport") {
		cfg.Reuseport = raw.Reuseport
	}
	if meta.IsDefined("sequencer", "source") {
		cfg.Sequencer.Source = strings.TrimSpace(raw.Sequencer.Source)
	}
	if meta.IsDefined("sequencer", "image_path") {
		cfg.Sequencer.ImagePath = strings.TrimSpace(raw.Sequencer.ImagePath)
	}
	if meta.IsDefined("sequencer", "sim_revision") {
		cfg.Sequencer.SimRevision = raw.Sequencer.SimRevision
	}
	if meta.IsDefined("sequencer", "sim_size") {
		cfg.Sequencer.SimSize = raw.Sequencer.SimSize
	}
}

func loadDotenv() error {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("config dotenv load (%s): %w", name, err)
		}
	}
	return nil
}

func (c AgentConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return ErrMissingListen
	}
	switch c.Sequencer.Source {
	case SourceSim:
		if c.Sequencer.SimRevision < 0 || c.Sequencer.SimRevision > 0xff {
			return fmt.Errorf("%w: %d", ErrSimRevisionRange, c.Sequencer.SimRevision)
		}
		if c.Sequencer.SimSize < 1 || c.Sequencer.SimSize > protocol.SeqRegsResponseV0Trailer {
			return fmt.Errorf("%w: %d (budget %d)",
				ErrSimSizeRange, c.Sequencer.SimSize, protocol.SeqRegsResponseV0Trailer)
		}
	case SourceFile:
		if strings.TrimSpace(c.Sequencer.ImagePath) == "" {
			return ErrMissingImagePath
		}
	default:
		return fmt.Errorf("%w: %q (expected %s or %s)",
			ErrUnknownSource, c.Sequencer.Source, SourceSim, SourceFile)
	}
	return nil
}
