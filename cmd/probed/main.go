package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/probelab/probectl/internal/agent"
	"github.com/probelab/probectl/internal/config"
	"github.com/probelab/probectl/internal/logging"
	"github.com/probelab/probectl/internal/observability"
	"github.com/probelab/probectl/internal/sequencer"
)

func main() {
	configPath := flag.String("config", "", "path to probed config (TOML)")
	flag.Parse()

	logging.ConfigureRuntime()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "probed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadAgentConfig(context.Background(), configPath)
	if err != nil {
		return err
	}

	seq, err := buildSequencer(cfg.Sequencer)
	if err != nil {
		return err
	}

	svc, err := agent.NewService(agent.ServiceOptions{
		Name:       cfg.Name,
		ListenAddr: cfg.ListenAddr,
		AdminAddr:  cfg.AdminListenAddr,
		AdminToken: cfg.AdminToken,
		Reuseport:  cfg.Reuseport,
		Sequencer:  seq,
		Log:        observability.InitLogger("probed"),
	})
	if err != nil {
		return err
	}
	return svc.Run()
}

func buildSequencer(cfg config.SequencerConfig) (sequencer.Reader, error) {
	switch cfg.Source {
	case config.SourceSim:
		return sequencer.NewSim(byte(cfg.SimRevision), cfg.SimSize), nil
	case config.SourceFile:
		return sequencer.File{Path: cfg.ImagePath}, nil
	default:
		return nil, fmt.Errorf("probed: unsupported sequencer source %q", cfg.Source)
	}
}
