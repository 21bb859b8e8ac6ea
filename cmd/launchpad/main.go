package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	appcfg "git.home.luguber.info/inful/launchpad/internal/config"
	"git.home.luguber.info/inful/launchpad/internal/launcher"
	"git.home.luguber.info/inful/launchpad/internal/preflight"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path, resolved against the root when relative" default:"launchpad.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Root    string `help:"Application root (defaults to the directory containing the launcher executable)"`

	Run struct{} `cmd:"" default:"1" help:"Sync the application root against its remote, then launch the application"`

	Sync struct{} `cmd:"" help:"Sync the application root without launching"`

	Status struct{} `cmd:"" help:"Report what a run would do without side effects"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	root, err := launcher.ResolveRoot(CLI.Root)
	if err != nil {
		slog.Error("Failed to resolve application root", "error", err)
		os.Exit(1)
	}
	configPath := CLI.Config
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(root, configPath)
	}

	switch ctx.Command() {
	case "run":
		os.Exit(runLaunch(root, configPath))
	case "sync":
		if err := runSync(root, configPath); err != nil {
			exitOnError("Sync failed", err)
		}
	case "status":
		if err := runStatus(root, configPath); err != nil {
			slog.Error("Status failed", "error", err)
			os.Exit(1)
		}
	case "init":
		if err := appcfg.Init(configPath, CLI.Init.Force); err != nil {
			slog.Error("Init failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Configuration written", "path", configPath)
	}
}

func runLaunch(root, configPath string) int {
	cfg, err := loadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	result, err := launcher.New(root, cfg).Run(context.Background())
	if err != nil {
		var toolErr *preflight.ToolNotFoundError
		if errors.As(err, &toolErr) {
			fmt.Fprintf(os.Stderr, "%s is required but was not found on PATH. Install it and try again.\n", toolErr.Tool)
			return 1
		}
		slog.Error("Run failed", "error", err)
		return 1
	}
	return result.ExitCode
}

func runSync(root, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	result, err := launcher.New(root, cfg).Sync(context.Background())
	if err != nil {
		return err
	}
	slog.Info("Sync completed", "action", result.Action, "commit", result.Commit, "up_to_date", result.UpToDate)
	return nil
}

func runStatus(root, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st := launcher.New(root, cfg).Status()

	fmt.Printf("root:    %s\n", st.Root)
	fmt.Printf("sync:    %s\n", st.Action)
	if st.Head != nil {
		fmt.Printf("branch:  %s\n", st.Head.Branch)
		fmt.Printf("commit:  %s\n", st.Head.Commit)
	}
	fmt.Printf("binary:  present=%t\n", st.BinaryPresent)
	fmt.Printf("launch:  %s\n", st.Decision)
	return nil
}

func loadConfig(configPath string) (*appcfg.Config, error) {
	cfg, err := appcfg.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func exitOnError(msg string, err error) {
	var toolErr *preflight.ToolNotFoundError
	if errors.As(err, &toolErr) {
		fmt.Fprintf(os.Stderr, "%s is required but was not found on PATH. Install it and try again.\n", toolErr.Tool)
	} else {
		slog.Error(msg, "error", err)
	}
	os.Exit(1)
}
