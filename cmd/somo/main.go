package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwenda/somo/internal/adapter"
	"github.com/mwenda/somo/internal/adapter/source/rest"
	"github.com/mwenda/somo/internal/assetstore"
	"github.com/mwenda/somo/internal/offline"
	"github.com/mwenda/somo/internal/search"
	"github.com/mwenda/somo/internal/store"
	"github.com/mwenda/somo/internal/tracker"
	"github.com/mwenda/somo/internal/tui"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("somo %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting somo", "version", Version)

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	client := rest.NewClient(cfg.Server.URL, cfg.Server.Token, logger)

	cacheStore, err := store.NewCacheStore(adapter.GetCachePath(), cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer cacheStore.Close()

	assets, err := assetstore.NewDiskStore(filepath.Join(adapter.GetCachePath(), "assets"), logger)
	if err != nil {
		return fmt.Errorf("failed to open asset store: %w", err)
	}

	trk := tracker.New(cacheStore, logger)

	svc := offline.NewService(client, cacheStore, assets, trk, logger)
	svc.SetAssetConcurrency(cfg.Download.AssetConcurrency)

	searchSvc := search.NewService(cacheStore, logger)

	model := tui.NewModel(svc, searchSvc)

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow prompts for server URL and access token on first run
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to somo!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter your content server URL (e.g., https://learn.example.com): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read server URL: %w", err)
	}
	serverURL := strings.TrimSpace(input)
	if serverURL == "" {
		return fmt.Errorf("server URL is required")
	}
	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		serverURL = "https://" + serverURL
	}

	fmt.Print("Enter your access token (input hidden): ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return fmt.Errorf("access token is required")
	}

	cfg.Server.URL = serverURL
	cfg.Server.Token = token

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("Configuration saved.")
	fmt.Println()
	return nil
}
