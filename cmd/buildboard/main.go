package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/syedkumailraza2/buildboard/internal/config"
	"github.com/syedkumailraza2/buildboard/internal/database"
	"github.com/syedkumailraza2/buildboard/internal/extract"
	"github.com/syedkumailraza2/buildboard/internal/llm"
	"github.com/syedkumailraza2/buildboard/internal/mcp"
	"github.com/syedkumailraza2/buildboard/internal/popup"
	"github.com/syedkumailraza2/buildboard/internal/prompt"
	"github.com/syedkumailraza2/buildboard/internal/relay"
	"github.com/syedkumailraza2/buildboard/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "buildboard",
	Short:   "AI project idea generator",
	Long:    "BuildBoard asks a generative model for a project idea at a chosen difficulty and presents it as a card.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if strings.EqualFold(cfg.Logging.Level, "DEBUG") {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ideaCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("buildboard", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/buildboard/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Set GEMINI_API_KEY (or a .env file) and edit the config to pick a provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and history status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Generation:")
		fmt.Printf("  Provider: %s\n", cfg.Generation.Provider)
		fmt.Printf("  Model: %s\n", cfg.Generation.Model)
		keyState := "missing"
		if cfg.APIKeySet() {
			keyState = "set"
		}
		fmt.Printf("  %s: %s\n", cfg.Generation.APIKeyEnv, keyState)
		fmt.Printf("  Relay: http://%s/generate\n", cfg.Relay.Addr())

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("\nHistory:")
		fmt.Printf("  Total ideas: %d\n", stats.TotalIdeas)
		fmt.Printf("  Parsed: %d\n", stats.ParsedIdeas)
		fmt.Printf("  Invalid: %d\n", stats.InvalidIdeas)

		if len(stats.ByDifficulty) > 0 {
			fmt.Println("\nBy difficulty:")
			levels := make([]string, 0, len(stats.ByDifficulty))
			for k := range stats.ByDifficulty {
				levels = append(levels, k)
			}
			sort.Slice(levels, func(i, j int) bool {
				return stats.ByDifficulty[levels[i]] > stats.ByDifficulty[levels[j]]
			})
			for _, l := range levels {
				fmt.Printf("  %s: %d\n", l, stats.ByDifficulty[l])
			}
		}
		return nil
	},
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay, the idea page and the MCP endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort > 0 {
			cfg.Relay.Port = servePort
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		provider := llm.CreateProvider(cfg.Generation)
		warnIfUnconfigured(provider)

		var recorder popup.Recorder
		if cfg.Output.SaveHistory {
			recorder = db
		}
		controller := popup.NewController(popup.ProviderSource{Provider: provider}, recorder)

		mcpSrv := mcp.NewMCPServer(controller, db, version)

		srv, err := server.New(server.Deps{
			Controller: controller,
			Relay:      relay.NewHandler(provider, cfg.Relay.AllowedOrigin),
			History:    db,
			MCP:        mcpserver.NewStreamableHTTPServer(mcpSrv.Server()),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Starting server at http://%s\n", cfg.Relay.Addr())
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, srv.Handler(), cfg.Relay.Addr())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- idea command ---

var (
	ideaDifficulty string
	ideaServer     string
	ideaRemote     bool
	ideaNoSave     bool
)

var ideaCmd = &cobra.Command{
	Use:   "idea",
	Short: "Generate a project idea",
	RunE: func(cmd *cobra.Command, args []string) error {
		var source popup.Source
		serverURL := ideaServer
		if serverURL == "" && ideaRemote {
			serverURL = cfg.Client.ServerURL
		}
		if serverURL != "" {
			timeout := time.Duration(cfg.Client.TimeoutSeconds) * time.Second
			source = relay.NewClient(serverURL, timeout)
		} else {
			provider := llm.CreateProvider(cfg.Generation)
			warnIfUnconfigured(provider)
			source = popup.ProviderSource{Provider: provider}
		}

		var recorder popup.Recorder
		if cfg.Output.SaveHistory && !ideaNoSave {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			recorder = db
		}

		display := popup.NewTextDisplay(os.Stdout)
		out := popup.NewController(source, recorder).Generate(cmd.Context(), ideaDifficulty, display)
		if out.Kind == popup.KindError {
			// Already shown by the display.
			cmd.SilenceErrors = true
			return out.Err
		}
		return nil
	},
}

func init() {
	ideaCmd.Flags().StringVarP(&ideaDifficulty, "difficulty", "d", prompt.DefaultDifficulty, "Difficulty level")
	ideaCmd.Flags().StringVar(&ideaServer, "server", "", "Relay URL to call instead of the provider")
	ideaCmd.Flags().BoolVar(&ideaRemote, "remote", false, "Call the relay at client.server_url")
	ideaCmd.Flags().BoolVar(&ideaNoSave, "no-save", false, "Do not record the result in history")
}

// --- prompt command ---

var promptDifficulty string

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt sent for a difficulty",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(prompt.Build(promptDifficulty))
	},
}

func init() {
	promptCmd.Flags().StringVarP(&promptDifficulty, "difficulty", "d", prompt.DefaultDifficulty, "Difficulty level")
}

// --- extract command ---

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract the JSON value from model output (file or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		r := extract.Extract(string(data))
		if !r.OK() {
			if r.Err != nil {
				log.Printf("Extraction failed: %v", r.Err)
			}
			return fmt.Errorf("no JSON value extracted (%s)", r.Status)
		}

		out, err := json.MarshalIndent(r.Value, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded ideas",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.GetRecentIdeas(historyLimit)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No ideas recorded yet. Generate one with: buildboard idea")
			return nil
		}

		for _, r := range records {
			created := ""
			if r.CreatedAt != nil {
				created = *r.CreatedAt
			}
			if r.Status == database.StatusInvalid {
				fmt.Printf("  [%s] %-8s (unparseable response)\n", created, r.Difficulty)
				continue
			}
			fmt.Printf("  [%s] %-8s %s\n", created, r.Difficulty, r.Title)
			if len(r.Tags) > 0 {
				fmt.Printf("        %s\n", strings.Join(r.Tags, ", "))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of ideas to show")
}

func warnIfUnconfigured(p llm.Provider) {
	if !p.IsConfigured() {
		log.Printf("Warning: provider %q is not configured (is %s set?)", cfg.Generation.Provider, cfg.Generation.APIKeyEnv)
	}
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "buildboard.db")
	return database.Open(dbPath)
}
