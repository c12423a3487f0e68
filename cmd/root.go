package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/docsmith-ai/docsmith/internal/api"
	"github.com/docsmith-ai/docsmith/internal/logging"
	"github.com/docsmith-ai/docsmith/internal/output"
	"github.com/docsmith-ai/docsmith/internal/session"
	"github.com/docsmith-ai/docsmith/internal/store"
	"github.com/docsmith-ai/docsmith/internal/uploader"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui           *output.UI
	historyStore store.Store
	sessionStore *session.Store
	apiClient    *api.Client

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "AI documentation generator - upload code, get markdown back",
	Long: `docsmith turns source code into documentation.
It uploads files, folders, or project archives to the docsmith service,
tracks generation runs in a local history, and renders the results.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/docsmith/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "docsmith")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DOCSMITH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "docsmith")

	viper.SetDefault("state_dir", defaultConfigDir)
	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.request_timeout", "30s")
	viper.SetDefault("api.upload_timeout", "30m")
	viper.SetDefault("api.probe_timeout", "5s")
	viper.SetDefault("upload.require_auth", true)
	viper.SetDefault("upload.max_files", 100)
	viper.SetDefault("upload.max_file_mb", 10)
	viper.SetDefault("upload.chunk_threshold", 20)
	viper.SetDefault("upload.chunk_size", 5)
	viper.SetDefault("history.db_path", filepath.Join(defaultConfigDir, "history.db"))

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	// Log sink lives for the whole process; closed implicitly on exit.
	logging.Setup(viper.GetString("state_dir"), verbose)

	// Session, API client, and history store are initialized lazily so
	// config/version commands run without touching disk or network.
}

// getSession returns the shared credential store, loading it on first call.
func getSession() (*session.Store, error) {
	if sessionStore != nil {
		return sessionStore, nil
	}

	s, err := session.NewStore(viper.GetString("state_dir"))
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sessionStore = s
	return sessionStore, nil
}

// getClient returns the shared API client, building it on first call.
func getClient() (*api.Client, error) {
	if apiClient != nil {
		return apiClient, nil
	}

	sess, err := getSession()
	if err != nil {
		return nil, err
	}

	apiClient = api.NewClient(api.Config{
		BaseURL:        viper.GetString("api.base_url"),
		RequestTimeout: viper.GetDuration("api.request_timeout"),
		UploadTimeout:  viper.GetDuration("api.upload_timeout"),
		ProbeTimeout:   viper.GetDuration("api.probe_timeout"),
		UserAgent:      "docsmith/" + buildVersion,
	}, sess)
	return apiClient, nil
}

// getHistoryStore returns the shared history cache, initializing it on
// first call.
func getHistoryStore() (store.Store, error) {
	if historyStore != nil {
		return historyStore, nil
	}

	dbPath := viper.GetString("history.db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}

	historyStore = s
	return historyStore, nil
}

// newUploader builds the upload orchestrator from effective config.
func newUploader() (*uploader.Uploader, error) {
	c, err := getClient()
	if err != nil {
		return nil, err
	}

	cfg := uploader.Config{
		RequireAuth:    viper.GetBool("upload.require_auth"),
		AllowFolder:    true,
		AllowArchive:   true,
		MaxFiles:       viper.GetInt("upload.max_files"),
		MaxFileBytes:   int64(viper.GetInt("upload.max_file_mb")) << 20,
		ChunkThreshold: viper.GetInt("upload.chunk_threshold"),
		ChunkSize:      viper.GetInt("upload.chunk_size"),
	}
	return uploader.New(c, cfg), nil
}
