package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docsmith"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage docsmith configuration.

Running bare 'docsmith config' is the same as 'docsmith config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
const configTemplate = `# docsmith configuration
# See: docsmith config show (for effective values and sources)

# State/data directory (default: ~/.config/docsmith)
# state_dir: {{ .StateDir }}

# Service connection
api:
  # Base URL of the docsmith service
  base_url: "{{ .BaseURL }}"

  # Timeout for ordinary requests (default: "30s")
  # request_timeout: "{{ .RequestTimeout }}"

  # Timeout for upload/generation requests (default: "30m")
  # upload_timeout: "{{ .UploadTimeout }}"

  # Timeout for the health probe (default: "5s")
  # probe_timeout: "{{ .ProbeTimeout }}"

# Upload limits
upload:
  # Require a login before uploading (default: true)
  require_auth: {{ .RequireAuth }}

  # Most files accepted per run (default: 100)
  # max_files: {{ .MaxFiles }}

  # Per-file size ceiling in megabytes (default: 10)
  # max_file_mb: {{ .MaxFileMB }}

  # Folder uploads above this count go one file at a time (default: 20)
  # chunk_threshold: {{ .ChunkThreshold }}

  # Files per chunk for large folder uploads (default: 5)
  # chunk_size: {{ .ChunkSize }}

# Local history cache
history:
  # SQLite database path (default: ~/.config/docsmith/history.db)
  # db_path: {{ .DBPath }}
`

type configTemplateData struct {
	StateDir       string
	BaseURL        string
	RequestTimeout string
	UploadTimeout  string
	ProbeTimeout   string
	RequireAuth    bool
	MaxFiles       int
	MaxFileMB      int
	ChunkThreshold int
	ChunkSize      int
	DBPath         string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		StateDir:       viper.GetString("state_dir"),
		BaseURL:        viper.GetString("api.base_url"),
		RequestTimeout: viper.GetString("api.request_timeout"),
		UploadTimeout:  viper.GetString("api.upload_timeout"),
		ProbeTimeout:   viper.GetString("api.probe_timeout"),
		RequireAuth:    viper.GetBool("upload.require_auth"),
		MaxFiles:       viper.GetInt("upload.max_files"),
		MaxFileMB:      viper.GetInt("upload.max_file_mb"),
		ChunkThreshold: viper.GetInt("upload.chunk_threshold"),
		ChunkSize:      viper.GetInt("upload.chunk_size"),
		DBPath:         viper.GetString("history.db_path"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes.
type configKeyInfo struct {
	Key    string
	EnvVar string
}

var configKeys = []configKeyInfo{
	{Key: "state_dir", EnvVar: "DOCSMITH_STATE_DIR"},
	{Key: "api.base_url", EnvVar: "DOCSMITH_API_BASE_URL"},
	{Key: "api.request_timeout", EnvVar: "DOCSMITH_API_REQUEST_TIMEOUT"},
	{Key: "api.upload_timeout", EnvVar: "DOCSMITH_API_UPLOAD_TIMEOUT"},
	{Key: "api.probe_timeout", EnvVar: "DOCSMITH_API_PROBE_TIMEOUT"},
	{Key: "upload.require_auth", EnvVar: "DOCSMITH_UPLOAD_REQUIRE_AUTH"},
	{Key: "upload.max_files", EnvVar: "DOCSMITH_UPLOAD_MAX_FILES"},
	{Key: "upload.max_file_mb", EnvVar: "DOCSMITH_UPLOAD_MAX_FILE_MB"},
	{Key: "upload.chunk_threshold", EnvVar: "DOCSMITH_UPLOAD_CHUNK_THRESHOLD"},
	{Key: "upload.chunk_size", EnvVar: "DOCSMITH_UPLOAD_CHUNK_SIZE"},
	{Key: "history.db_path", EnvVar: "DOCSMITH_HISTORY_DB_PATH"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if config file exists
	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	// Read config file values to determine file source
	fileValues := readConfigFileValues(cfgPath)

	for _, k := range configKeys {
		val := viper.Get(k.Key)
		source := detectSource(k.Key, k.EnvVar, fileValues)
		fmt.Fprintf(ui.Out, "  %-24s %v  %s\n", k.Key, val, source)
	}

	return nil
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'docsmith config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}
