package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mediafetch/internal/dirs"
	"mediafetch/internal/util/format"
)

// Config is the resolved runtime configuration.
type Config struct {
	DownloadDir   string
	YtDlpPath     string
	ExtraArgs     []string
	PublicBaseURL string // no trailing slash
	ServerPort    int

	InlineMaxBytes int64 // artifacts smaller than this are delivered inline

	CleanupInterval   time.Duration
	FileMaxAge        time.Duration
	SweepInitialDelay time.Duration
	JobTimeout        time.Duration // 0 means no limit

	ModesFile string
	LogLevel  string
	LogFormat string
}

// legacyEnv maps keys to the un-prefixed variables older deployments use.
var legacyEnv = map[string]string{
	"ytdlp_path":             "YTDLP_PATH",
	"ytdlp_extra_args":       "YTDLP_EXTRA_ARGS",
	"server_port":            "SERVER_PORT",
	"public_base_url":        "PUBLIC_BASE_URL",
	"cleanup_interval_hours": "CLEANUP_INTERVAL_HOURS",
	"file_max_age_days":      "FILE_MAX_AGE_DAYS",
}

// flagKeys binds root persistent flags to viper keys.
var flagKeys = map[string]string{
	"download_dir": "download-dir",
	"ytdlp_path":   "ytdlp-path",
	"modes_file":   "modes-file",
	"log_level":    "log-level",
	"log_format":   "log-format",
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("download_dir", "./downloads")
	v.SetDefault("ytdlp_path", "yt-dlp")
	v.SetDefault("ytdlp_extra_args", "")
	v.SetDefault("public_base_url", "")
	v.SetDefault("server_port", 3000)
	v.SetDefault("inline_max_mb", 50)
	v.SetDefault("cleanup_interval_hours", 24)
	v.SetDefault("file_max_age_days", 7)
	v.SetDefault("sweep_initial_delay", time.Minute)
	v.SetDefault("job_timeout", time.Duration(0))
	v.SetDefault("modes_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")
}

// Init wires v with .env, config paths, env, defaults, and the root
// command's persistent flags. Missing .env and config files are not errors.
func Init(v *viper.Viper, root *cobra.Command) error {
	return initViper(v, root, ".env")
}

func initViper(v *viper.Viper, root *cobra.Command, envFile string) error {
	_ = dirs.EnsureAll()

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if cfgDir, err := dirs.ConfigDir(); err == nil {
		v.AddConfigPath(cfgDir)
	}
	v.SetConfigName("config") // supports config.{yaml|yml|json|toml}

	v.SetEnvPrefix("MEDIAFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, "MEDIAFETCH_"+strings.ToUpper(key), legacy)
	}

	SetDefaults(v)

	if root != nil {
		for key, flag := range flagKeys {
			if f := root.PersistentFlags().Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves and validates the configuration held by v. All problems
// are reported together.
func Load(v *viper.Viper) (Config, error) {
	var errs []error
	cfg := Config{
		DownloadDir:       strings.TrimSpace(v.GetString("download_dir")),
		YtDlpPath:         strings.TrimSpace(v.GetString("ytdlp_path")),
		ServerPort:        v.GetInt("server_port"),
		SweepInitialDelay: v.GetDuration("sweep_initial_delay"),
		JobTimeout:        v.GetDuration("job_timeout"),
		ModesFile:         strings.TrimSpace(v.GetString("modes_file")),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
	}

	extra, err := ParseExtraArgs(v.GetString("ytdlp_extra_args"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ytdlp_extra_args: %w", err))
	}
	cfg.ExtraArgs = extra

	if cfg.DownloadDir == "" {
		errs = append(errs, errors.New("download_dir must not be empty"))
	}
	if cfg.YtDlpPath == "" {
		errs = append(errs, errors.New("ytdlp_path must not be empty"))
	}
	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("server_port %d out of range", cfg.ServerPort))
	}

	inlineMB := v.GetFloat64("inline_max_mb")
	if inlineMB < 0 {
		errs = append(errs, fmt.Errorf("inline_max_mb %v must not be negative", inlineMB))
	}
	cfg.InlineMaxBytes = int64(inlineMB * format.MiB)

	hours := v.GetFloat64("cleanup_interval_hours")
	if hours <= 0 {
		errs = append(errs, fmt.Errorf("cleanup_interval_hours %v must be positive", hours))
	}
	cfg.CleanupInterval = time.Duration(hours * float64(time.Hour))

	days := v.GetFloat64("file_max_age_days")
	if days <= 0 {
		errs = append(errs, fmt.Errorf("file_max_age_days %v must be positive", days))
	}
	cfg.FileMaxAge = time.Duration(days * 24 * float64(time.Hour))

	if cfg.SweepInitialDelay < 0 {
		errs = append(errs, errors.New("sweep_initial_delay must not be negative"))
	}
	if cfg.JobTimeout < 0 {
		errs = append(errs, errors.New("job_timeout must not be negative"))
	}

	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(v.GetString("public_base_url")), "/")
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", cfg.ServerPort)
	}

	if cfg.ModesFile == "" {
		if p, err := dirs.DefaultModesFile(); err == nil {
			cfg.ModesFile = p
		} else {
			errs = append(errs, fmt.Errorf("modes_file: %w", err))
		}
	}

	return cfg, errors.Join(errs...)
}
