// Package cmd hosts the notiva CLI commands.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/config"
	"github.com/notiva/notiva/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notiva",
	Short: "Backend de contenidos y búsqueda para el sitio de noticias",
	Long: `Notiva serves search, related articles, view counters and newsletter
subscriptions on top of a WordPress CMS.

Use the subcommands to perform specific operations.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config and $HOME/.config/notiva)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	observability.InitCLILogger("notiva", verbose)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/notiva")
		}
	}

	viper.SetEnvPrefix("NOTIVA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			observability.CLILogger.Debug("using config file", zap.String("path", viper.ConfigFileUsed()))
		}
	} else if verbose {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			observability.CLILogger.Debug("no config file found, using defaults and environment variables")
		} else {
			observability.CLILogger.Warn("error reading config file", zap.Error(err))
		}
	}

	setDefaults()
}

// setDefaults sets default configuration values.
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Store defaults
	viper.SetDefault("store.driver", "libsql")
	viper.SetDefault("store.path", config.DefaultStorePath())
	viper.SetDefault("store.url", "")
	viper.SetDefault("store.auth_token", "")

	// CMS defaults
	viper.SetDefault("wordpress.api_url", "")
	viper.SetDefault("wordpress.public_url", "")
	viper.SetDefault("wordpress.timeout", "8s")

	// Search defaults
	viper.SetDefault("search.cache_ttl", "5m")
	viper.SetDefault("search.cache_size", 100)
	viper.SetDefault("search.popularity_size", 50)
	viper.SetDefault("search.timeout", "4s")

	// Rate limit defaults; classes left out keep their built-in values
	viper.SetDefault("ratelimit.sweep_interval", "5m")
	viper.SetDefault("ratelimit.classes", map[string]any{})

	// Captcha defaults (empty secret disables verification)
	viper.SetDefault("captcha.secret", "")
	viper.SetDefault("captcha.verify_url", "")

	// Mail defaults
	viper.SetDefault("mail.api_url", "")
	viper.SetDefault("mail.api_key", "")
	viper.SetDefault("mail.from", "")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)

	// Debug defaults
	viper.SetDefault("debug.enabled", false)
	viper.SetDefault("debug.admin_token", "")
}
