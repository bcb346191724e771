package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/emocontext/internal/profile"
	"github.com/hrygo/emocontext/store"
	"github.com/hrygo/emocontext/store/db"
)

// Version is the binary version, overridden at link time.
var Version = "0.1.0"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "emoctx",
		Short: `Assembles emotional context bundles for conversational agents`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := profile.LoadDotEnv(); err != nil {
				return err
			}
			if err := readConfigFile(viper.GetViper(), cfgFile); err != nil {
				return err
			}
			initLogger(viper.GetBool("verbose"))
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("data", ".")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the process, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", ".", "data directory for the sqlite database")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite or postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	for _, name := range []string{"mode", "data", "driver", "dsn", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("emoctx")
	viper.AutomaticEnv()

	rootCmd.AddCommand(newImportCmd(), newAssembleCmd(), newQualityCmd(), newStatsCmd())
}

func initLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadProfile builds the process profile from flags, EMOCTX_* variables, the
// dotenv files and the config file loaded by the root command.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: Version,
	}
	p.FromEnv()
	applyConfig(viper.GetViper(), p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func openStore(cmd *cobra.Command, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	s := store.New(driver, p)
	if err := s.Migrate(cmd.Context()); err != nil {
		_ = s.Close()
		return nil, err
	}
	slog.Debug("store ready", slog.String("driver", p.Driver), slog.String("mode", p.Mode))
	return s, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
