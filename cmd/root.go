package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-mfcc/configs"
	"github.com/RyanBlaney/sonido-mfcc/logging"
)

// configKeyAnnotation ties a flag to the configuration key it overrides
const configKeyAnnotation = "config_key"

var (
	configFile   string
	verbose      bool
	logLevel     string
	outputFormat string

	// appConfig is loaded once flags are parsed
	appConfig *configs.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonido-mfcc",
	Short: "MFCC feature extraction for audio classification",
	Long: `Extract fixed-length Mel-Frequency Cepstral Coefficient vectors from
audio recordings and build labeled datasets for classifier training.

Presets:
- simple:   13 mean MFCCs (2048-sample frames, 512 hop, 26 mel filters)
- enhanced: 60 values, 20 normalized MFCCs plus delta and delta-delta
            (2048-sample frames, 512 hop, 40 mel filters)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/sonido-mfcc/sonido-mfcc.yaml)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (table, json, yaml)")

	annotateConfigKey(rootCmd.PersistentFlags(), "verbose", "verbose")
	annotateConfigKey(rootCmd.PersistentFlags(), "log-level", "log_level")
	annotateConfigKey(rootCmd.PersistentFlags(), "output", "output_format")
}

// annotateConfigKey marks a flag as the command-line override for key
func annotateConfigKey(flags *pflag.FlagSet, flagName, key string) {
	if err := flags.SetAnnotation(flagName, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "sonido-mfcc"))
		}
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("sonido-mfcc")
		viper.SetConfigType("yaml")
	}

	// Environment variable support
	viper.SetEnvPrefix("SONIDO_MFCC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configs.SetDefaults(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if configFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", configFile, err)
		os.Exit(1)
	}
}

// initializeConfig binds the executing command's flags, then loads,
// validates and applies the configuration
func initializeConfig(cmd *cobra.Command) error {
	if err := bindFlags(cmd, viper.GetViper()); err != nil {
		return err
	}

	cfg, err := configs.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := configs.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	appConfig = cfg

	// Logs go to stderr so stdout stays parseable
	logger := logging.NewWriterLogger(os.Stderr, os.Stderr)
	logger.SetLevel(cfg.Level())
	logging.SetGlobalLogger(logger)

	return nil
}

// bindFlags binds every annotated flag of cmd to its configuration key.
// Bound at run time so commands sharing a key do not steal each other's flag.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		keys, ok := f.Annotations[configKeyAnnotation]
		if !ok || len(keys) == 0 {
			return
		}
		if err := v.BindPFlag(keys[0], f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}
