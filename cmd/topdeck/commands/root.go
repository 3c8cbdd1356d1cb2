package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MattVerwey/TopDeck-sub004/pkg/version"
)

// appConfig collects the persistent flag values shared by every
// subcommand.
type appConfig struct {
	SnapshotPath  string
	Region        string
	Profile       string
	Kubeconfig    string
	KubeContext   string
	TFStatePath   string
	ArchiveBucket string
	MockMode      bool
	JSONLogs      bool
	OTLPEndpoint  string
	Verbose       bool
}

var (
	cfgFile string
	config  appConfig
)

var rootCmd = &cobra.Command{
	Use:   "topdeck",
	Short: "Cloud topology risk analysis",
	Long: `TopDeck - Dependency Topology and Blast Radius Analysis

Discover. Trace. Contain.`,
	Version: version.Current,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.topdeck.yaml)")
	rootCmd.PersistentFlags().StringVarP(&config.SnapshotPath, "snapshot", "s", "", "Load topology from a snapshot file instead of live discovery")
	rootCmd.PersistentFlags().StringVar(&config.Region, "region", "", "AWS region to discover")
	rootCmd.PersistentFlags().StringVar(&config.Profile, "profile", "", "AWS shared config profile")
	rootCmd.PersistentFlags().StringVar(&config.Kubeconfig, "kubeconfig", "", "Kubeconfig path for cluster discovery")
	rootCmd.PersistentFlags().StringVar(&config.KubeContext, "kube-context", "", "Kubeconfig context override")
	rootCmd.PersistentFlags().StringVar(&config.TFStatePath, "tfstate", "", "Terraform state file or module directory")
	rootCmd.PersistentFlags().StringVar(&config.ArchiveBucket, "archive-bucket", "", "S3 bucket for the report archive (local filesystem when unset)")
	rootCmd.PersistentFlags().BoolVar(&config.JSONLogs, "json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&config.OTLPEndpoint, "otlp-endpoint", "", "OTLP trace endpoint")
	rootCmd.PersistentFlags().BoolVarP(&config.Verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVar(&config.MockMode, "mock", false, "Seed a simulated topology")
	rootCmd.PersistentFlags().MarkHidden("mock")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(blastCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".topdeck.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("TOPDECK")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.JSONLogs {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
