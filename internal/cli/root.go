package cli

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "keepsake",
	Short: "Keepsake - snapshot review tooling",
	Long: `Keepsake manages the snapshot files your tests assert against.

Tests write a pending .snap.new file next to the accepted .snap baseline
whenever their output drifts. Keepsake lists those pendings, shows what
changed and lets you accept or reject each proposal.

Keepsake never re-runs your tests; it only moves snapshot files.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Keepsake.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("keepsake v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.keepsake/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.keepsake")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetDefault("root", ".")
	viper.SetDefault("workers", runtime.NumCPU())

	// Read in environment variables that match KEEPSAKE_*
	viper.SetEnvPrefix("KEEPSAKE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// scanRoot resolves the directory a command operates on: the positional
// argument when given, otherwise the configured root.
func scanRoot(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return viper.GetString("root")
}
