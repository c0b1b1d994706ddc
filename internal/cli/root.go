package cli

import (
	"github.com/spf13/cobra"

	"github.com/lazypower/entropy/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "entropy",
	Short: "Content that decays unless someone pays to keep it alive",
	Long: "Entropy keeps a small collection of items alive through payments to a treasury address. " +
		"Every cycle ages each item by one tick, then reads recent payments to create new items or refresh old ones.",
	SilenceUsage: true,
}

// Persistent overrides applied on top of the environment config.
var (
	storeDriver string
	storePath   string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store-driver", "", "Store backend: json or sqlite (overrides ENTROPY_STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&storePath, "store-path", "", "Store location (overrides ENTROPY_STORE_PATH)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the environment config and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if storeDriver != "" {
		cfg.Store.Driver = storeDriver
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
