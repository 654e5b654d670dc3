package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "randomizer",
	Short: "Assign non-repeating random EMA values to study participants",
	Long: `randomizer issues, for every participant and every EMA category, the next
random value from [1, bound] that the participant has not been served yet.
Issued values are stored back on the participant record in the participant
directory; once every value has been served the pool starts over.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")
	rootCmd.AddCommand(newRunCmd(), newServeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
