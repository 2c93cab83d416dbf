package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sergeyhtml/sergey/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sergey",
	Short: "A tiny static site template compiler",
	Long: `Sergey compiles HTML pages by expanding <sergey-import> tags with
fragments from an imports directory. Imports take slots and templates,
may carry scoped styles, and can pull in markdown content. Navigation
built with <sergey-link> is marked active for the page being written.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Overrides for single config keys; they win over the file and SERGEY_* variables.
	rootCmd.PersistentFlags().String("root", "", "site root directory")
	rootCmd.PersistentFlags().String("imports", "", "imports directory, relative to the root")
	rootCmd.PersistentFlags().String("content", "", "markdown content directory, relative to the root")
	rootCmd.PersistentFlags().String("output", "", "output directory, relative to the root")
	rootCmd.PersistentFlags().String("active-class", "", "class added to active links")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "extra names or globs to leave out of the build")
}
