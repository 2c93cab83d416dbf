package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sergeyhtml/sergey/internal/progress"
	"github.com/sergeyhtml/sergey/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the site into the output directory",
	Long: `Clears the output directory, compiles every HTML page under the root and
copies all other files. Pages that fail are reported and skipped; the
rest of the site is still written.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("strict", false, "exit with an error if any file fails")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := site.NewBuilder(cfg, progress.NewReporter())
	builder.Verbose = verbose

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	printResult(result)

	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(result.Errors) > 0 {
		return fmt.Errorf("%d files failed", len(result.Errors))
	}
	return nil
}
