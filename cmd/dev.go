package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sergeyhtml/sergey/internal/config"
	"github.com/sergeyhtml/sergey/internal/progress"
	"github.com/sergeyhtml/sergey/internal/server"
	"github.com/sergeyhtml/sergey/internal/site"
	"github.com/sergeyhtml/sergey/internal/watch"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Build, watch for changes and serve the site locally",
	Long: `Builds the site, then rebuilds it whenever a file under the root changes
and serves the output directory. Open pages reload after each rebuild
unless live reload is turned off.`,
	RunE: runDev,
}

func init() {
	devCmd.Flags().Int("port", 0, "port for the dev server (defaults to the config port)")
	devCmd.Flags().Bool("no-reload", false, "disable live reload")
	devCmd.Flags().Bool("open", false, "open the site in a browser")
	rootCmd.AddCommand(devCmd)
}

func runDev(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.LiveReload = false
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

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Dir:        cfg.OutputDir(),
		LiveReload: cfg.LiveReload,
	})

	w, err := watch.New(cfg.Root, watchIgnore(cfg), watch.DefaultDebounce)
	if err != nil {
		return err
	}
	rebuilder := site.NewBuilder(cfg, progress.Nop{})
	rebuilder.Verbose = verbose
	go func() {
		err := w.Run(ctx, func() {
			result, err := rebuilder.Build(ctx)
			if err != nil {
				log.Printf("dev: rebuild: %v", err)
				return
			}
			printResult(result)
			srv.Notify()
		})
		if err != nil {
			log.Printf("dev: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if open, _ := cmd.Flags().GetBool("open"); open {
		openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
	}

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// watchIgnore skips the output directory, which every build rewrites, and
// version control and dependency directories. The imports and content
// directories stay watched.
func watchIgnore(cfg *config.Config) watch.IgnoreFunc {
	output := filepath.ToSlash(filepath.Clean(cfg.Output))
	return func(rel string) bool {
		if rel == output || strings.HasPrefix(rel, output+"/") {
			return true
		}
		first, _, _ := strings.Cut(rel, "/")
		return first == ".git" || first == "node_modules"
	}
}
