package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sergeyhtml/sergey/internal/config"
	"github.com/sergeyhtml/sergey/internal/site"
)

// loadConfig loads the config, applies command-line overrides and validates
// the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `sergey init` to create a config file", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"root":         &cfg.Root,
		"imports":      &cfg.Imports,
		"content":      &cfg.Content,
		"output":       &cfg.Output,
		"active-class": &cfg.ActiveClass,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Changed("exclude") {
		v, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.Exclude = append(cfg.Exclude, v...)
	}
	if f := flags.Lookup("port"); f != nil && f.Changed {
		v, err := flags.GetInt("port")
		if err != nil {
			return err
		}
		cfg.Port = v
	}
	return nil
}

// printResult reports a finished build on stderr.
func printResult(result *site.Result) {
	fmt.Fprintf(os.Stderr, "Compiled in %dms (%d pages, %d other files)\n",
		result.Elapsed.Milliseconds(), result.Pages, result.Assets)
	if n := len(result.Errors); n > 0 {
		fmt.Fprintf(os.Stderr, "%d files failed, see the log above\n", n)
	}
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
