package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to sergey! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	prompts := []struct {
		label string
		value *string
	}{
		{"Site root", &cfg.Root},
		{"Imports directory", &cfg.Imports},
		{"Markdown content directory", &cfg.Content},
		{"Output directory (wiped on every build)", &cfg.Output},
		{"Class for active links", &cfg.ActiveClass},
	}
	for _, p := range prompts {
		v, err := (&promptui.Prompt{Label: p.label, Default: *p.value}).Run()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.label, err)
		}
		*p.value = v
	}

	excludeStr, err := (&promptui.Prompt{
		Label:   "Extra names to exclude (comma-separated, leave blank for none)",
		Default: "",
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	cfg.Exclude = splitList(excludeStr)

	portStr, err := (&promptui.Prompt{
		Label:    "Dev server port",
		Default:  strconv.Itoa(cfg.Port),
		Validate: validatePort,
	}).Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	highlight := promptui.Select{
		Label: "Highlight code blocks in markdown content",
		Items: []string{"no", "yes"},
	}
	idx, _, err := highlight.Run()
	if err != nil {
		return nil, fmt.Errorf("highlight selection: %w", err)
	}
	cfg.Markdown.Highlight = idx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.ImportsDir()); os.IsNotExist(err) {
		fmt.Printf("\nNote: create %s before running sergey build.\n", cfg.ImportsDir())
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
