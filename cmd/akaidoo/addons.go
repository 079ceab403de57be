package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"akaidoo/internal/addons"
	"akaidoo/internal/logging"
)

var (
	addonsFormat    string
	addonsSeparator string
)

var addonsCmd = &cobra.Command{
	Use:   "addons <addon>",
	Short: "List an addon's dependency closure in topological order",
	Long: `Resolve and print the transitive dependency closure of an addon,
dependencies first, the addon itself last.

Examples:
  akaidoo addons sale_stock
  akaidoo addons --format json sale_stock
  akaidoo addons -s , sale_stock`,
	Args: cobra.ExactArgs(1),
	RunE: runAddons,
}

func init() {
	addonsCmd.Flags().StringVar(&addonsFormat, "format", "human", "Output format: human, json")
	addonsCmd.Flags().StringVarP(&addonsSeparator, "separator", "s", "\n", "Separator between addon names in human output")
	addonsCmd.Flags().StringVar(&dumpAddonsPath, "addons-path", "", "Comma-separated addons path directories")
	addonsCmd.Flags().StringVar(&dumpOdooCfg, "odoo-cfg", "", "Read addons_path from this odoo.cfg")
	rootCmd.AddCommand(addonsCmd)
}

// AddonsResponseCLI is the addons command output.
type AddonsResponseCLI struct {
	Target  string   `json:"target"`
	Ordered []string `json:"ordered"`
	Missing []string `json:"missing,omitempty"`
}

func runAddons(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)
	ctx := context.Background()
	target := args[0]

	addonsPath, err := resolveAddonsPath(cfg.AddonsPath)
	if err != nil {
		return err
	}
	set, err := addons.Discover(ctx, addonsPath)
	if err != nil {
		return err
	}
	resolution, err := set.Resolve([]string{target})
	if err != nil {
		return err
	}
	if len(resolution.Missing) > 0 {
		logger.Warn("missing dependencies",
			logging.F("addons", strings.Join(resolution.Missing, ", ")))
	}

	if addonsFormat == "json" {
		data, err := json.MarshalIndent(AddonsResponseCLI{
			Target:  target,
			Ordered: resolution.Ordered,
			Missing: resolution.Missing,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(strings.Join(resolution.Ordered, addonsSeparator))
	return nil
}
