package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"akaidoo/internal/logging"
	"akaidoo/internal/profile"
	"akaidoo/internal/shrink"
)

var (
	shrinkLevel         string
	shrinkExpand        string
	shrinkPrune         string
	shrinkRelevant      string
	shrinkSkipImports   bool
	shrinkStripMetadata bool
	shrinkHeaderPath    string
	shrinkOutput        string
	shrinkProfileName   string
	shrinkProfileFile   string
)

var shrinkCmd = &cobra.Command{
	Use:   "shrink <file>",
	Short: "Shrink one Python file to its structural skeleton",
	Long: `Shrink a single Python file for manual inspection of the transformer.

Examples:
  akaidoo shrink models/sale_order.py
  akaidoo shrink -L hard models/sale_order.py
  akaidoo shrink -L extreme -E sale.order models/sale_order.py
  akaidoo shrink -P sale.order.action_confirm models/sale_order.py
  akaidoo shrink --profile migration models/sale_order.py`,
	Args: cobra.ExactArgs(1),
	RunE: runShrink,
}

func init() {
	shrinkCmd.Flags().StringVarP(&shrinkLevel, "level", "L", "soft", "Shrink level: none, soft, hard, extreme")
	shrinkCmd.Flags().StringVarP(&shrinkExpand, "expand", "E", "", "Comma-separated model names to expand in full")
	shrinkCmd.Flags().StringVarP(&shrinkPrune, "prune-methods", "P", "", "Comma-separated model.method pairs to prune")
	shrinkCmd.Flags().StringVar(&shrinkRelevant, "relevant", "", "Comma-separated comodels whose relational fields survive level extreme")
	shrinkCmd.Flags().BoolVar(&shrinkSkipImports, "skip-imports", false, "Drop import lines")
	shrinkCmd.Flags().BoolVar(&shrinkStripMetadata, "strip-metadata", false, "Strip help= kwargs and comments")
	shrinkCmd.Flags().StringVarP(&shrinkHeaderPath, "header-path", "H", "", "Logical file path for in-file boundary markers")
	shrinkCmd.Flags().StringVarP(&shrinkOutput, "output", "o", "", "Write output to file instead of stdout")
	shrinkCmd.Flags().StringVar(&shrinkProfileName, "profile", "", "Shrink profile name from the profile file")
	shrinkCmd.Flags().StringVar(&shrinkProfileFile, "profile-file", profile.DefaultFileName, "Path to the shrink profile file")
	rootCmd.AddCommand(shrinkCmd)
}

func runShrink(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)

	req, err := shrinkRequestFromFlags(cmd)
	if err != nil {
		return err
	}

	result, err := shrink.ShrinkFile(context.Background(), args[0], req)
	if err != nil {
		return err
	}

	logger.Debug("file shrunk",
		logging.F("path", args[0]),
		logging.F("level", req.Level.String()),
		logging.F("expandedModels", len(result.ExpandedModels)),
	)

	if shrinkOutput != "" {
		return os.WriteFile(shrinkOutput, []byte(result.Text), 0644)
	}
	fmt.Print(result.Text)
	return nil
}

// shrinkRequestFromFlags assembles the request, starting from the named
// profile when one is selected and layering explicit flags on top.
func shrinkRequestFromFlags(cmd *cobra.Command) (shrink.Request, error) {
	var req shrink.Request

	usedProfile := false
	if shrinkProfileName != "" {
		pf, err := profile.Load(shrinkProfileFile)
		if err != nil {
			return req, err
		}
		p, err := pf.Get(shrinkProfileName)
		if err != nil {
			return req, err
		}
		req, err = p.Request()
		if err != nil {
			return req, err
		}
		usedProfile = true
	}

	// An explicit --level beats the profile; the flag default does not.
	if !usedProfile || cmd.Flags().Changed("level") {
		level, err := shrink.ParseLevel(shrinkLevel)
		if err != nil {
			return req, err
		}
		req.Level = level
	}
	for name := range shrink.SetFromCSV(shrinkExpand) {
		if req.ExpandModels == nil {
			req.ExpandModels = map[string]bool{}
		}
		req.ExpandModels[name] = true
	}
	for name := range shrink.SetFromCSV(shrinkPrune) {
		if req.PruneMethods == nil {
			req.PruneMethods = map[string]bool{}
		}
		req.PruneMethods[name] = true
	}
	for name := range shrink.SetFromCSV(shrinkRelevant) {
		if req.RelevantModels == nil {
			req.RelevantModels = map[string]bool{}
		}
		req.RelevantModels[name] = true
	}
	if shrinkSkipImports {
		req.SkipImports = true
	}
	if shrinkStripMetadata {
		req.StripMetadata = true
	}
	if shrinkHeaderPath != "" {
		req.HeaderPath = shrinkHeaderPath
	}
	return req, nil
}
