package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"akaidoo/internal/harvest"
	"akaidoo/internal/logging"
)

var (
	scanFormat    string
	scanThreshold int
	scanNoCache   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>...",
	Short: "Score models declared in Python files",
	Long: `Scan model files and report per-model relevance stats.

The score is a structural heuristic (fields + 3*methods + 2*(lines/10));
models at or above the threshold are marked as auto-expansion candidates.

Examples:
  akaidoo scan models/*.py
  akaidoo scan --format yaml models/sale_order.py
  akaidoo scan --threshold 50 addons/sale/models/*.py`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "human", "Output format: human, json, yaml")
	scanCmd.Flags().IntVar(&scanThreshold, "threshold", 0, "Auto-expand threshold (0 uses the configured default)")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "Bypass the stats cache")
	rootCmd.AddCommand(scanCmd)
}

// ModelScoreCLI is one row of scan output.
type ModelScoreCLI struct {
	Model       string `json:"model" yaml:"model"`
	Fields      int    `json:"fields" yaml:"fields"`
	Methods     int    `json:"methods" yaml:"methods"`
	Lines       int    `json:"lines" yaml:"lines"`
	Score       int    `json:"score" yaml:"score"`
	AutoExpand  bool   `json:"autoExpand" yaml:"autoExpand"`
}

// ScanResponseCLI is the scan command output.
type ScanResponseCLI struct {
	Threshold int             `json:"threshold" yaml:"threshold"`
	Models    []ModelScoreCLI `json:"models" yaml:"models"`
	Failed    []string        `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)

	threshold := scanThreshold
	if threshold == 0 {
		threshold = cfg.Shrink.AutoExpandThreshold
	}

	var cache *harvest.Cache
	if cfg.Cache.Enabled && !scanNoCache {
		var err error
		cache, err = harvest.OpenCache(cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("stats cache unavailable, scanning without it",
				logging.F("error", err.Error()))
		} else {
			defer cache.Close()
		}
	}

	harvester := harvest.New(logger, cache, 0)
	result, err := harvester.Run(context.Background(), args)
	if err != nil {
		return err
	}

	response := ScanResponseCLI{Threshold: threshold, Failed: result.Failed}
	for name, stats := range result.Stats {
		response.Models = append(response.Models, ModelScoreCLI{
			Model:      name,
			Fields:     stats.FieldCount,
			Methods:    stats.MethodCount,
			Lines:      stats.LineCount,
			Score:      stats.Score(),
			AutoExpand: stats.Score() >= threshold,
		})
	}
	sort.Slice(response.Models, func(i, j int) bool {
		if response.Models[i].Score != response.Models[j].Score {
			return response.Models[i].Score > response.Models[j].Score
		}
		return response.Models[i].Model < response.Models[j].Model
	})

	switch scanFormat {
	case "json":
		data, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(response)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		fmt.Printf("%-40s %7s %7s %7s %6s  %s\n", "MODEL", "FIELDS", "METHODS", "LINES", "SCORE", "EXPAND")
		for _, m := range response.Models {
			mark := ""
			if m.AutoExpand {
				mark = "*"
			}
			fmt.Printf("%-40s %7d %7d %7d %6d  %s\n", m.Model, m.Fields, m.Methods, m.Lines, m.Score, mark)
		}
		for _, f := range response.Failed {
			fmt.Printf("failed to scan: %s\n", f)
		}
	}
	return nil
}
