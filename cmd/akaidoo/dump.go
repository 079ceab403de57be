package main

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"akaidoo/internal/addons"
	"akaidoo/internal/dump"
	"akaidoo/internal/harvest"
	"akaidoo/internal/logging"
	"akaidoo/internal/shrink"
)

var (
	dumpAddonsPath  string
	dumpOdooCfg     string
	dumpLevel       string
	dumpExpand      string
	dumpPrune       string
	dumpSkipImports bool
	dumpStripMeta   bool
	dumpOutput      string
	dumpCompression string
	dumpNoCache     bool
	dumpThreshold   int
)

var dumpCmd = &cobra.Command{
	Use:   "dump <addon>",
	Short: "Dump an addon and its dependencies as shrunken source",
	Long: `Dump the source of an addon and its transitive dependencies into one
combined stream. The target addon is emitted in full; dependency files are
shrunk at the chosen level, with the target's models kept relevant and
high-scoring models auto-expanded.

Examples:
  akaidoo dump sale_stock
  akaidoo dump -L extreme sale_stock -o context.txt
  akaidoo dump sale_stock -o context.txt.zst
  akaidoo dump --addons-path ./addons,./enterprise sale_stock`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpAddonsPath, "addons-path", "", "Comma-separated addons path directories")
	dumpCmd.Flags().StringVar(&dumpOdooCfg, "odoo-cfg", "", "Read addons_path from this odoo.cfg")
	dumpCmd.Flags().StringVarP(&dumpLevel, "level", "L", "", "Shrink level for dependency files (default from config)")
	dumpCmd.Flags().StringVarP(&dumpExpand, "expand", "E", "", "Extra model names to expand in full")
	dumpCmd.Flags().StringVarP(&dumpPrune, "prune-methods", "P", "", "Comma-separated model.method pairs to prune")
	dumpCmd.Flags().BoolVar(&dumpSkipImports, "skip-imports", false, "Drop import lines from shrunk files")
	dumpCmd.Flags().BoolVar(&dumpStripMeta, "strip-metadata", false, "Strip help= kwargs and comments")
	dumpCmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "Write dump to file instead of stdout")
	dumpCmd.Flags().StringVar(&dumpCompression, "compression", "", "Compression: none, gzip, zstd (default inferred from -o extension)")
	dumpCmd.Flags().BoolVar(&dumpNoCache, "no-cache", false, "Bypass the stats cache")
	dumpCmd.Flags().IntVar(&dumpThreshold, "threshold", 0, "Auto-expand threshold (0 uses the configured default)")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := newLogger(cfg)
	ctx := context.Background()
	target := args[0]

	levelName := dumpLevel
	if levelName == "" {
		levelName = cfg.Shrink.Level
	}
	level, err := shrink.ParseLevel(levelName)
	if err != nil {
		return err
	}
	threshold := dumpThreshold
	if threshold == 0 {
		threshold = cfg.Shrink.AutoExpandThreshold
	}

	addonsPath, err := resolveAddonsPath(cfg.AddonsPath)
	if err != nil {
		return err
	}
	set, err := addons.Discover(ctx, addonsPath)
	if err != nil {
		return err
	}
	logger.Info("addons discovered",
		logging.F("pathEntries", len(addonsPath)),
		logging.F("addons", len(set)),
	)

	resolution, err := set.Resolve([]string{target})
	if err != nil {
		return err
	}
	if len(resolution.Missing) > 0 {
		logger.Warn("missing dependencies",
			logging.F("addons", strings.Join(resolution.Missing, ", ")))
	}
	logger.Info("dependency closure resolved",
		logging.F("target", target),
		logging.F("addons", len(resolution.Ordered)),
	)

	// Harvest stats across the closure to pick auto-expanded models; the
	// target addon's own models are the relevant set.
	var cache *harvest.Cache
	if cfg.Cache.Enabled && !dumpNoCache {
		cache, err = harvest.OpenCache(cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("stats cache unavailable", logging.F("error", err.Error()))
		} else {
			defer cache.Close()
		}
	}

	var depFiles []string
	for _, name := range resolution.Ordered {
		if name == target {
			continue
		}
		depFiles = append(depFiles, set[name].PythonFiles()...)
	}
	harvester := harvest.New(logger, cache, 0)
	harvestResult, err := harvester.Run(ctx, depFiles)
	if err != nil {
		return err
	}

	targetModels, err := addonModels(ctx, set[target])
	if err != nil {
		return err
	}

	expandModels := shrink.Set(targetModels...)
	for _, name := range harvestResult.AutoExpand(threshold) {
		expandModels[name] = true
	}
	for name := range shrink.SetFromCSV(dumpExpand) {
		expandModels[name] = true
	}

	depRequest := shrink.Request{
		Level:          level,
		ExpandModels:   expandModels,
		RelevantModels: shrink.Set(targetModels...),
		PruneMethods:   shrink.SetFromCSV(dumpPrune),
		SkipImports:    dumpSkipImports || cfg.Shrink.SkipImports,
		StripMetadata:  dumpStripMeta || cfg.Shrink.StripMetadata,
	}
	targetRequest := depRequest
	targetRequest.Level = shrink.LevelNone

	var entries []dump.Entry
	for _, name := range resolution.Ordered {
		addon := set[name]
		req := depRequest
		if name == target {
			req = targetRequest
		}
		files := addon.PythonFiles()
		files = append(files, filepath.Join(addon.Dir, addons.ManifestFile))
		sort.Strings(files)
		for _, path := range files {
			entries = append(entries, dump.Entry{
				Path:       path,
				HeaderPath: headerPath(addon, path),
				Request:    req,
			})
		}
	}

	compression := dump.Compression(dumpCompression)
	if dumpCompression == "" {
		compression = dump.CompressionForPath(dumpOutput)
	}
	out, err := dump.OpenOutput(dumpOutput, compression)
	if err != nil {
		return err
	}

	expanded, err := dump.New(logger).Write(ctx, out, entries)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	logger.Info("dump written",
		logging.F("files", len(entries)),
		logging.F("expandedModels", len(expanded)),
		logging.F("output", outputName(dumpOutput)),
	)
	return nil
}

// resolveAddonsPath merges --addons-path, --odoo-cfg and the config file,
// in that precedence order.
func resolveAddonsPath(configured []string) ([]string, error) {
	if dumpAddonsPath != "" {
		var dirs []string
		for _, dir := range strings.Split(dumpAddonsPath, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				dirs = append(dirs, dir)
			}
		}
		return dirs, nil
	}
	if dumpOdooCfg != "" {
		return addons.PathFromOdooCfg(dumpOdooCfg)
	}
	if len(configured) > 0 {
		return configured, nil
	}
	return []string{"."}, nil
}

// addonModels lists the models an addon's own files declare.
func addonModels(ctx context.Context, addon *addons.Addon) ([]string, error) {
	harvester := harvest.New(logging.Discard(), nil, 0)
	result, err := harvester.Run(ctx, addon.PythonFiles())
	if err != nil {
		return nil, err
	}
	var names []string
	for name := range result.Stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func headerPath(addon *addons.Addon, path string) string {
	rel, err := filepath.Rel(filepath.Dir(addon.Dir), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
