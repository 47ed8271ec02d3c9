package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/bnema/webkit-content-blocker/internal/filterlist"
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
	"github.com/bnema/webkit-content-blocker/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import [list-name...]",
	Short: "Convert filter lists to WebKit content blocker JSON",
	Long: `Downloads the enabled filter lists (or only the named ones), converts
them to content blocker rules and writes one JSON file per list plus a
deduplicated combined file.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("output", "o", "./output", "output directory")
	importCmd.Flags().Bool("dry-run", false, "parse and convert without writing files")
	importCmd.Flags().Bool("combined", true, "generate combined output file")
	importCmd.Flags().Int("max-rules", filterlist.MaxRulesPerFile, "maximum rules per output file")
	importCmd.Flags().Bool("verbose", false, "verbose output")
}

// ListResult contains conversion results for a single list
type ListResult struct {
	Name         string `json:"name"`
	URL          string `json:"source_url"`
	RulesCount   int    `json:"rules_count"`
	SkippedCount int    `json:"skipped_count"`
	Rejected     int    `json:"rejected_count"`
}

// Manifest contains metadata about the conversion
type Manifest struct {
	Version     string                `json:"version"`
	GeneratedAt string                `json:"generated_at"`
	Lists       map[string]ListResult `json:"lists"`
	Combined    CombinedInfo          `json:"combined"`
}

// CombinedInfo contains combined file info
type CombinedInfo struct {
	TotalRules int      `json:"total_rules"`
	Files      []string `json:"files"`
}

func selectLists(names []string) ([]models.FilterList, error) {
	if len(names) == 0 {
		lists := cfg.EnabledLists()
		if len(lists) == 0 {
			return nil, fmt.Errorf("no enabled filter lists found in config")
		}
		return lists, nil
	}

	var selected []models.FilterList
	for _, name := range names {
		found := false
		for _, l := range cfg.Lists {
			if l.Name == name {
				selected = append(selected, l)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown filter list: %s", name)
		}
	}
	return selected, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	generateCombined, _ := cmd.Flags().GetBool("combined")
	maxRules, _ := cmd.Flags().GetInt("max-rules")
	verbose, _ := cmd.Flags().GetBool("verbose")

	lists, err := selectLists(args)
	if err != nil {
		return err
	}

	fmt.Printf("Importing %d filter lists...\n", len(lists))
	if dryRun {
		fmt.Println("[DRY RUN] No files will be written")
	}

	ctx := commandContext(cmd)
	loader := source.NewLoader(cfg.HTTP)
	splitter := filterlist.NewSplitter(maxRules)

	var allRules []models.RawRule
	results := make(map[string]ListResult)
	totalSkips := make(map[string]int)

	for _, list := range lists {
		fmt.Printf("\n  Processing %s...\n", list.Name)

		data, err := loader.Read(ctx, list.URL)
		if err != nil {
			fmt.Printf("    ERROR: %v\n", err)
			continue
		}
		fmt.Printf("    Downloaded: %d bytes\n", len(data))

		converted, report, err := filterlist.Import(bytes.NewReader(data))
		if err != nil {
			fmt.Printf("    ERROR parsing: %v\n", err)
			continue
		}

		// Every converted rule must compile; count the ones the engine would reject
		compiled := rules.CompileRaw(converted, compileOptions(cfg)...)
		rejected := compiled.Diagnostics().Skipped

		fmt.Printf("    Converted: %d rules (skipped: %d, rejected: %d)\n",
			len(converted), report.Skipped(), rejected)

		skips := report.SkipReasons()
		for reason, count := range skips {
			totalSkips[reason] += count
		}

		if verbose {
			p := report.Parse
			fmt.Printf("    Parsed: %d total, %d network, %d cosmetic, %d exceptions\n",
				p.Total, p.Network, p.Cosmetic, p.Exception)
			for reason, count := range skips {
				fmt.Printf("      - %s: %d\n", reason, count)
			}
			for note, count := range report.Convert.Adjusted {
				fmt.Printf("      ~ %s: %d\n", note, count)
			}
		}

		results[list.Name] = ListResult{
			Name:         list.Name,
			URL:          list.URL,
			RulesCount:   len(converted),
			SkippedCount: report.Skipped(),
			Rejected:     rejected,
		}

		if !dryRun {
			for _, part := range splitter.Split(converted, list.Name) {
				if err := writeJSON(outputDir, part.Name+".json", part.Rules); err != nil {
					fmt.Printf("    ERROR writing %s: %v\n", part.Name, err)
				}
			}
		}

		allRules = append(allRules, converted...)
	}

	if len(totalSkips) > 0 {
		fmt.Printf("\nSkipped filters summary:\n")
		for reason, count := range totalSkips {
			fmt.Printf("  %s: %d\n", reason, count)
		}
	}

	if generateCombined && len(allRules) > 0 {
		fmt.Printf("\nGenerating combined output...\n")
		allRules = filterlist.Deduplicate(allRules)
		fmt.Printf("  Total rules: %d (after deduplication)\n", len(allRules))

		if !dryRun {
			var partNames []string
			for _, part := range splitter.Split(allRules, "combined") {
				if err := writeJSON(outputDir, part.Name+".json", part.Rules); err != nil {
					fmt.Printf("  ERROR writing %s: %v\n", part.Name, err)
				}
				partNames = append(partNames, part.Name+".json")
			}

			now := time.Now()
			manifest := Manifest{
				Version:     now.Format("2006.01.02"),
				GeneratedAt: now.UTC().Format(time.RFC3339),
				Lists:       results,
				Combined: CombinedInfo{
					TotalRules: len(allRules),
					Files:      partNames,
				},
			}
			if err := writeJSON(outputDir, "manifest.json", manifest); err != nil {
				fmt.Printf("  ERROR writing manifest: %v\n", err)
			}
		}
	}

	fmt.Println("\nDone!")
	return nil
}

func writeJSON(dir, filename string, data any) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
