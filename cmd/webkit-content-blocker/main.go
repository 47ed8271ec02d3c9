package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bnema/webkit-content-blocker/internal/config"
	"github.com/bnema/webkit-content-blocker/internal/logging"
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
	"github.com/bnema/webkit-content-blocker/internal/source"
)

var (
	cfgFile  string
	logLevel string

	manager *config.Manager
	cfg     *models.Config
	logger  zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "webkit-content-blocker",
	Short: "Evaluate WebKit content blocker rules against requests",
	Long: `A content blocker engine for WebKit-style rule lists: url-filter
patterns, resource and load type constraints, first matching rule wins.
Rules come from WebKit JSON, YAML or uBlock/ABP filter lists.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured rule sources and filter lists",
	RunE:  runList,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	RunE:  runInit,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(checkCmd, validateCmd, importCmd, serveCmd, listCmd, initCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	manager = config.NewManager(cfgFile)
	if err := manager.Load(); err != nil {
		return err
	}
	cfg = manager.Config()

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	logger = logging.NewFromSettings(level, cfg.Log.Format)
	manager.SetLogger(logger.With().Str("component", "config").Logger())

	if file := manager.ConfigFile(); file != "" {
		logger.Debug().Str("file", file).Msg("config loaded")
	}
	return nil
}

// commandContext returns a context carrying the logger
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithContext(ctx, logger)
}

// compileOptions maps the rules config section to compile options
func compileOptions(c *models.Config) []rules.Option {
	return []rules.Option{
		rules.WithDedupe(c.Rules.Dedupe),
		rules.WithStrictDomains(c.Rules.StrictDomains),
		rules.WithLogger(logger),
	}
}

// loadRuleList reads refs (the configured sources when empty) and compiles them
func loadRuleList(ctx context.Context, refs []string) (*rules.RuleList, error) {
	if len(refs) == 0 {
		refs = cfg.Rules.Sources
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no rule sources: pass --rules or set rules.sources in the config")
	}

	records, err := source.NewLoader(cfg.HTTP).Load(ctx, refs)
	if err != nil {
		return nil, err
	}
	return rules.Compile(records, compileOptions(cfg)...), nil
}

func runList(cmd *cobra.Command, args []string) error {
	fmt.Println("Rule sources (evaluated in order):")
	if len(cfg.Rules.Sources) == 0 {
		fmt.Println("  (none)")
	}
	for i, ref := range cfg.Rules.Sources {
		fmt.Printf("  %d. %s [%s]\n", i+1, ref, source.FormatOf(ref))
	}

	fmt.Println("\nFilter lists:")
	for _, list := range cfg.Lists {
		status := "enabled"
		if !list.Enabled {
			status = "disabled"
		}
		fmt.Printf("  [%s] %s\n", status, list.Name)
		fmt.Printf("         %s\n", list.URL)
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultPath
	if cfgFile != "" {
		configPath = cfgFile
	}

	if err := config.WriteDefault(configPath); err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n", configPath)
	return nil
}
