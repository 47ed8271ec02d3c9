package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/bnema/webkit-content-blocker/internal/blocker"
	"github.com/bnema/webkit-content-blocker/internal/models"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Evaluate one request against the rule list",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var validateCmd = &cobra.Command{
	Use:   "validate [source...]",
	Short: "Compile rule sources and report rejected rules",
	RunE:  runValidate,
}

func init() {
	checkCmd.Flags().StringSlice("rules", nil, "rule sources (default: rules.sources)")
	checkCmd.Flags().StringP("type", "t", "", "resource type (document, image, style-sheet, script, font, raw, svg-document, media, popup)")
	checkCmd.Flags().String("content-type", "", "infer the resource type from a MIME type")
	checkCmd.Flags().String("top-url", "", "URL of the top-level page")
	checkCmd.Flags().Bool("third-party", false, "request is third-party (inferred from --top-url when unset)")
	checkCmd.Flags().Bool("main-frame", false, "request is for the main frame")

	validateCmd.Flags().Bool("strict", false, "exit with an error when any rule is rejected")
	validateCmd.Flags().Bool("warnings", false, "print warnings for rules that were kept")
}

func runCheck(cmd *cobra.Command, args []string) error {
	refs, _ := cmd.Flags().GetStringSlice("rules")
	typeName, _ := cmd.Flags().GetString("type")
	contentType, _ := cmd.Flags().GetString("content-type")
	topURL, _ := cmd.Flags().GetString("top-url")
	thirdParty, _ := cmd.Flags().GetBool("third-party")
	mainFrame, _ := cmd.Flags().GetBool("main-frame")

	req := models.MatchRequest{
		URL:          args[0],
		TopURL:       topURL,
		ResourceType: models.ResourceRaw,
	}

	switch {
	case typeName != "":
		rt, ok := models.ParseResourceType(typeName)
		if !ok {
			return fmt.Errorf("unknown resource type: %s", typeName)
		}
		req.ResourceType = rt
	case contentType != "":
		req.ResourceType = blocker.ResourceTypeFromContentType(contentType)
	}

	if cmd.Flags().Changed("third-party") {
		req.IsThirdParty = thirdParty
	} else if tp, known := blocker.IsThirdParty(topURL, req.URL); known {
		req.IsThirdParty = tp
	}

	if cmd.Flags().Changed("main-frame") {
		req.IsForMainFrame = mainFrame
	} else {
		req.FrameUnknown = true
	}

	list, err := loadRuleList(commandContext(cmd), refs)
	if err != nil {
		return err
	}

	d := blocker.CheckRequest(list, req)

	out := struct {
		models.Decision
		UpgradedURL string `json:"upgraded_url,omitempty"`
		Stylesheet  string `json:"stylesheet,omitempty"`
	}{Decision: d}

	switch d.Outcome {
	case models.OutcomeUpgradeToHTTPS:
		out.UpgradedURL = blocker.ApplyDecision(d, req.URL)
	case models.OutcomeInjectCSSHideSelector:
		out.Stylesheet = blocker.HideStylesheet(d.Selector)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runValidate(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	showWarnings, _ := cmd.Flags().GetBool("warnings")

	list, err := loadRuleList(commandContext(cmd), args)
	if err != nil {
		return err
	}
	diag := list.Diagnostics()

	fmt.Printf("Rules: %d total, %d compiled, %d rejected, %d warnings\n",
		diag.Total, diag.Compiled, diag.Skipped, len(diag.Warnings))

	if len(diag.SkipReasons) > 0 {
		fmt.Println("\nRejected by reason:")
		for reason, count := range diag.SkipReasons {
			fmt.Printf("  %s: %d\n", reason, count)
		}
	}

	for _, e := range diag.Errors {
		fmt.Printf("  - %v\n", e)
	}

	if showWarnings {
		for _, w := range diag.Warnings {
			fmt.Printf("  ! %s\n", w)
		}
	}

	if strict && !diag.OK() {
		return fmt.Errorf("%d rules rejected", diag.Skipped)
	}
	return nil
}
