package filterlist

import (
	"bufio"
	"io"
	"strings"

	"github.com/bnema/webkit-content-blocker/internal/models"
)

// Parser parses ABP/uBlock filter lists
type Parser struct {
	stats Stats
}

// Stats tracks parsing statistics
type Stats struct {
	Total       int
	Network     int
	Exception   int
	Cosmetic    int
	Comments    int
	Unsupported int
	SkipReasons map[string]int // Detailed breakdown of skipped filters
}

// Parse skip reasons
const (
	SkipScriptlet      = "scriptlet (##+js)"
	SkipHTMLFilter     = "html-filter (##^)"
	SkipProcedural     = "procedural (:has, :xpath, etc)"
	SkipUnsupportedOpt = "unsupported-option (redirect, csp, etc)"
	SkipHostsEntry     = "hosts-file entry"
)

// maxLineLength bounds a single filter line; longer lines fail the scan
const maxLineLength = 1 << 20

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{
		stats: Stats{
			SkipReasons: make(map[string]int),
		},
	}
}

// skip records a skipped filter with reason
func (p *Parser) skip(reason string) Filter {
	p.stats.SkipReasons[reason]++
	return Filter{Type: FilterTypeUnsupported}
}

// Stats returns parsing statistics
func (p *Parser) Stats() Stats {
	return p.stats
}

// Parse reads filter content and returns parsed filters
func (p *Parser) Parse(r io.Reader) ([]Filter, error) {
	var filters []Filter
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		filter := p.parseLine(line)
		p.stats.Total++

		switch filter.Type {
		case FilterTypeComment:
			p.stats.Comments++
			continue
		case FilterTypeUnsupported:
			p.stats.Unsupported++
			continue
		case FilterTypeNetwork:
			p.stats.Network++
		case FilterTypeException:
			p.stats.Exception++
		case FilterTypeCosmetic, FilterTypeCosmeticException:
			p.stats.Cosmetic++
		}

		filters = append(filters, filter)
	}

	return filters, scanner.Err()
}

// parseLine parses a single filter line
func (p *Parser) parseLine(line string) Filter {
	// Comments and the [Adblock Plus 2.0] header
	if strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
		return Filter{Type: FilterTypeComment, Raw: line}
	}
	// "# comment", but not "##selector"
	if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") && !strings.HasPrefix(line, "#@#") {
		return Filter{Type: FilterTypeComment, Raw: line}
	}

	// "0.0.0.0 host" lines from hosts-format lists
	if isHostsEntry(line) {
		return p.skip(SkipHostsEntry)
	}

	if strings.Contains(line, "##+js(") || strings.Contains(line, "#@#+js(") {
		return p.skip(SkipScriptlet)
	}

	if strings.Contains(line, "##^") || strings.Contains(line, "#@#^") {
		return p.skip(SkipHTMLFilter)
	}

	// Procedural operators only make sense in the cosmetic part
	if idx := strings.Index(line, "#"); idx != -1 && containsProcedural(line[idx:]) {
		return p.skip(SkipProcedural)
	}

	if idx := strings.Index(line, "#@#"); idx != -1 {
		return p.parseCosmetic(line, idx, true)
	}

	if idx := strings.Index(line, "##"); idx != -1 {
		return p.parseCosmetic(line, idx, false)
	}

	// Exception rules (allowlist)
	if strings.HasPrefix(line, "@@") {
		return p.parseNetwork(line[2:], true)
	}

	return p.parseNetwork(line, false)
}

func isHostsEntry(line string) bool {
	return strings.HasPrefix(line, "0.0.0.0 ") || strings.HasPrefix(line, "127.0.0.1 ")
}

// containsProcedural checks for procedural cosmetic filter syntax
func containsProcedural(s string) bool {
	procedural := []string{
		":has(", ":has-text(", ":xpath(", ":matches-css(",
		":matches-attr(", ":min-text-length(", ":not(",
		":upward(", ":remove(", ":style(", ":-abp-",
	}
	for _, p := range procedural {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// parseCosmetic parses an element hiding filter
func (p *Parser) parseCosmetic(line string, sepIdx int, isException bool) Filter {
	separator := "##"
	filterType := FilterTypeCosmetic
	if isException {
		separator = "#@#"
		filterType = FilterTypeCosmeticException
	}

	var domains []string
	if sepIdx > 0 {
		domains = parseDomainList(line[:sepIdx], ",")
	}

	return Filter{
		Type:     filterType,
		Raw:      line,
		Selector: strings.TrimSpace(line[sepIdx+len(separator):]),
		Domains:  domains,
	}
}

// parseNetwork parses a network filter
func (p *Parser) parseNetwork(line string, isException bool) Filter {
	filterType := FilterTypeNetwork
	if isException {
		filterType = FilterTypeException
	}

	pattern := line
	var options FilterOptions

	// Split pattern and options
	if idx := strings.LastIndex(line, "$"); idx != -1 {
		if idx == 0 || line[idx-1] != '\\' {
			optPart := line[idx+1:]
			// A "$/" is the end anchor of a regex filter, not an option list
			if !strings.HasPrefix(optPart, "/") {
				if hasUnsupportedOptions(optPart) {
					return p.skip(SkipUnsupportedOpt)
				}
				pattern = line[:idx]
				options = parseOptions(optPart)
			}
		}
	}

	return Filter{
		Type:    filterType,
		Raw:     line,
		Pattern: pattern,
		Options: options,
	}
}

// parseDomainList splits a domain list on sep, dropping empty entries
func parseDomainList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	domains := make([]string, 0, len(parts))
	for _, d := range parts {
		d = strings.TrimSpace(d)
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// parseOptions parses network filter options
func parseOptions(s string) FilterOptions {
	var opts FilterOptions

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		switch {
		case part == "third-party" || part == "3p":
			t := true
			opts.ThirdParty = &t
		case part == "~third-party" || part == "~3p" || part == "first-party" || part == "1p":
			f := false
			opts.ThirdParty = &f
		case part == "match-case":
			opts.MatchCase = true
		case part == "important":
			opts.Important = true
		case strings.HasPrefix(part, "domain="):
			opts.Domains, opts.ExcludeDomains = parseDomainOption(part[len("domain="):])
		case strings.HasPrefix(part, "~"):
			if rt := mapResourceType(part[1:]); rt != "" {
				opts.ExcludedResourceTypes = appendUnique(opts.ExcludedResourceTypes, rt)
			}
		default:
			if rt := mapResourceType(part); rt != "" {
				opts.ResourceTypes = appendUnique(opts.ResourceTypes, rt)
			}
		}
	}

	return opts
}

// parseDomainOption parses domain=example.com|~excluded.com
func parseDomainOption(s string) (include, exclude []string) {
	for _, d := range parseDomainList(s, "|") {
		if strings.HasPrefix(d, "~") {
			exclude = append(exclude, d[1:])
		} else {
			include = append(include, d)
		}
	}
	return
}

// mapResourceType maps ABP resource types to WebKit types
func mapResourceType(s string) string {
	var rt models.ResourceType
	switch s {
	case "script":
		rt = models.ResourceScript
	case "image", "img":
		rt = models.ResourceImage
	case "stylesheet", "css":
		rt = models.ResourceStyleSheet
	case "font":
		rt = models.ResourceFont
	case "media":
		rt = models.ResourceMedia
	case "xmlhttprequest", "xhr", "object", "object-subrequest",
		"ping", "beacon", "other", "websocket":
		rt = models.ResourceRaw
	case "subdocument", "frame", "document", "doc":
		rt = models.ResourceDocument
	case "popup":
		rt = models.ResourcePopup
	default:
		return ""
	}
	return rt.String()
}

// hasUnsupportedOptions checks for options that can't be converted
func hasUnsupportedOptions(s string) bool {
	unsupported := []string{
		"redirect=", "redirect-rule=",
		"csp=", "removeparam=", "replace=",
		"header=", "method=", "to=",
		"permissions=", "uritransform=",
		"generichide", "elemhide", "badfilter",
	}
	for _, u := range unsupported {
		if strings.Contains(s, u) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
