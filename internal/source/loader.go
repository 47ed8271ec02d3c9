// Package source loads content blocker rule lists from files and URLs.
package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/webkit-content-blocker/internal/filterlist"
	"github.com/bnema/webkit-content-blocker/internal/logging"
	"github.com/bnema/webkit-content-blocker/internal/models"
	"github.com/bnema/webkit-content-blocker/internal/rules"
)

// Format is the encoding of a rule source
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatFilterList
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatFilterList:
		return "filter-list"
	}
	return "json"
}

// FormatOf picks the format from the extension of a path or URL path.
// Unknown extensions are read as JSON.
func FormatOf(ref string) Format {
	p := ref
	if IsURL(ref) {
		if u, err := url.Parse(ref); err == nil {
			p = u.Path
		}
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".txt":
		return FormatFilterList
	}
	return FormatJSON
}

// IsURL reports whether ref is an http(s) URL rather than a file path
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// maxConcurrentSources bounds parallel reads in Load
const maxConcurrentSources = 4

// Loader reads rule sources
type Loader struct {
	fetcher *Fetcher
}

// NewLoader creates a loader using cfg for remote sources
func NewLoader(cfg models.HTTPConfig) *Loader {
	return &Loader{fetcher: NewFetcher(cfg)}
}

// Load reads every ref concurrently and returns their records concatenated
// in ref order, so first-match-wins follows the configured order.
// Any failing ref fails the whole load.
func (l *Loader) Load(ctx context.Context, refs []string) ([]rules.Record, error) {
	results := make([][]rules.Record, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSources)

	for i, ref := range refs {
		g.Go(func() error {
			records, err := l.LoadOne(gctx, ref)
			if err != nil {
				return fmt.Errorf("rule source %s: %w", ref, err)
			}
			results[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	all := make([]rules.Record, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// LoadOne reads and decodes a single ref
func (l *Loader) LoadOne(ctx context.Context, ref string) ([]rules.Record, error) {
	log := logging.FromContext(ctx)

	data, err := l.Read(ctx, ref)
	if err != nil {
		return nil, err
	}

	format := FormatOf(ref)
	log.Debug().Str("source", ref).Str("format", format.String()).Int("bytes", len(data)).Msg("rule source read")

	switch format {
	case FormatYAML:
		return rules.DecodeYAML(data)
	case FormatFilterList:
		raw, report, err := filterlist.Import(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("source", ref).
			Int("rules", len(raw)).
			Int("skipped", report.Skipped()).
			Msg("filter list imported")

		records := make([]rules.Record, len(raw))
		for i, r := range raw {
			records[i] = r.Map()
		}
		return records, nil
	}
	return rules.DecodeJSON(data)
}

// Read returns the raw bytes of a file or URL
func (l *Loader) Read(ctx context.Context, ref string) ([]byte, error) {
	if IsURL(ref) {
		return l.fetcher.Fetch(ctx, ref)
	}
	return os.ReadFile(ref)
}
