// Package discovery locates test units from manifest files under a set of
// root directories and filters them by category, tags and name pattern.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/conductor-ci/conductor/types"
)

// ManifestSuffix is the filename suffix identifying test manifests.
const ManifestSuffix = ".tests.yaml"

// manifest is the on-disk shape of a test manifest file.
type manifest struct {
	Units []types.DiscoveredTestUnit `yaml:"units"`
}

// Filters narrows the discovered unit set. Zero values match everything.
type Filters struct {
	Category    string
	Tags        []string
	NamePattern string
}

// Result is the discovery contract output: the matched units plus any
// non-fatal scan errors. Units is empty only when no root produced a unit.
type Result struct {
	Units  []types.DiscoveredTestUnit
	Errors []string
}

// Discoverer scans root directories for test manifests.
type Discoverer struct {
	log zerolog.Logger
}

// New creates a discoverer.
func New(log zerolog.Logger) *Discoverer {
	return &Discoverer{log: log}
}

// Discover scans the roots and applies the filters. An invalid name pattern
// is a configuration error and aborts before any scanning.
func (d *Discoverer) Discover(roots []string, filters Filters) (Result, error) {
	pattern, err := CompilePattern(filters.NamePattern)
	if err != nil {
		return Result{}, err
	}

	result := d.Scan(roots)
	result.Units = Filter(result.Units, filters.Category, filters.Tags, pattern)
	return result, nil
}

// Scan walks every root and collects units from manifest files. A missing or
// unreadable root is recorded once in Errors and scanning continues with the
// remaining roots. The returned units are sorted lexicographically by path
// then class name so repeated runs produce identical ordering.
func (d *Discoverer) Scan(roots []string) Result {
	var result Result

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			d.log.Warn().Str("root", root).Err(err).Msg("Skipping invalid discovery root")
			result.Errors = append(result.Errors, fmt.Sprintf("root %s: %v", root, err))
			continue
		}
		if !info.IsDir() {
			result.Errors = append(result.Errors, fmt.Sprintf("root %s: not a directory", root))
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("scanning %s: %v", path, err))
				return fs.SkipDir
			}
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ManifestSuffix) {
				return nil
			}

			units, err := d.loadManifest(path)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("manifest %s: %v", path, err))
				return nil
			}
			result.Units = append(result.Units, units...)
			return nil
		})
		if walkErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("root %s: %v", root, walkErr))
		}
	}

	sort.SliceStable(result.Units, func(i, j int) bool {
		if result.Units[i].Path != result.Units[j].Path {
			return result.Units[i].Path < result.Units[j].Path
		}
		return result.Units[i].ClassName < result.Units[j].ClassName
	})

	d.log.Debug().
		Int("units", len(result.Units)).
		Int("errors", len(result.Errors)).
		Msg("Discovery scan complete")
	return result
}

// loadManifest parses one manifest file into its declared units.
func (d *Discoverer) loadManifest(path string) ([]types.DiscoveredTestUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	units := make([]types.DiscoveredTestUnit, 0, len(m.Units))
	for i, unit := range m.Units {
		if unit.ClassName == "" {
			return nil, fmt.Errorf("unit %d: class is required", i)
		}
		if unit.Category == "" {
			unit.Category = types.DefaultCategory
		}
		unit.Path = path
		units = append(units, unit)
	}
	return units, nil
}

// CompilePattern compiles an optional class-name regexp. Empty patterns
// match everything.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid name pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Filter returns the units matching the category, every requested tag and
// the compiled name pattern, preserving input order.
func Filter(units []types.DiscoveredTestUnit, category string, tags []string, pattern *regexp.Regexp) []types.DiscoveredTestUnit {
	var matched []types.DiscoveredTestUnit
	for _, unit := range units {
		if category != "" && unit.Category != category {
			continue
		}
		if !hasAllTags(unit, tags) {
			continue
		}
		if pattern != nil && !pattern.MatchString(unit.ClassName) {
			continue
		}
		matched = append(matched, unit)
	}
	return matched
}

func hasAllTags(unit types.DiscoveredTestUnit, tags []string) bool {
	for _, tag := range tags {
		if !unit.HasTag(tag) {
			return false
		}
	}
	return true
}
