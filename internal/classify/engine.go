package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/crate/internal/catalog"
)

// Result is a flagged artist with the labels of every rule it matched.
type Result struct {
	Artist  catalog.Artist `json:"artist"`
	Reasons []string       `json:"reasons"`
}

// Engine evaluates an ordered rule table against names, with a
// case-insensitive whitelist that clears all flags on an exact match.
type Engine struct {
	rules     []Rule
	whitelist map[string]bool
}

// NewEngine creates an engine with the default rules, the default whitelist
// and any extra whitelisted names.
func NewEngine(extraWhitelist ...string) *Engine {
	return NewEngineWithRules(DefaultRules, append(append([]string{}, DefaultWhitelist...), extraWhitelist...))
}

// NewEngineWithRules creates an engine from an explicit rule table and whitelist.
func NewEngineWithRules(rules []Rule, whitelist []string) *Engine {
	wl := make(map[string]bool, len(whitelist))
	for _, name := range whitelist {
		if k := whitelistKey(name); k != "" {
			wl[k] = true
		}
	}
	return &Engine{rules: rules, whitelist: wl}
}

// Classify returns the distinct labels of every rule the name matches, in
// rule order. A whitelisted name always yields no labels.
func (e *Engine) Classify(name string) []string {
	trimmed := strings.TrimSpace(name)
	var reasons []string
	seen := make(map[string]bool, len(e.rules))
	for _, r := range e.rules {
		if seen[r.Label] || !r.Match(trimmed) {
			continue
		}
		seen[r.Label] = true
		reasons = append(reasons, r.Label)
	}
	if len(reasons) > 0 && e.whitelist[whitelistKey(trimmed)] {
		return nil
	}
	return reasons
}

// Whitelisted reports whether name is on the whitelist.
func (e *Engine) Whitelisted(name string) bool {
	return e.whitelist[whitelistKey(name)]
}

// Scan classifies every artist and returns only the flagged ones, in input order.
func (e *Engine) Scan(artists []catalog.Artist) []Result {
	var results []Result
	for _, a := range artists {
		if reasons := e.Classify(a.Name); len(reasons) > 0 {
			results = append(results, Result{Artist: a, Reasons: reasons})
		}
	}
	return results
}

var defaultEngine = NewEngine()

// Classify evaluates name against the default rules and whitelist.
func Classify(name string) []string {
	return defaultEngine.Classify(name)
}

// whitelistFile is the on-disk layout of an extra whitelist.
type whitelistFile struct {
	Artists []string `yaml:"artists"`
}

// LoadWhitelist reads extra whitelisted names from a YAML file of the form
// "artists: [..]". A missing file yields no names.
func LoadWhitelist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from trusted config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	var f whitelistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing whitelist: %w", err)
	}
	return f.Artists, nil
}
