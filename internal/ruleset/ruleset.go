// Package ruleset holds the ordered catalog of risk signal rules. A catalog
// is compiled once at load time into an immutable set of matchers; malformed
// rule data is rejected there, never at request time.
package ruleset

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/risk-signal-engine/internal/domain"
	"github.com/risk-signal-engine/internal/normalize"
)

// regexPrefix marks a pattern that is authored as a regular expression
// rather than a literal phrase. Regex patterns must be written against the
// normalized (lower-case, diacritic-free) form of the text.
const regexPrefix = "re:"

type compiledPattern struct {
	id string
	re *regexp.Regexp
}

// CompiledRule is one catalog entry with its precompiled matchers. Patterns
// are normalized with the same transform applied to incoming text, so
// matching stays diacritic- and case-insensitive without per-call rework.
type CompiledRule struct {
	Kind       domain.SignalKind
	Severity   domain.Severity
	Confidence float64
	patterns   []compiledPattern
}

// FirstMatch tests the rule's patterns in authored order against normalized
// text and returns the identifier of the first pattern that matches. The
// identifier is an opaque reference into the catalog, safe to persist.
func (cr *CompiledRule) FirstMatch(normText string) (string, bool) {
	for _, p := range cr.patterns {
		if p.re.MatchString(normText) {
			return p.id, true
		}
	}
	return "", false
}

// Ruleset is an immutable, ordered, compiled catalog. Order is the priority
// order: authors place the most clinically urgent signal kinds first and the
// detector returns on the first match.
type Ruleset struct {
	version string
	rules   []CompiledRule
}

// Compile validates and compiles an authored catalog. It enforces that a
// signal kind appears at exactly one severity, that confidence weights are
// within [0,1] and that every pattern compiles. Any violation is a
// configuration error and the whole catalog is rejected.
func Compile(rules []domain.Rule, version string) (*Ruleset, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("ruleset %q: no rules", version)
	}

	kindSeverity := make(map[domain.SignalKind]domain.Severity, len(rules))
	compiled := make([]CompiledRule, 0, len(rules))

	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("ruleset %q: rule %d: %w", version, i, err)
		}
		if prev, seen := kindSeverity[rule.Kind]; seen && prev != rule.Severity {
			return nil, fmt.Errorf("ruleset %q: signal kind %s bound to both %s and %s",
				version, rule.Kind, prev, rule.Severity)
		}
		kindSeverity[rule.Kind] = rule.Severity

		cr := CompiledRule{
			Kind:       rule.Kind,
			Severity:   rule.Severity,
			Confidence: rule.Confidence,
			patterns:   make([]compiledPattern, 0, len(rule.Patterns)),
		}
		for j, pattern := range rule.Patterns {
			re, err := compilePattern(pattern)
			if err != nil {
				return nil, fmt.Errorf("ruleset %q: rule %s pattern %d: %w", version, rule.Kind, j, err)
			}
			cr.patterns = append(cr.patterns, compiledPattern{
				id: fmt.Sprintf("%s/%d", rule.Kind, j),
				re: re,
			})
		}
		compiled = append(compiled, cr)
	}

	return &Ruleset{version: version, rules: compiled}, nil
}

// compilePattern builds the matcher for a single authored pattern. Literal
// phrases are normalized and quoted; "re:" patterns are compiled verbatim.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if expr, ok := strings.CutPrefix(pattern, regexPrefix); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compiling regex pattern: %w", err)
		}
		return re, nil
	}

	phrase := normalize.Text(pattern)
	if strings.TrimSpace(phrase) == "" {
		return nil, fmt.Errorf("empty pattern after normalization")
	}
	return regexp.Compile(regexp.QuoteMeta(phrase))
}

// Version returns the catalog version recorded in event metadata.
func (rs *Ruleset) Version() string {
	return rs.version
}

// Len returns the number of rules in priority order.
func (rs *Ruleset) Len() int {
	return len(rs.rules)
}

// Rules returns the compiled rules in priority order.
func (rs *Ruleset) Rules() []CompiledRule {
	return rs.rules
}

// Provider hands out the current catalog and supports an explicit reload
// with atomic swap semantics: the catalog is loaded once at boot, never
// mutated in place, and replaced wholesale or not at all.
type Provider struct {
	current atomic.Pointer[Ruleset]
}

// NewProvider creates a provider serving the given catalog.
func NewProvider(rs *Ruleset) *Provider {
	p := &Provider{}
	p.current.Store(rs)
	return p
}

// Current returns the catalog in effect for this request.
func (p *Provider) Current() *Ruleset {
	return p.current.Load()
}

// Swap atomically replaces the catalog. In-flight requests keep the catalog
// they already obtained.
func (p *Provider) Swap(rs *Ruleset) {
	p.current.Store(rs)
}
