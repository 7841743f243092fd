// Package validate implements spec §4.3: the grammar validator. It only
// ever runs over a rule set the resolver has already resolved with zero
// errors (spec §4.6 step 3), so every NonTerminal it walks carries a
// non-nil ResolvedRule (invariant I1).
package validate

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/internal/firstk"
	"github.com/ava12/gllk/internal/rqueue"
	"github.com/ava12/gllk/lookahead"
)

var ruleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IgnoredIssues maps a rule name to the set of "<KIND><occurrence>" keys
// whose DUPLICATE_PRODUCTIONS/AMBIGUOUS_ALTS findings are silenced for that
// rule, per spec §4.3's ignoredIssues table.
type IgnoredIssues map[string]map[string]bool

func (ii IgnoredIssues) silenced(ruleName, key string) bool {
	if ii == nil {
		return false
	}
	return ii[ruleName][key]
}

// Config bundles the validator's inputs beyond the rule set itself.
type Config struct {
	MaxLookahead int
	Ignored      IgnoredIssues
	// Overrides names rules this grammar class declares as overriding a
	// rule inherited from Parent (spec §4.3.1, the supplemented override
	// feature). Parent may be nil for grammars with no base class.
	Overrides map[string]bool
	Parent    map[string]*gast.Node
}

// Check runs every validation named in spec §4.3 and returns the
// concatenation of their findings, in the fixed order the spec lists them.
func Check(rules map[string]*gast.Node, cfg Config) []*errdef.Error {
	var errs []*errdef.Error

	names := sortedNames(rules)

	errs = append(errs, checkRuleNames(names)...)
	errs = append(errs, checkDuplicateRuleNames(rules)...)
	errs = append(errs, checkOverrides(cfg)...)
	errs = append(errs, checkDuplicateProductions(rules, names, cfg.Ignored)...)
	errs = append(errs, checkLeftRecursion(rules, names)...)
	errs = append(errs, checkEmptyAlternativeOrder(rules, names)...)
	errs = append(errs, checkAmbiguousAlternatives(rules, names, cfg)...)

	return errs
}

func sortedNames(rules map[string]*gast.Node) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkRuleNames implements INVALID_RULE_NAME.
func checkRuleNames(names []string) []*errdef.Error {
	var errs []*errdef.Error
	for _, name := range names {
		if !ruleNamePattern.MatchString(name) {
			errs = append(errs, errdef.New(errdef.InvalidRuleName, name,
				"rule name %q does not match [A-Za-z_][A-Za-z0-9_]*", name))
		}
	}
	return errs
}

// checkDuplicateRuleNames implements DUPLICATE_RULE_NAME. It is a no-op
// here: rules is always built from a rule-name-to-Rule map, which cannot
// itself carry a duplicate key. The duplicate a grammar author actually
// registers twice is caught earlier, at rule registration, by
// parser.BaseParser.Init (see DESIGN.md) — by the time Check runs, that
// case has already turned into a returned error and self-analysis never
// starts. This stub stays so Check's step order still names every finding
// spec §4.3 lists.
func checkDuplicateRuleNames(rules map[string]*gast.Node) []*errdef.Error {
	return nil
}

// checkOverrides implements INVALID_RULE_OVERRIDE (spec §4.3.1).
func checkOverrides(cfg Config) []*errdef.Error {
	if len(cfg.Overrides) == 0 {
		return nil
	}
	var errs []*errdef.Error
	names := make([]string, 0, len(cfg.Overrides))
	for name := range cfg.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if cfg.Parent == nil {
			errs = append(errs, errdef.New(errdef.InvalidRuleOverride, name,
				"rule %q is declared as an override but this class has no parent grammar", name))
			continue
		}
		if _, found := cfg.Parent[name]; !found {
			errs = append(errs, errdef.New(errdef.InvalidRuleOverride, name,
				"rule %q is declared as an override but does not shadow any inherited rule", name))
		}
	}
	return errs
}

// checkDuplicateProductions implements DUPLICATE_PRODUCTIONS (invariant I2).
func checkDuplicateProductions(rules map[string]*gast.Node, names []string, ignored IgnoredIssues) []*errdef.Error {
	var errs []*errdef.Error
	type seenKey struct {
		kind gast.DSLKind
		occ  int
	}
	for _, name := range names {
		seen := make(map[seenKey]bool)
		gast.Walk(rules[name], func(n *gast.Node) bool {
			if n.Kind == gast.KindRule || n.DSL == 0 {
				return true
			}
			k := seenKey{n.DSL, n.Occurrence}
			if seen[k] {
				key := n.DSL.String() + strconv.Itoa(n.Occurrence)
				if !ignored.silenced(name, key) {
					e := errdef.New(errdef.DuplicateProductions, name,
						"rule %q: duplicate %s%d", name, n.DSL, n.Occurrence)
					e.Occurrence = n.Occurrence
					errs = append(errs, e)
				}
				return true
			}
			seen[k] = true
			return true
		})
	}
	return errs
}

// checkLeftRecursion implements LEFT_RECURSION, grounded directly on the
// teacher's ntIsRecursive (langdef/parser.go): starting from each rule,
// follow only "first" non-terminal occurrences (reachable without crossing
// a mandatory terminal) and flag the rule if that search revisits it.
func checkLeftRecursion(rules map[string]*gast.Node, names []string) []*errdef.Error {
	nullable := firstk.NullableTable(rules)

	firstRefs := make(map[string]map[string]bool, len(rules))
	for _, name := range names {
		refs := make(map[string]bool)
		firstk.FirstRuleRefs(rules[name], nullable, refs)
		firstRefs[name] = refs
	}

	var errs []*errdef.Error
	for _, name := range names {
		visited := map[string]bool{name: true}
		queue := rqueue.New(name)
		recursive := false
		for !queue.IsEmpty() && !recursive {
			cur, _ := queue.First()
			for next := range firstRefs[cur] {
				if next == name {
					recursive = true
					break
				}
				if !visited[next] {
					visited[next] = true
					queue.Append(next)
				}
			}
		}
		if recursive {
			errs = append(errs, errdef.New(errdef.LeftRecursion, name,
				"rule %q is left-recursive", name))
		}
	}
	return errs
}

// checkEmptyAlternativeOrder implements NONE_LAST_EMPTY_ALT (invariant I6).
func checkEmptyAlternativeOrder(rules map[string]*gast.Node, names []string) []*errdef.Error {
	var errs []*errdef.Error
	for _, name := range names {
		gast.Walk(rules[name], func(n *gast.Node) bool {
			if n.Kind != gast.KindAlternation {
				return true
			}
			alts := n.Definition
			for i, alt := range alts {
				if len(alt.Definition) == 0 && i != len(alts)-1 {
					errs = append(errs, errdef.New(errdef.NoneLastEmptyAlt, name,
						"rule %q: empty alternative %d of OR%d must be last", name, i+1, n.Occurrence))
				}
			}
			return true
		})
	}
	return errs
}

// checkAmbiguousAlternatives implements AMBIGUOUS_ALTS (invariant I7): two
// alternatives of the same OR are ambiguous iff any of their k-token paths
// coincide.
func checkAmbiguousAlternatives(rules map[string]*gast.Node, names []string, cfg Config) []*errdef.Error {
	k := cfg.MaxLookahead
	if k <= 0 {
		k = 1
	}
	var errs []*errdef.Error
	for _, name := range names {
		gast.Walk(rules[name], func(n *gast.Node) bool {
			if n.Kind != gast.KindAlternation {
				return true
			}
			key := gast.Or.String() + strconv.Itoa(n.Occurrence)
			if cfg.Ignored.silenced(name, key) {
				return true
			}

			pathSets := make([][]firstk.Path, len(n.Definition))
			for i, alt := range n.Definition {
				pathSets[i] = lookahead.Paths(alt, k)
			}
			for i := 0; i < len(pathSets); i++ {
				for j := i + 1; j < len(pathSets); j++ {
					if pathsIntersect(pathSets[i], pathSets[j]) {
						errs = append(errs, ambiguousAltsError(name, n.Occurrence, i+1, j+1))
					}
				}
			}
			return true
		})
	}
	return errs
}

func pathsIntersect(a, b []firstk.Path) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pathsEqual(pa, pb) {
				return true
			}
		}
	}
	return false
}

func pathsEqual(a, b firstk.Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func ambiguousAltsError(ruleName string, occ, altA, altB int) *errdef.Error {
	e := errdef.New(errdef.AmbiguousAlts, ruleName,
		"rule %q: alternatives %d and %d of OR%d are ambiguous", ruleName, altA, altB, occ)
	e.Occurrence = occ
	e.AltIndexes = []int{altA, altB}
	return e
}
