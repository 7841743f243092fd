// Package lookahead implements spec §4.5: turning each OR/OPTION/MANY/
// AT_LEAST_ONE node into a decision function over a k-token window. It is
// grounded on the teacher's own decision-table construction in
// langdef/parser.go (assignTokenGroups), generalized from a single-token
// transition table to a bounded k-token prefix search built on top of
// internal/firstk.
package lookahead

import (
	"sort"

	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/internal/firstk"
	"github.com/ava12/gllk/token"
)

// DecisionFunc inspects up to k tokens of lookahead and reports which
// alternative to take. For an OR node the result is the 0-based index of
// the chosen alternative; for OPTION/MANY/AT_LEAST_ONE it is 0 ("enter the
// body") or -1 ("stop"). -1 from an OR node means none of the alternatives
// matches the window.
type DecisionFunc func(window []token.Type) int

// Table holds one DecisionFunc per occurrence key.
type Table struct {
	decisions map[string]DecisionFunc
}

// Decision looks up the decision function for the given
// gast.OccurrenceKey-formatted key. A nil Table (or an absent key) yields a
// nil DecisionFunc; Build records an entry for every decision-bearing node,
// so this only happens for a key that names no such node. The parser runtime
// treats a nil DecisionFunc as "do not enter" for OPTION/repetitions and as
// "no viable alternative" for OR.
func (t *Table) Decision(key string) DecisionFunc {
	if t == nil {
		return nil
	}
	return t.decisions[key]
}

// Build constructs decision functions for every OR, OPTION, MANY,
// AT_LEAST_ONE, MANY_SEP and AT_LEAST_ONE_SEP node in rules. maxK bounds how
// many tokens of lookahead each decision consults; values <= 0 are treated
// as 1. For the *_SEP repetitions, Build only decides whether to attempt the
// first (or, for MANY_SEP, the only optional) item — the parser runtime
// decides whether to continue looping directly from the separator token,
// which needs no FIRST-set lookup.
func Build(rules map[string]*gast.Node, maxK int) *Table {
	if maxK <= 0 {
		maxK = 1
	}

	t := &Table{decisions: make(map[string]DecisionFunc)}

	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		gast.Walk(rules[name], func(n *gast.Node) bool {
			switch n.Kind {
			case gast.KindAlternation:
				key := gast.OccurrenceKey(gast.Or, n.Occurrence, name)
				t.decisions[key] = buildAltDecision(n, maxK)

			case gast.KindOption, gast.KindRepetition, gast.KindRepetitionMandatory,
				gast.KindRepetitionWithSeparator, gast.KindRepetitionMandatoryWithSeparator:
				key := gast.OccurrenceKey(n.DSL, n.Occurrence, name)
				t.decisions[key] = buildEnterDecision(n, maxK)
			}
			return true
		})
	}

	return t
}

// Paths exposes, for callers outside this package, the same k-bounded
// FIRST-path search buildAltDecision and buildEnterDecision use internally
// to build a node's decision function — validate's AMBIGUOUS_ALTS check, in
// particular, needs the raw path set per alternative rather than a single
// collapsed decision.
func Paths(n *gast.Node, k int) []firstk.Path {
	return firstk.Paths(n, k)
}

func buildAltDecision(or *gast.Node, k int) DecisionFunc {
	pathsPerAlt := make([][]firstk.Path, len(or.Definition))
	for i, alt := range or.Definition {
		pathsPerAlt[i] = Paths(alt, k)
	}
	return func(window []token.Type) int {
		for i, paths := range pathsPerAlt {
			for _, p := range paths {
				if matchesPrefix(p, window) {
					return i
				}
			}
		}
		return -1
	}
}

func buildEnterDecision(n *gast.Node, k int) DecisionFunc {
	body := &gast.Node{Kind: gast.KindFlat, Definition: n.Definition}
	paths := Paths(body, k)
	nonEmpty := make([]firstk.Path, 0, len(paths))
	for _, p := range paths {
		if len(p) > 0 {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return func(window []token.Type) int {
		for _, p := range nonEmpty {
			if matchesPrefix(p, window) {
				return 0
			}
		}
		return -1
	}
}

func matchesPrefix(p firstk.Path, window []token.Type) bool {
	if len(p) > len(window) {
		return false
	}
	for i, tt := range p {
		if window[i] != tt {
			return false
		}
	}
	return true
}
