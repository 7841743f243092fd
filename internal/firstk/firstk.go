// Package firstk computes FIRST(X,k): the set of up to k-token prefixes a
// GAST node can begin with. It backs both the ambiguity check in validate
// (spec invariant I7) and the decision functions in lookahead (spec §4.5).
// It is grounded on the teacher's own FIRST-token propagation in
// langdef/chunks.go (chunk.FirstTokens/chunk.IsOptional), generalized from
// a single-token FIRST set to bounded k-token prefixes and from the
// teacher's chunk interface to gast.Node's tagged Kind.
package firstk

import (
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/token"
)

// Path is one k-bounded (or shorter, if the construct can end early)
// sequence of token types.
type Path []token.Type

func (p Path) equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func dedupe(paths []Path) []Path {
	out := make([]Path, 0, len(paths))
	for _, p := range paths {
		dup := false
		for _, q := range out {
			if p.equal(q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func concat(a, b Path) Path {
	out := make(Path, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// NullableTable computes, for every rule, whether it can match the empty
// string (spec's I6/left-recursion prerequisite). Computed as a least
// fixpoint since rule nullability can be mutually recursive.
func NullableTable(rules map[string]*gast.Node) map[string]bool {
	table := make(map[string]bool, len(rules))
	for changed := true; changed; {
		changed = false
		for name, r := range rules {
			n := nullableSeq(r.Definition, table)
			if n != table[name] {
				table[name] = n
				changed = true
			}
		}
	}
	return table
}

func nullableNode(n *gast.Node, table map[string]bool) bool {
	switch n.Kind {
	case gast.KindTerminal:
		return false
	case gast.KindNonTerminal:
		return table[n.Name]
	case gast.KindOption, gast.KindRepetition, gast.KindRepetitionWithSeparator:
		return true
	case gast.KindRepetitionMandatory, gast.KindRepetitionMandatoryWithSeparator:
		return nullableSeq(n.Definition, table)
	case gast.KindAlternation:
		for _, alt := range n.Definition {
			if nullableNode(alt, table) {
				return true
			}
		}
		return false
	case gast.KindFlat, gast.KindRule:
		return nullableSeq(n.Definition, table)
	default:
		return false
	}
}

// Nullable reports whether n alone can match the empty string. Exported so
// followset can reuse the same nullability rules without duplicating them.
func Nullable(n *gast.Node, table map[string]bool) bool {
	return nullableNode(n, table)
}

func nullableSeq(seq []*gast.Node, table map[string]bool) bool {
	for _, p := range seq {
		if !nullableNode(p, table) {
			return false
		}
	}
	return true
}

// FirstRuleRefs collects the names of rules that could be the very first
// thing matched when starting at n — a NonTerminal contributes its own
// name, and scanning of a sequence continues past a production only while
// every production seen so far is nullable. Used by validate's
// left-recursion search (spec §4.3, LEFT_RECURSION).
func FirstRuleRefs(n *gast.Node, nullable map[string]bool, out map[string]bool) {
	switch n.Kind {
	case gast.KindTerminal:
		return
	case gast.KindNonTerminal:
		out[n.Name] = true
	case gast.KindOption, gast.KindRepetition, gast.KindRepetitionWithSeparator,
		gast.KindRepetitionMandatory, gast.KindRepetitionMandatoryWithSeparator:
		firstSeqRefs(n.Definition, nullable, out)
	case gast.KindAlternation:
		for _, alt := range n.Definition {
			FirstRuleRefs(alt, nullable, out)
		}
	case gast.KindFlat, gast.KindRule:
		firstSeqRefs(n.Definition, nullable, out)
	}
}

func firstSeqRefs(seq []*gast.Node, nullable map[string]bool, out map[string]bool) {
	for _, p := range seq {
		FirstRuleRefs(p, nullable, out)
		if !nullableNode(p, nullable) {
			return
		}
	}
}

// Paths computes the (deduplicated) set of up to k-token prefixes n can
// begin with. A path shorter than k means the construct (or the whole
// input, if n is a top rule) may end before k tokens are seen.
func Paths(n *gast.Node, k int) []Path {
	if k <= 0 {
		return []Path{{}}
	}
	return expand(n, k, map[*gast.Node]bool{})
}

func expand(n *gast.Node, k int, visiting map[*gast.Node]bool) []Path {
	if k <= 0 {
		return []Path{{}}
	}

	switch n.Kind {
	case gast.KindTerminal:
		return []Path{{n.TokenType}}

	case gast.KindNonTerminal:
		target := n.ResolvedRule
		if target == nil || visiting[target] {
			// Unresolved (definition error already reported elsewhere) or
			// already expanding this rule along the current chain — treat
			// as epsilon so callers still terminate on recursive grammars.
			return []Path{{}}
		}
		visiting[target] = true
		result := expandSeq(target.Definition, k, visiting)
		delete(visiting, target)
		return result

	case gast.KindOption, gast.KindRepetition, gast.KindRepetitionWithSeparator:
		inner := expandSeq(n.Definition, k, visiting)
		return dedupe(append(inner, Path{}))

	case gast.KindRepetitionMandatory, gast.KindRepetitionMandatoryWithSeparator:
		return expandSeq(n.Definition, k, visiting)

	case gast.KindAlternation:
		// Semantic gates (alt.Predicate) are runtime-only; a static path
		// search still treats every alternative as reachable.
		var out []Path
		for _, alt := range n.Definition {
			out = append(out, expand(alt, k, visiting)...)
		}
		return dedupe(out)

	case gast.KindFlat, gast.KindRule:
		return expandSeq(n.Definition, k, visiting)

	default:
		return []Path{{}}
	}
}

func expandSeq(seq []*gast.Node, k int, visiting map[*gast.Node]bool) []Path {
	paths := []Path{{}}
	for _, p := range seq {
		var next []Path
		full := true
		for _, prefix := range paths {
			remaining := k - len(prefix)
			if remaining <= 0 {
				next = append(next, prefix)
				continue
			}
			full = false
			for _, suffix := range expand(p, remaining, visiting) {
				next = append(next, concat(prefix, suffix))
			}
		}
		paths = dedupe(next)
		if full {
			break
		}
	}
	return paths
}
