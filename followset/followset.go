// Package followset implements spec §4.4: for every SUBRULE call site,
// the set of tokens that can legally follow once that call returns. It is
// grounded on the teacher's own FOLLOW-set style propagation across
// langdef/chunks.go's chunk tree, generalized from a single per-nonterminal
// FOLLOW set to one keyed per call site, since a rule invoked from several
// places can have a different continuation at each.
package followset

import (
	"sort"

	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/internal/firstk"
	"github.com/ava12/gllk/internal/tokenset"
	"github.com/ava12/gllk/token"
)

// Table maps a "SUBRULE<occurrence>IN<callingRule>" key (gast.OccurrenceKey)
// to the set of tokens that can appear immediately after that call site. It
// also holds one entry per repetition occurrence (see recordOccFollow) and
// the EOFKey entry.
type Table map[string]*tokenset.Set

// EOFKey is the sentinel Table entry holding the top rule's own FOLLOW set
// ({EOF}, since nothing legally follows a complete parse). It has no
// occurrence of its own — the top rule is never itself the target of a
// SubRule call — so it is keyed by this fixed string rather than by
// gast.OccurrenceKey.
const EOFKey = "EOF"

// tail describes what can appear immediately after some position: First is
// the (already-cascaded) set of tokens; a nil First combined with the loop
// below always carries the full cascade, so no separate "nullable" flag is
// needed once a tail has been built by processSeq.
type tail struct {
	first *tokenset.Set
}

// Compute derives the FOLLOW table for every rule reachable from top. It
// never fails on its own and returns no error: it only ever runs over a
// grammar the resolver and validator have already accepted (grammar.Analyze
// calls it only after both reported zero errors).
func Compute(rules map[string]*gast.Node, top string) Table {
	nullable := firstk.NullableTable(rules)

	ruleFollow := make(map[string]*tokenset.Set, len(rules))
	for name := range rules {
		ruleFollow[name] = tokenset.New()
	}
	if _, ok := rules[top]; ok {
		ruleFollow[top].Add(token.EOF)
	}

	occFollow := make(Table)

	names := sortedRuleNames(rules)

	for changed := true; changed; {
		changed = false
		before := snapshotSizes(ruleFollow)

		for _, name := range names {
			rule := rules[name]
			endTail := tail{first: ruleFollow[name].Clone()}
			processSeq(rule.Definition, name, endTail, nullable, ruleFollow, occFollow)
		}

		if snapshotChanged(before, ruleFollow) {
			changed = true
		}
	}

	if topFollow, ok := ruleFollow[top]; ok {
		occFollow[EOFKey] = topFollow.Clone()
	}

	return occFollow
}

func sortedRuleNames(rules map[string]*gast.Node) []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func snapshotSizes(m map[string]*tokenset.Set) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v.Len()
	}
	return out
}

func snapshotChanged(before map[string]int, after map[string]*tokenset.Set) bool {
	for k, v := range after {
		if before[k] != v.Len() {
			return true
		}
	}
	return false
}

// processSeq walks seq right to left, feeding each element the (already
// fully cascaded) tail of what follows it, and recording every NonTerminal
// occurrence's contribution along the way.
func processSeq(seq []*gast.Node, ruleName string, after tail, nullable map[string]bool, ruleFollow map[string]*tokenset.Set, occFollow Table) {
	for i := len(seq) - 1; i >= 0; i-- {
		n := seq[i]
		followInNode(n, ruleName, after, nullable, ruleFollow, occFollow)

		cur := firstSet(n, nullable, map[*gast.Node]bool{})
		if firstk.Nullable(n, nullable) {
			cur.Union(after.first)
		}
		after = tail{first: cur}
	}
}

func followInNode(n *gast.Node, ruleName string, after tail, nullable map[string]bool, ruleFollow map[string]*tokenset.Set, occFollow Table) {
	switch n.Kind {
	case gast.KindTerminal:
		return

	case gast.KindNonTerminal:
		contribution := after.first.Clone()
		key := gast.OccurrenceKey(gast.SubRule, n.Occurrence, ruleName)
		if occFollow[key] == nil {
			occFollow[key] = tokenset.New()
		}
		occFollow[key].Union(contribution)
		if n.ResolvedRule != nil {
			ruleFollow[n.ResolvedRule.Name].Union(contribution)
		}

	case gast.KindOption, gast.KindRepetition, gast.KindRepetitionWithSeparator:
		bodyFirst := firstSeqSet(n.Definition, nullable, map[*gast.Node]bool{})
		inner := after.first.Clone()
		inner.Union(bodyFirst)
		if n.Kind == gast.KindRepetitionWithSeparator {
			inner.Add(n.Separator)
		}
		if n.Kind != gast.KindOption {
			recordOccFollow(occFollow, n, ruleName, after.first)
		}
		processSeq(n.Definition, ruleName, tail{first: inner}, nullable, ruleFollow, occFollow)

	case gast.KindRepetitionMandatory, gast.KindRepetitionMandatoryWithSeparator:
		bodyFirst := firstSeqSet(n.Definition, nullable, map[*gast.Node]bool{})
		inner := after.first.Clone()
		inner.Union(bodyFirst)
		if n.Kind == gast.KindRepetitionMandatoryWithSeparator {
			inner.Add(n.Separator)
		}
		recordOccFollow(occFollow, n, ruleName, after.first)
		processSeq(n.Definition, ruleName, tail{first: inner}, nullable, ruleFollow, occFollow)

	case gast.KindAlternation:
		for _, alt := range n.Definition {
			processSeq(alt.Definition, ruleName, after, nullable, ruleFollow, occFollow)
		}

	case gast.KindFlat, gast.KindRule:
		processSeq(n.Definition, ruleName, after, nullable, ruleFollow, occFollow)
	}
}

// firstSet computes FIRST_1(n) as a token set, mirroring internal/firstk's
// path search but collapsed to single tokens since FOLLOW only ever needs
// one-token lookahead regardless of the grammar class's configured k.
func firstSet(n *gast.Node, nullable map[string]bool, visiting map[*gast.Node]bool) *tokenset.Set {
	out := tokenset.New()
	switch n.Kind {
	case gast.KindTerminal:
		out.Add(n.TokenType)

	case gast.KindNonTerminal:
		target := n.ResolvedRule
		if target == nil || visiting[target] {
			return out
		}
		visiting[target] = true
		out.Union(firstSeqSet(target.Definition, nullable, visiting))
		delete(visiting, target)

	case gast.KindOption, gast.KindRepetition, gast.KindRepetitionWithSeparator,
		gast.KindRepetitionMandatory, gast.KindRepetitionMandatoryWithSeparator:
		out.Union(firstSeqSet(n.Definition, nullable, visiting))

	case gast.KindAlternation:
		for _, alt := range n.Definition {
			out.Union(firstSet(alt, nullable, visiting))
		}

	case gast.KindFlat, gast.KindRule:
		out.Union(firstSeqSet(n.Definition, nullable, visiting))
	}
	return out
}

// recordOccFollow records what can follow a repetition construct itself
// (as opposed to what follows one iteration of its body), keyed the same
// way SubRule call sites are: by gast.OccurrenceKey(n.DSL, n.Occurrence,
// ruleName). This is what lets recoverRepetition (parser/recovery.go)
// decide, on an unexpected token inside Many/AtLeastOne, whether that token
// belongs to the construct's FOLLOW — i.e. the loop should simply stop —
// rather than to neither FIRST nor FOLLOW, which calls for recovery.
func recordOccFollow(occFollow Table, n *gast.Node, ruleName string, after *tokenset.Set) {
	key := gast.OccurrenceKey(n.DSL, n.Occurrence, ruleName)
	if occFollow[key] == nil {
		occFollow[key] = tokenset.New()
	}
	occFollow[key].Union(after)
}

func firstSeqSet(seq []*gast.Node, nullable map[string]bool, visiting map[*gast.Node]bool) *tokenset.Set {
	out := tokenset.New()
	for _, p := range seq {
		out.Union(firstSet(p, nullable, visiting))
		if !firstk.Nullable(p, nullable) {
			break
		}
	}
	return out
}
