// dsl.go holds the grammar-combinator primitives grammar authors call from
// their rule bodies (spec §4.7). Each one has exactly two jobs, selected by
// p.recording: append the right shape of gast.Node during the one-time
// self-analysis pass, or drive the actual token stream during a real parse.
// Occurrence indices are explicit int parameters rather than baked into
// distinct method names (CONSUME1, CONSUME2, ...), since Go can express
// that directly without the code generation the teacher's own DSL forgoes
// entirely (chevrotain-family engines need the numbered names because their
// host language has no equivalent to an ordinary integer parameter here).
package parser

import (
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/token"
)

// Consume matches and returns the next token if it is of type tt. On a
// mismatch it attempts single-token recovery (spec §4.9) before falling
// back to the sticky-error path.
func Consume(p *BaseParser, occ int, tt token.Type) token.Token {
	if p.recording {
		p.appendNode(gast.NewTerminal(occ, tt))
		return nil
	}
	if p.err != nil {
		return nil
	}

	la := p.LA(1)
	if la != nil && la.Type() == tt {
		return p.advance()
	}
	return p.recoverConsume(occ, tt, la)
}

// SubRule invokes another rule at the given occurrence, threading resync
// (spec §4.8/§4.9) through when it fails. The second return reports whether
// the callee completed without leaving a recognition error in flight — a
// caller building up a list from repeated SubRule calls (MANY/MANY_SEP over
// a SubRule) must check it before keeping the result, since a failed callee
// that had to resync returns T's zero value (or name's configured
// RecoveryValue, if one is set), not a real parse.
func SubRule[T any](p *BaseParser, occ int, name string, rule func() T) (T, bool) {
	var zero T
	if p.recording {
		p.appendNode(gast.NewNonTerminal(occ, name))
		return zero, true
	}
	if p.err != nil {
		return zero, false
	}

	callingRule := p.currentRuleName()
	callerDepth := len(p.ruleStack)

	key := gast.OccurrenceKey(gast.SubRule, occ, callingRule)
	p.occStack = append(p.occStack, occ)
	p.followStack = append(p.followStack, p.class.FollowSet(key))
	result := rule()
	p.occStack = p.occStack[:len(p.occStack)-1]

	failed := p.err != nil
	if failed && !p.isBacktracking() && p.resyncEnabled(name, callerDepth) {
		p.resyncTo(p.followStack)
		result = zero
		if rv := p.cfg.ruleConfig(name).RecoveryValue; rv != nil {
			if v, ok := rv().(T); ok {
				result = v
			}
		}
	}
	p.followStack = p.followStack[:len(p.followStack)-1]
	return result, !failed
}

// Option runs body at most once, only when the lookahead decision built for
// this occurrence says the input actually starts the optional construct.
func Option(p *BaseParser, occ int, body func()) {
	if p.recording {
		recordCompound(p, gast.NewOption(occ), body)
		return
	}
	if p.err != nil {
		return
	}
	if p.shouldEnter(gast.OptionDSL, occ) {
		body()
	}
}

// Many runs body zero or more times, deciding whether to attempt another
// iteration the same way Option decides whether to run once.
func Many(p *BaseParser, occ int, body func()) {
	if p.recording {
		recordCompound(p, gast.NewRepetition(occ), body)
		return
	}
	for {
		if p.err != nil {
			return
		}
		if !p.shouldEnter(gast.Many, occ) {
			if p.recoverRepetition(gast.Many, occ) {
				continue
			}
			return
		}
		body()
	}
}

// AtLeastOne runs body once, then like Many for any further iterations. The
// first run is itself gated on the same lookahead decision as every later
// one: spec §4.9's EarlyExit is exactly this construct promising at least
// one match and finding, before ever calling body, that LA does not start
// one.
func AtLeastOne(p *BaseParser, occ int, body func()) {
	if p.recording {
		recordCompound(p, gast.NewRepetitionMandatory(occ), body)
		return
	}
	if p.err != nil {
		return
	}
	if !p.shouldEnter(gast.AtLeastOne, occ) {
		p.setError(&RecognitionError{Kind: EarlyExit, Context: p.context(occ), Actual: p.LA(1)})
		return
	}
	body()
	for {
		if p.err != nil {
			return
		}
		if !p.shouldEnter(gast.AtLeastOne, occ) {
			if p.recoverRepetition(gast.AtLeastOne, occ) {
				continue
			}
			return
		}
		body()
	}
}

// ManySep runs body zero or more times, separated by sep. Only the first
// item's presence is a lookahead decision; every later item is gated on
// literally seeing sep next, which needs no FIRST-set lookup.
func ManySep(p *BaseParser, occ int, sep token.Type, body func()) {
	if p.recording {
		recordCompound(p, gast.NewRepetitionWithSeparator(occ, sep), body)
		return
	}
	if p.err != nil {
		return
	}
	if !p.shouldEnter(gast.ManySep, occ) {
		return
	}
	body()
	for p.continueSeparated(sep) {
		body()
	}
}

// AtLeastOneSep runs body once, gated the same way AtLeastOne's first
// iteration is, then continues for as long as sep is next.
func AtLeastOneSep(p *BaseParser, occ int, sep token.Type, body func()) {
	if p.recording {
		recordCompound(p, gast.NewRepetitionMandatoryWithSeparator(occ, sep), body)
		return
	}
	if p.err != nil {
		return
	}
	if !p.shouldEnter(gast.AtLeastOneSep, occ) {
		p.setError(&RecognitionError{Kind: EarlyExit, Context: p.context(occ), Actual: p.LA(1)})
		return
	}
	body()
	for p.continueSeparated(sep) {
		body()
	}
}

func (p *BaseParser) continueSeparated(sep token.Type) bool {
	if p.err != nil {
		return false
	}
	la := p.LA(1)
	if la == nil || la.Type() != sep {
		return false
	}
	p.advance()
	return true
}

func recordCompound(p *BaseParser, node *gast.Node, body func()) {
	p.appendNode(node)
	p.pushContainer(node)
	body()
	p.popContainer()
}

// Alt is one alternative of an Or: an optional semantic gate plus the
// production to run when both the gate and the lookahead decision select
// it (spec §9's open question: the two must both hold).
type Alt[T any] struct {
	Predicate func() bool
	Body      func() T
}

// Or picks exactly one of alts by consulting the lookahead decision built
// for this occurrence, then confirming the chosen alternative's predicate
// (if any). No match — either no alternative's FIRST set covers the window,
// or the matching one's predicate refused — raises NoViableAlternative.
func Or[T any](p *BaseParser, occ int, alts []Alt[T]) T {
	var zero T
	if p.recording {
		node := gast.NewAlternation(occ)
		p.appendNode(node)
		for _, alt := range alts {
			flat := gast.NewFlat()
			flat.Predicate = alt.Predicate
			node.Definition = append(node.Definition, flat)
			p.pushContainer(flat)
			if alt.Body != nil {
				alt.Body()
			}
			p.popContainer()
		}
		return zero
	}
	if p.err != nil {
		return zero
	}

	key := gast.OccurrenceKey(gast.Or, occ, p.currentRuleName())
	decide := p.class.Lookahead.Decision(key)
	idx := -1
	if decide != nil {
		idx = decide(p.peekWindow(p.class.MaxLookahead))
	}
	if idx >= 0 && idx < len(alts) && (alts[idx].Predicate == nil || alts[idx].Predicate()) {
		return alts[idx].Body()
	}

	p.setError(&RecognitionError{Kind: NoViableAlternative, Context: p.context(occ), Actual: p.LA(1)})
	return zero
}
