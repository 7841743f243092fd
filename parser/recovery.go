package parser

import (
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/internal/tokenset"
	"github.com/ava12/gllk/token"
)

func (p *BaseParser) context(occ int) Context {
	return Context{
		RuleName:        p.currentRuleName(),
		Occurrence:      occ,
		RuleStack:       append([]string{}, p.ruleStack...),
		OccurrenceStack: append([]int{}, p.occStack...),
	}
}

func (p *BaseParser) recoveryAllowed() bool {
	return p.cfg.RecoveryEnabled && !p.isBacktracking()
}

// activeFollowContains reports whether tt belongs to the innermost active
// call site's FOLLOW set — the top of followStack.
func (p *BaseParser) activeFollowContains(tt token.Type) bool {
	if len(p.followStack) == 0 {
		return false
	}
	follow := p.followStack[len(p.followStack)-1]
	return follow != nil && follow.Contains(tt)
}

// followStackContains reports whether tt belongs to any FOLLOW set on the
// stack, innermost first.
func followStackContains(stack []*tokenset.Set, tt token.Type) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != nil && stack[i].Contains(tt) {
			return true
		}
	}
	return false
}

// logError appends a recognition error the runtime has already recovered
// from — parsing continues past it without going through the sticky p.err
// short-circuit. recoverConsume and recoverRepetition call it only on the
// paths where they did recover; their failure paths use setError instead.
func (p *BaseParser) logError(e *RecognitionError) {
	p.errs = append(p.errs, e)
}

// recoverConsume implements spec §4.9's in-rule single-token recovery:
// insertion when LA(1) is already in the active FOLLOW set (the wanted
// token is simply missing, and got legitimately belongs to whatever comes
// next), deletion when LA(2) matches what was wanted (got was one stray
// token), and otherwise no local fix at all — the caller bails out to the
// sticky error so between-rules resync, not this single-token tier, handles
// input that doesn't realign within one token.
func (p *BaseParser) recoverConsume(occ int, want token.Type, got token.Token) token.Token {
	ctx := p.context(occ)

	if !p.recoveryAllowed() {
		p.setError(&RecognitionError{Kind: UnexpectedToken, Context: ctx, Expected: []token.Type{want}, Actual: got})
		return nil
	}

	if got != nil && p.activeFollowContains(got.Type()) {
		p.logError(&RecognitionError{Kind: MissingToken, Context: ctx, Expected: []token.Type{want}, Actual: got})
		return token.Insert(token.New(want, "", "", got.Line(), got.Col()))
	}

	if got != nil {
		if next := p.LA(2); next != nil && next.Type() == want {
			p.logError(&RecognitionError{Kind: UnexpectedToken, Context: ctx, Expected: []token.Type{want}, Actual: got})
			p.advance()
			return p.advance()
		}
	}

	p.setError(&RecognitionError{Kind: UnexpectedToken, Context: ctx, Expected: []token.Type{want}, Actual: got})
	return nil
}

// recoverRepetition implements spec §4.9's in-repetition recovery tier, the
// one that sits between recoverConsume's single-token fix inside a rule and
// resyncTo's between-rules jump. It only ever runs once shouldEnter has
// already said "stop" for (kind, occ): the question left to answer is
// whether that stop is legitimate (LA(1) is genuinely in the construct's own
// FOLLOW, or input is exhausted) or whether the loop gave up on a token that
// belongs to neither FIRST(body) nor FOLLOW. When it isn't, this skips
// tokens one at a time — not just one — re-testing after each deletion,
// until either (a)/(b) shouldEnter fires again and body can resume, or (c) a
// token in the construct's own FOLLOW is reached and the repetition is
// legitimately over. The return reports whether the caller should attempt
// body once more (true) or stop (false, either cleanly or having
// logged/set an error).
func (p *BaseParser) recoverRepetition(kind gast.DSLKind, occ int) bool {
	la := p.LA(1)
	if la == nil || la.Type() == token.EOF {
		return false
	}

	key := gast.OccurrenceKey(kind, occ, p.currentRuleName())
	follow := p.class.FollowSet(key)
	if follow != nil && follow.Contains(la.Type()) {
		return false
	}

	if !p.recoveryAllowed() {
		p.setError(&RecognitionError{Kind: UnexpectedToken, Context: p.context(occ), Actual: la})
		return false
	}

	mark := p.mark()
	var skipped []token.Token
	for {
		skipped = append(skipped, p.advance())
		cur := p.LA(1)
		if cur == nil || cur.Type() == token.EOF {
			break
		}
		if p.shouldEnter(kind, occ) {
			p.logError(&RecognitionError{Kind: UnexpectedToken, Context: p.context(occ), Actual: la, ResyncedTokens: skipped})
			return true
		}
		if follow != nil && follow.Contains(cur.Type()) {
			p.logError(&RecognitionError{Kind: UnexpectedToken, Context: p.context(occ), Actual: la, ResyncedTokens: skipped})
			return false
		}
	}

	p.reset(mark)
	if want, ok := nextTerminalAfter(follow); ok {
		p.logError(&RecognitionError{Kind: MissingToken, Context: p.context(occ), Expected: []token.Type{want}, Actual: la})
		return false
	}

	p.setError(&RecognitionError{Kind: UnexpectedToken, Context: p.context(occ), Actual: la})
	return false
}

// resyncTo implements spec §4.9's between-rules re-sync: commit the
// in-flight sticky error, then discard tokens up to (not including) the
// next one found in any FOLLOW set on followStack, scanned innermost first
// but matching whichever frame hits first — i.e. the union of the stack,
// flattened bottom to top, not just the failing call site's own FOLLOW
// set. Tokens discarded this way are recorded on the committed error so a
// caller can see exactly what recovery skipped.
func (p *BaseParser) resyncTo(followStack []*tokenset.Set) {
	var discarded []token.Token
	for {
		la := p.LA(1)
		if la == nil || la.Type() == token.EOF {
			break
		}
		if followStackContains(followStack, la.Type()) {
			break
		}
		discarded = append(discarded, p.advance())
	}

	committed := p.err
	p.commitError()
	if committed != nil && len(discarded) > 0 {
		committed.ResyncedTokens = discarded
	}
}
