package parser

import "github.com/ava12/gllk/token"

// Rule wraps a rule body into the callable grammar authors register with
// DefineRule and invoke via SubRule (or, for the top rule, Parse). Nested
// invocations never reach the p.recording branch here: SubRule intercepts
// them before calling rule() at all while recording, so a rule's body only
// ever actually runs, ruleStack included, during a real parse.
//
// The EXIT step of spec §4.8's state machine — "if the rule stack is now
// empty and LA(1) != EOF, record a NotAllInputParsed error" — only ever
// triggers here, at whichever invocation happens to be outermost: the rule
// stack reaches zero exactly once per parse, regardless of which named rule
// is on top when it does.
func Rule[T any](p *BaseParser, name string, body func() T) func() T {
	return func() T {
		if p.recording {
			return body()
		}
		p.enterRule(name)
		defer func() {
			p.exitRule()
			if len(p.ruleStack) != 0 || p.err != nil || p.isBacktracking() {
				return
			}
			if la := p.LA(1); la == nil || la.Type() != token.EOF {
				p.setError(&RecognitionError{Kind: NotAllInputParsed, Context: Context{RuleName: name}, Actual: la})
			}
		}()
		return body()
	}
}

// Backtrack attempts body speculatively: on success it commits body's
// effects and returns (result, true); on failure it rewinds the token
// cursor, the rule/occurrence stacks and any newly logged errors, and
// returns (zero value, false). This is spec §9's redesign of
// exception-based backtracking into an explicit, checked result, modeled
// on the teacher's own preference for returning ok bools over panicking.
func Backtrack[T any](p *BaseParser, body func() T) (T, bool) {
	if p.recording {
		return body(), true
	}

	mark := p.mark()
	ruleDepth := len(p.ruleStack)
	occDepth := len(p.occStack)
	followDepth := len(p.followStack)
	savedErr := p.err
	savedErrsLen := len(p.errs)

	p.backtracking++
	result := body()
	p.backtracking--

	if p.err != nil {
		p.reset(mark)
		p.ruleStack = p.ruleStack[:ruleDepth]
		p.occStack = p.occStack[:occDepth]
		p.followStack = p.followStack[:followDepth]
		p.err = savedErr
		p.errs = p.errs[:savedErrsLen]
		var zero T
		return zero, false
	}
	return result, true
}

// Parse drives body (normally the wrapped top rule) to completion against
// whatever source SetSource last configured, resyncing to end of input if
// a recognition error is still in flight when body returns, and returns
// every error accumulated along the way.
func Parse[T any](p *BaseParser, body func() T) (T, []*RecognitionError) {
	result := body()
	if p.err != nil {
		p.resyncTo(p.followStack)
	}
	return result, p.Errors()
}
