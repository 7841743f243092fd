package parser

import (
	"github.com/ava12/gllk/errdef"
	"github.com/ava12/gllk/followset"
	"github.com/ava12/gllk/gast"
	"github.com/ava12/gllk/grammar"
	"github.com/ava12/gllk/internal/tokenset"
	"github.com/ava12/gllk/token"
	"github.com/ava12/gllk/validate"
)

// RuleConfig holds per-rule recovery overrides (spec §4.8).
type RuleConfig struct {
	// ResyncDisabled, when true, prevents this rule from re-synchronizing
	// to its FOLLOW set on a recognition error it cannot locally recover
	// from. The top rule always resyncs regardless of this flag, since
	// that is what guarantees Parse eventually returns (spec §8, P5).
	ResyncDisabled bool

	// RecoveryValue, if set, is called by SubRule in place of returning T's
	// zero value whenever a call to this rule fails and resync takes over
	// (spec §6's recoveryValueFunc). It must return a value assignable to
	// the rule's own result type; a mismatched type is treated the same as
	// RecoveryValue being unset.
	RecoveryValue func() any
}

// Config configures one BaseParser: how its class self-analyzes and how
// its runtime recovers from recognition errors.
type Config struct {
	MaxLookahead    int
	Ignored         validate.IgnoredIssues
	Overrides       map[string]bool
	Parent          *grammar.Class
	RecoveryEnabled bool
	Rules           map[string]RuleConfig
}

func (c Config) ruleConfig(name string) RuleConfig {
	return c.Rules[name]
}

// RuleDef registers one grammar rule for self-analysis: name is the rule's
// identity used by SubRule call sites and by the FOLLOW/lookahead tables,
// and Trampoline runs the rule body once, in recording mode, to build its
// GAST — discarding whatever value the body would otherwise compute.
type RuleDef struct {
	Name       string
	Trampoline func()
}

// DefineRule builds a RuleDef from a typed rule body, erasing its result
// type for the recording trampoline. wrapped is normally the func() T
// returned by Rule.
func DefineRule[T any](name string, wrapped func() T) RuleDef {
	return RuleDef{Name: name, Trampoline: func() { wrapped() }}
}

// BaseParser is the runtime state shared by every generated parser: the
// token window, the sticky first-error field that replaces exception-based
// backtracking (spec §9), the rule/occurrence stacks DSL primitives use to
// build error Context, and — during the one-time self-analysis pass — the
// GAST recorder. Embed it in a grammar-specific type the way the teacher's
// consumers embed parser.Parser.
type BaseParser struct {
	class     *grammar.Class
	cfg       Config
	nextToken func() token.Token

	// tokens buffers every token pulled from the source since the last
	// SetSource, with pos marking the next unconsumed one. Buffering
	// (rather than a destructive FIFO) is what lets Backtrack rewind
	// pos and replay the same tokens instead of re-lexing.
	tokens []token.Token
	pos    int

	ruleStack []string
	occStack  []int

	// followStack mirrors ruleStack one frame per active SubRule call, each
	// entry holding the FOLLOW set of the occurrence that frame is inside.
	// resyncTo scans it bottom to top so a failure with no match in its own
	// call site's FOLLOW set can still resync against an enclosing rule's,
	// instead of discarding input all the way to EOF (spec §4.9). It always
	// has at least one entry — {EOF} for the top rule — seeded by SetSource.
	followStack []*tokenset.Set

	err  *RecognitionError
	errs []*RecognitionError

	backtracking int

	recording  bool
	recorded   map[string]*gast.Node
	buildStack []*gast.Node
}

// Init runs (or reuses the cached result of) className's self-analysis and
// binds this parser instance to it. It must be called before any DSL
// primitive is used. Two-phase construction — build an empty BaseParser,
// then Init it with the rule set — exists because each rule body closure
// needs to reference the very same *BaseParser instance that does not
// fully exist until after every rule is registered (the rule bodies close
// over the parser passed to DefineRule's wrapped func, not over a global).
func (p *BaseParser) Init(className, topRule string, defs []RuleDef, cfg Config) error {
	if dupErrs := checkDuplicateNames(defs); len(dupErrs) > 0 {
		return &errdef.Aggregate{Errors: dupErrs}
	}

	p.cfg = cfg

	class, err := grammar.Analyze(className, func() map[string]*gast.Node {
		return p.recordAll(defs)
	}, grammar.Config{
		TopRule:      topRule,
		MaxLookahead: cfg.MaxLookahead,
		Ignored:      cfg.Ignored,
		Overrides:    cfg.Overrides,
		Parent:       cfg.Parent,
	})
	if err != nil {
		return err
	}

	p.class = class
	return nil
}

// SetSource points this parser at a fresh token stream. Called once per
// input, so the same grammar-analyzed BaseParser (and, in particular, its
// class) can be reused across many parses of that grammar.
func (p *BaseParser) SetSource(next func() token.Token) {
	p.nextToken = next
	p.tokens = nil
	p.pos = 0
	p.ruleStack = nil
	p.occStack = nil
	eofFollow := p.class.FollowSet(followset.EOFKey)
	if eofFollow == nil {
		eofFollow = tokenset.New(token.EOF)
	}
	p.followStack = []*tokenset.Set{eofFollow}
	p.err = nil
	p.errs = nil
	p.backtracking = 0
}

// Class returns the grammar class this parser was initialized with.
func (p *BaseParser) Class() *grammar.Class {
	return p.class
}

// Errors returns every recognition error accumulated so far: whatever
// recovery already logged, followed by the sticky current one, if set.
func (p *BaseParser) Errors() []*RecognitionError {
	if p.err == nil {
		return p.errs
	}
	return append(append([]*RecognitionError{}, p.errs...), p.err)
}

// Failed reports whether a recognition error is currently in flight.
func (p *BaseParser) Failed() bool {
	return p.err != nil
}

func (p *BaseParser) fill(n int) {
	for len(p.tokens)-p.pos < n {
		if k := len(p.tokens); k > 0 && p.tokens[k-1] != nil && p.tokens[k-1].Type() == token.EOF {
			last := p.tokens[k-1]
			p.tokens = append(p.tokens, token.NewEOF(last.Line(), last.Col()))
			continue
		}
		p.tokens = append(p.tokens, p.nextToken())
	}
}

// LA returns the i-th token of lookahead (LA(1) is the next unconsumed
// token), fetching from the source as needed.
func (p *BaseParser) LA(i int) token.Token {
	p.fill(i)
	return p.tokens[p.pos+i-1]
}

// mark and reset implement the cursor part of Backtrack's rewind: mark
// snapshots the cursor before a speculative attempt, reset moves it back to
// that point. Backtrack restores the stacks and errors itself.
func (p *BaseParser) mark() int {
	return p.pos
}

func (p *BaseParser) reset(m int) {
	p.pos = m
}

// peekWindow returns up to k token types starting at LA(1), for decision
// functions built by the lookahead package.
func (p *BaseParser) peekWindow(k int) []token.Type {
	out := make([]token.Type, 0, k)
	for i := 1; i <= k; i++ {
		t := p.LA(i)
		if t == nil {
			break
		}
		out = append(out, t.Type())
		if t.Type() == token.EOF {
			break
		}
	}
	return out
}

func (p *BaseParser) advance() token.Token {
	p.fill(1)
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *BaseParser) currentRuleName() string {
	if len(p.ruleStack) == 0 {
		return ""
	}
	return p.ruleStack[len(p.ruleStack)-1]
}

func (p *BaseParser) enterRule(name string) {
	p.ruleStack = append(p.ruleStack, name)
}

func (p *BaseParser) exitRule() {
	p.ruleStack = p.ruleStack[:len(p.ruleStack)-1]
}

// resyncEnabled implements spec §4.8/§8's P4/P5: a call site in the top
// rule always resyncs so Parse is guaranteed to terminate, regardless of
// configuration; a call site nested inside some other rule resyncs only
// when recovery is on globally and the called rule (calledRule) has not
// opted out via its RuleConfig.ResyncDisabled.
// callerDepth is len(ruleStack) as observed at the call site, before the
// callee is invoked (not after it returns, by which point the callee's own
// frame has already been popped and every caller looks equally shallow).
func (p *BaseParser) resyncEnabled(calledRule string, callerDepth int) bool {
	if callerDepth == 1 {
		return true
	}
	return p.cfg.RecoveryEnabled && !p.cfg.ruleConfig(calledRule).ResyncDisabled
}

func (p *BaseParser) isBacktracking() bool {
	return p.backtracking > 0
}

// shouldEnter consults the lookahead decision built for the DSL occurrence
// (kind, occ) inside the current rule and reports whether its body should
// run for one more iteration.
func (p *BaseParser) shouldEnter(kind gast.DSLKind, occ int) bool {
	key := gast.OccurrenceKey(kind, occ, p.currentRuleName())
	decide := p.class.Lookahead.Decision(key)
	if decide == nil {
		return false
	}
	return decide(p.peekWindow(p.class.MaxLookahead)) == 0
}

// setError records a recognition error, sticking it as the in-flight error
// unless one is already in flight (only the first failure along a given
// path is ever surfaced, mirroring bufio.Scanner's "first error wins" and
// spec §9's redesign of exception-based backtracking into an explicit,
// checked field). This runs the same way whether or not a speculative
// Backtrack attempt is in progress — Backtrack detects failure by observing
// p.err after body returns, so a swallowed error here would make every
// speculative attempt look like it succeeded.
func (p *BaseParser) setError(e *RecognitionError) {
	if p.err == nil {
		p.err = e
	}
}

// commitError moves the sticky error into the permanent log and clears it,
// letting parsing resume after a successful resync.
func (p *BaseParser) commitError() {
	if p.err == nil {
		return
	}
	p.errs = append(p.errs, p.err)
	p.err = nil
}
