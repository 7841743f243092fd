package parser_test

import (
	"strconv"
	"testing"

	"github.com/ava12/gllk/internal/rtest"
	. "github.com/ava12/gllk/parser"
	"github.com/ava12/gllk/token"
)

const (
	tLParen token.Type = iota + 1
	tRParen
	tComma
	tNumber
	tBang
)

type listGrammar struct {
	BaseParser
	item func() int
	list func() []int
}

func newListGrammar(t *testing.T, className string, cfg Config) *listGrammar {
	g := &listGrammar{}
	g.item = Rule(&g.BaseParser, "item", g.itemBody)
	g.list = Rule(&g.BaseParser, "list", g.listBody)

	cfg.MaxLookahead = 1
	if err := g.Init(className, "list", []RuleDef{
		DefineRule("item", g.item),
		DefineRule("list", g.list),
	}, cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return g
}

func (g *listGrammar) itemBody() int {
	tok := Consume(&g.BaseParser, 1, tNumber)
	if tok == nil {
		return 0
	}
	n, _ := strconv.Atoi(tok.Text())
	return n
}

func (g *listGrammar) listBody() []int {
	Consume(&g.BaseParser, 1, tLParen)
	var items []int
	AtLeastOneSep(&g.BaseParser, 1, tComma, func() {
		if v, ok := SubRule(&g.BaseParser, 1, "item", g.item); ok {
			items = append(items, v)
		}
	})
	Consume(&g.BaseParser, 2, tRParen)
	return items
}

func numTok(n int) token.Token {
	return token.New(tNumber, "NUMBER", strconv.Itoa(n), 1, 1)
}

func punct(tt token.Type, text string) token.Token {
	return token.New(tt, text, text, 1, 1)
}

func fakeSource(tokens []token.Token) func() token.Token {
	i := 0
	return func() token.Token {
		if i < len(tokens) {
			t := tokens[i]
			i++
			return t
		}
		return token.NewEOF(1, 1)
	}
}

func TestListGrammarHappyPath(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.happy", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), punct(tComma, ","), numTok(2), punct(tComma, ","), numTok(3), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.list)
	rtest.ExpectInt(t, 0, len(errs))
	rtest.Expect(t, len(items) == 3 && items[0] == 1 && items[1] == 2 && items[2] == 3, []int{1, 2, 3}, items)
}

func TestListGrammarMissingCloseParenRecovers(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.missing_close", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1),
	}))

	items, errs := Parse(&g.BaseParser, g.list)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, MissingToken, errs)
	rtest.Expect(t, len(items) == 1 && items[0] == 1, []int{1}, items)
}

func TestListGrammarRecoveryDisabledSticksAtFirstError(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.no_recovery", Config{RecoveryEnabled: false})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1),
	}))

	_, errs := Parse(&g.BaseParser, g.list)
	rtest.ExpectInt(t, 1, len(errs))
}

// A second comma where an item is expected is itself a token in that
// item's FOLLOW set (it starts the next legal iteration), so recovery
// takes the insertion branch rather than deleting it: the missing item is
// reported, a placeholder is substituted, and the comma is left for the
// separator loop to consume normally.
func TestListGrammarExtraCommaRecoveredByInsertion(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.extra_comma", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), punct(tComma, ","), punct(tComma, ","), numTok(2), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.list)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, MissingToken, errs)
	rtest.Expect(t, len(items) == 3 && items[0] == 1 && items[1] == 0 && items[2] == 2, []int{1, 0, 2}, items)
}

// A stray token that is neither FIRST(item) nor in item's FOLLOW set (so
// insertion cannot apply) still falls back to deletion when the token after
// it is the one actually wanted.
func TestListGrammarStrayTokenRecoveredByDeletion(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.stray_token", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), punct(tComma, ","), punct(tBang, "!"), numTok(2), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.list)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, UnexpectedToken, errs)
	rtest.Expect(t, len(items) == 2 && items[0] == 1 && items[1] == 2, []int{1, 2}, items)
}

// repGrammar exercises Many and AtLeastOne directly (as opposed to
// listGrammar's AtLeastOneSep), since those are the two primitives
// recoverRepetition actually guards.
type repGrammar struct {
	BaseParser
	many       func() []int
	atLeastOne func() []int
}

func newRepGrammar(t *testing.T, className string, cfg Config) *repGrammar {
	g := &repGrammar{}
	g.many = Rule(&g.BaseParser, "many", g.manyBody)
	g.atLeastOne = Rule(&g.BaseParser, "atLeastOne", g.atLeastOneBody)

	cfg.MaxLookahead = 1
	if err := g.Init(className, "many", []RuleDef{
		DefineRule("many", g.many),
		DefineRule("atLeastOne", g.atLeastOne),
	}, cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return g
}

// many = "(" { NUMBER } ")" .
func (g *repGrammar) manyBody() []int {
	Consume(&g.BaseParser, 1, tLParen)
	var items []int
	Many(&g.BaseParser, 1, func() {
		tok := Consume(&g.BaseParser, 2, tNumber)
		if tok != nil {
			n, _ := strconv.Atoi(tok.Text())
			items = append(items, n)
		}
	})
	Consume(&g.BaseParser, 3, tRParen)
	return items
}

// atLeastOne = "(" NUMBER { NUMBER } ")" .
func (g *repGrammar) atLeastOneBody() []int {
	Consume(&g.BaseParser, 1, tLParen)
	var items []int
	AtLeastOne(&g.BaseParser, 1, func() {
		tok := Consume(&g.BaseParser, 2, tNumber)
		if tok != nil {
			n, _ := strconv.Atoi(tok.Text())
			items = append(items, n)
		}
	})
	Consume(&g.BaseParser, 3, tRParen)
	return items
}

func TestManyRecoversFromStrayTokenByDeletion(t *testing.T) {
	g := newRepGrammar(t, "gllk_test.rep.many_deletion", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), numTok(2), punct(tBang, "!"), numTok(3), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.many)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, UnexpectedToken, errs)
	rtest.Expect(t, len(items) == 3 && items[0] == 1 && items[1] == 2 && items[2] == 3, []int{1, 2, 3}, items)
}

// Two consecutive stray tokens inside the repetition's body must both be
// skipped before body resumes on the next legitimate NUMBER — a recovery
// bounded to a single token would give up after the first "!" and abandon
// the trailing "3" to a less targeted recovery tier instead.
func TestManyRecoversFromTwoConsecutiveStrayTokens(t *testing.T) {
	g := newRepGrammar(t, "gllk_test.rep.many_double_deletion", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), numTok(2), punct(tBang, "!"), punct(tBang, "!"), numTok(3), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.many)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, UnexpectedToken, errs)
	rtest.Expect(t, len(items) == 3 && items[0] == 1 && items[1] == 2 && items[2] == 3, []int{1, 2, 3}, items)
}

func TestManyStopsCleanlyAtFollowToken(t *testing.T) {
	g := newRepGrammar(t, "gllk_test.rep.many_clean", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), numTok(1), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.many)
	rtest.ExpectInt(t, 0, len(errs))
	rtest.Expect(t, len(items) == 1 && items[0] == 1, []int{1}, items)
}

func TestAtLeastOneRaisesEarlyExitOnEmptyMatch(t *testing.T) {
	g := newRepGrammar(t, "gllk_test.rep.early_exit", Config{RecoveryEnabled: true})
	g.SetSource(fakeSource([]token.Token{
		punct(tLParen, "("), punct(tRParen, ")"),
	}))

	items, errs := Parse(&g.BaseParser, g.atLeastOne)
	rtest.ExpectInt(t, 1, len(errs))
	rtest.ExpectRecognitionErrorKind(t, EarlyExit, errs)
	rtest.Expect(t, len(items) == 0, 0, len(items))
}

func TestBacktrackRestoresStateOnFailure(t *testing.T) {
	g := newListGrammar(t, "gllk_test.list.backtrack", Config{RecoveryEnabled: false})
	g.SetSource(fakeSource([]token.Token{numTok(1)}))

	before := g.LA(1)
	_, ok := Backtrack(&g.BaseParser, func() token.Token {
		return Consume(&g.BaseParser, 1, tLParen)
	})
	rtest.ExpectBool(t, false, ok)
	after := g.LA(1)
	rtest.Expect(t, before == after, before, after)
}
