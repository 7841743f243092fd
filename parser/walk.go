// walk.go implements spec §4.9's grammar-walker: the small piece of
// machinery in-repetition recovery needs to name one concrete expected token
// in the error it reports, rather than just the open-ended "something in FOLLOW" a bare set
// membership check gives you. It is grounded the same way recoverConsume is
// on the teacher's own "peek past the bad token" recovery, generalized from
// a single expected terminal to a whole FOLLOW set by picking a
// deterministic representative out of it.
package parser

import (
	"sort"

	"github.com/ava12/gllk/internal/tokenset"
	"github.com/ava12/gllk/token"
)

// nextTerminalAfter picks one concrete token type out of follow to report
// (no token is inserted) when a repetition construct exits on a token that is neither its
// body's FIRST set nor (as far as a single-token check can tell) its own
// FOLLOW set. Ties are broken by smallest token.Type value so the choice is
// stable across runs of the same grammar.
func nextTerminalAfter(follow *tokenset.Set) (token.Type, bool) {
	if follow == nil || follow.IsEmpty() {
		return 0, false
	}
	types := follow.ToSlice()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types[0], true
}
