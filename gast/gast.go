// Package gast implements the grammar AST (GAST): the reified tree of
// grammar productions spec §3 defines, plus the clone and visitor
// operations spec §4.1 asks for. It is a tagged sum type realized as one
// struct with a Kind tag, in the spirit of spec §9's design note to avoid
// an inheritance-heavy node hierarchy; children are exposed uniformly
// through Definition except for the two leaf kinds (Terminal, NonTerminal),
// mirroring how the teacher's tree.Node exposes FirstChild/Next regardless
// of what kind of syntax node it wraps.
package gast

import (
	"strconv"

	"github.com/ava12/gllk/token"
)

// Kind tags a GAST node's grammar-production variant.
type Kind int

const (
	KindRule Kind = iota + 1
	KindFlat
	KindNonTerminal
	KindTerminal
	KindOption
	KindRepetition
	KindRepetitionMandatory
	KindRepetitionWithSeparator
	KindRepetitionMandatoryWithSeparator
	KindAlternation
)

func (k Kind) String() string {
	switch k {
	case KindRule:
		return "Rule"
	case KindFlat:
		return "Flat"
	case KindNonTerminal:
		return "NonTerminal"
	case KindTerminal:
		return "Terminal"
	case KindOption:
		return "Option"
	case KindRepetition:
		return "Repetition"
	case KindRepetitionMandatory:
		return "RepetitionMandatory"
	case KindRepetitionWithSeparator:
		return "RepetitionWithSeparator"
	case KindRepetitionMandatoryWithSeparator:
		return "RepetitionMandatoryWithSeparator"
	case KindAlternation:
		return "Alternation"
	default:
		return "Unknown"
	}
}

// DSLKind identifies which grammar-combinator primitive produced an
// occurrence-bearing node. Zero means "not produced by an occurrence-baked
// primitive" (Rule and Flat nodes; every Terminal carries Consume).
type DSLKind int

const (
	Consume DSLKind = iota + 1
	SubRule
	OptionDSL
	Many
	ManySep
	AtLeastOne
	AtLeastOneSep
	Or
)

func (k DSLKind) String() string {
	switch k {
	case Consume:
		return "CONSUME"
	case SubRule:
		return "SUBRULE"
	case OptionDSL:
		return "OPTION"
	case Many:
		return "MANY"
	case ManySep:
		return "MANY_SEP"
	case AtLeastOne:
		return "AT_LEAST_ONE"
	case AtLeastOneSep:
		return "AT_LEAST_ONE_SEP"
	case Or:
		return "OR"
	default:
		return "NONE"
	}
}

// Node is a single GAST node. Which fields are meaningful depends on Kind:
//
//	Rule:                          Name, Definition, OriginalText
//	Flat:                          Definition (and, as an Alternation child, Predicate)
//	NonTerminal:                   Name, Occurrence, ResolvedRule
//	Terminal:                      TokenType, Occurrence
//	Option/Repetition*:            Definition, Occurrence, DSL (and Separator for the *WithSeparator kinds)
//	Alternation:                   Definition (each child is a Flat), Occurrence
type Node struct {
	Kind          Kind
	Name          string
	Definition    []*Node
	OriginalText  string
	Occurrence    int
	DSL           DSLKind
	TokenType     token.Type
	Separator     token.Type
	ResolvedRule  *Node
	Predicate     func() bool
}

// NewRule creates an empty Rule node.
func NewRule(name, originalText string) *Node {
	return &Node{Kind: KindRule, Name: name, OriginalText: originalText}
}

// NewFlat creates an empty concatenation node.
func NewFlat() *Node {
	return &Node{Kind: KindFlat}
}

// NewTerminal creates a Terminal leaf referencing tt, produced by a CONSUME
// at the given occurrence.
func NewTerminal(occ int, tt token.Type) *Node {
	return &Node{Kind: KindTerminal, Occurrence: occ, DSL: Consume, TokenType: tt}
}

// NewNonTerminal creates an unresolved NonTerminal leaf naming a rule,
// produced by a SUBRULE at the given occurrence.
func NewNonTerminal(occ int, name string) *Node {
	return &Node{Kind: KindNonTerminal, Name: name, Occurrence: occ, DSL: SubRule}
}

// NewOption creates an empty OPTION([...]) node at the given occurrence.
func NewOption(occ int) *Node {
	return &Node{Kind: KindOption, Occurrence: occ, DSL: OptionDSL}
}

// NewRepetition creates an empty MANY({...}, 0..n) node.
func NewRepetition(occ int) *Node {
	return &Node{Kind: KindRepetition, Occurrence: occ, DSL: Many}
}

// NewRepetitionMandatory creates an empty AT_LEAST_ONE node (1..n).
func NewRepetitionMandatory(occ int) *Node {
	return &Node{Kind: KindRepetitionMandatory, Occurrence: occ, DSL: AtLeastOne}
}

// NewRepetitionWithSeparator creates an empty MANY_SEP node.
func NewRepetitionWithSeparator(occ int, sep token.Type) *Node {
	return &Node{Kind: KindRepetitionWithSeparator, Occurrence: occ, DSL: ManySep, Separator: sep}
}

// NewRepetitionMandatoryWithSeparator creates an empty AT_LEAST_ONE_SEP node.
func NewRepetitionMandatoryWithSeparator(occ int, sep token.Type) *Node {
	return &Node{Kind: KindRepetitionMandatoryWithSeparator, Occurrence: occ, DSL: AtLeastOneSep, Separator: sep}
}

// NewAlternation creates an empty OR node; each of its Definition children
// is expected to be a Flat representing one alternative.
func NewAlternation(occ int) *Node {
	return &Node{Kind: KindAlternation, Occurrence: occ, DSL: Or}
}

// IsLeaf reports whether n has no children of its own (Terminal and
// NonTerminal are the only leaves; NonTerminal's target Rule is a
// back-reference, not a child, so walking never descends into it).
func (n *Node) IsLeaf() bool {
	return n.Kind == KindTerminal || n.Kind == KindNonTerminal
}

// Walk performs a pre-order depth-first traversal of n and its descendants,
// calling visit on each node. If visit returns false, that node's children
// are skipped. Walk never crosses a NonTerminal into its ResolvedRule —
// each rule's tree is self-contained, matching spec §4.2's "the sole
// purpose of reporting" boundary for unresolved references.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, child := range n.Definition {
		Walk(child, visit)
	}
}

// Clone deep-copies n, preserving occurrence indices, DSL kinds and
// separator token types. NonTerminal nodes are cloned with their name only;
// ResolvedRule is left nil for the resolver to rebind on the clone, exactly
// as spec §4.1 asks ("NonTerminal clones copy the name only").
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	clone := &Node{
		Kind:         n.Kind,
		Name:         n.Name,
		OriginalText: n.OriginalText,
		Occurrence:   n.Occurrence,
		DSL:          n.DSL,
		TokenType:    n.TokenType,
		Separator:    n.Separator,
		Predicate:    n.Predicate,
	}
	if len(n.Definition) > 0 {
		clone.Definition = make([]*Node, len(n.Definition))
		for i, child := range n.Definition {
			clone.Definition[i] = Clone(child)
		}
	}
	return clone
}

// CloneRules deep-copies a rule-name-to-Rule map, the shape the per-class
// cache stores (spec §3, "Rule nodes are owned by the per-class cache").
func CloneRules(rules map[string]*Node) map[string]*Node {
	out := make(map[string]*Node, len(rules))
	for name, r := range rules {
		out[name] = Clone(r)
	}
	return out
}

// OccurrenceKey formats the "<KIND><occurrence>IN<ruleName>" cache key
// spec §4.4/§4.5 specify for FOLLOW/lookahead tables.
func OccurrenceKey(kind DSLKind, occurrence int, ruleName string) string {
	return kind.String() + strconv.Itoa(occurrence) + "IN" + ruleName
}
