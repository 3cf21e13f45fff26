package automaton

import "fmt"

// StateID is an opaque NFA state identifier, unique within one Nfa.
type StateID int

// Edge is a transition to Target, either labeled with a symbol or the
// epsilon sentinel.
type Edge struct {
	Symbol rune
	Target StateID
}

// IsEpsilon reports whether e is an epsilon transition.
func (e Edge) IsEpsilon() bool { return e.Symbol == epsilon }

// Nfa is a nondeterministic finite automaton with exactly one accept
// state (§3.2). Transitions is a multi-map from state to its outgoing
// edges.
type Nfa struct {
	Alphabet    Alphabet
	Start       StateID
	Accept      StateID
	Transitions map[StateID][]Edge
	NumStates   int
}

// EdgesFrom returns the outgoing edges of state s in insertion order.
func (n *Nfa) EdgesFrom(s StateID) []Edge { return n.Transitions[s] }

// fragment is a partial machine on the Thompson working stack: a
// start/accept pair of states already registered in the shared
// transition table.
type fragment struct {
	start, accept StateID
}

// thompsonBuilder owns the monotonically increasing state counter and
// the single shared transition table that every elementary machine
// contributes edges into.
type thompsonBuilder struct {
	alphabet Alphabet
	trans    map[StateID][]Edge
	next     StateID
}

func newThompsonBuilder(alphabet Alphabet) *thompsonBuilder {
	return &thompsonBuilder{alphabet: alphabet, trans: map[StateID][]Edge{}}
}

func (b *thompsonBuilder) freshState() StateID {
	id := b.next
	b.next++
	return id
}

// addEdge inserts s --symbol--> target, enforcing the Thompson
// invariant: at most one outgoing non-epsilon transition, or at most two
// outgoing epsilon transitions, never a mixture (§3.2, §4.2).
func (b *thompsonBuilder) addEdge(s StateID, symbol rune, target StateID) error {
	edges := b.trans[s]
	var epsCount, nonEpsCount int
	for _, e := range edges {
		if e.IsEpsilon() {
			epsCount++
		} else {
			nonEpsCount++
		}
	}
	if symbol == epsilon {
		if nonEpsCount > 0 || epsCount >= 2 {
			return fmt.Errorf("%w: state %d already has a non-epsilon edge or two epsilon edges", ErrThompsonInvariantViolated, s)
		}
	} else {
		if nonEpsCount >= 1 || epsCount > 0 {
			return fmt.Errorf("%w: state %d already has an outgoing edge", ErrThompsonInvariantViolated, s)
		}
	}
	b.trans[s] = append(edges, Edge{Symbol: symbol, Target: target})
	return nil
}

// symbolMachine builds the elementary Symbol(c) machine: two fresh
// states s, f with a single s --c--> f transition.
func (b *thompsonBuilder) symbolMachine(c rune) (fragment, error) {
	s, f := b.freshState(), b.freshState()
	if err := b.addEdge(s, c, f); err != nil {
		return fragment{}, err
	}
	return fragment{start: s, accept: f}, nil
}

// kleeneStar builds the elementary KleeneStar(A) machine.
func (b *thompsonBuilder) kleeneStar(a fragment) (fragment, error) {
	s, f := b.freshState(), b.freshState()
	edges := []struct{ from, to StateID }{
		{s, f}, {s, a.start}, {a.accept, f}, {a.accept, a.start},
	}
	for _, e := range edges {
		if err := b.addEdge(e.from, epsilon, e.to); err != nil {
			return fragment{}, err
		}
	}
	return fragment{start: s, accept: f}, nil
}

// union builds the elementary Union(A,B) machine.
func (b *thompsonBuilder) union(a, c fragment) (fragment, error) {
	s, f := b.freshState(), b.freshState()
	edges := []struct{ from, to StateID }{
		{s, a.start}, {s, c.start}, {a.accept, f}, {c.accept, f},
	}
	for _, e := range edges {
		if err := b.addEdge(e.from, epsilon, e.to); err != nil {
			return fragment{}, err
		}
	}
	return fragment{start: s, accept: f}, nil
}

// concatenation builds the elementary Concatenation(A,B) machine: no
// fresh states, a single A.accept --ε--> B.start transition.
func (b *thompsonBuilder) concatenation(a, c fragment) (fragment, error) {
	if err := b.addEdge(a.accept, epsilon, c.start); err != nil {
		return fragment{}, err
	}
	return fragment{start: a.start, accept: c.accept}, nil
}

// BuildNfa walks tree in post-order and assembles an Nfa from the pool
// of elementary Thompson machines (§4.2). The traversal uses the
// two-stack idiom described in the design notes: operands of a binary
// operator must be popped right-then-left off the working stack to
// preserve language semantics, which the postOrder helper's ordering
// already guarantees.
func BuildNfa(tree Node, alphabet Alphabet) (*Nfa, error) {
	if tree == nil {
		return nil, fmt.Errorf("%w: empty syntax tree", ErrMalformedExpression)
	}
	order := postOrder(tree)
	b := newThompsonBuilder(alphabet)

	var work []fragment
	pop := func() (fragment, error) {
		if len(work) == 0 {
			return fragment{}, fmt.Errorf("%w: working stack underflow", ErrMalformedExpression)
		}
		top := work[len(work)-1]
		work = work[:len(work)-1]
		return top, nil
	}

	for _, n := range order {
		switch tn := n.(type) {
		case *LeafNode:
			f, err := b.symbolMachine(tn.Symbol)
			if err != nil {
				return nil, err
			}
			work = append(work, f)
		case *StarNode:
			a, err := pop()
			if err != nil {
				return nil, err
			}
			f, err := b.kleeneStar(a)
			if err != nil {
				return nil, err
			}
			work = append(work, f)
		case *BinaryNode:
			right, err := pop()
			if err != nil {
				return nil, err
			}
			left, err := pop()
			if err != nil {
				return nil, err
			}
			var f fragment
			switch tn.Op {
			case Concat:
				f, err = b.concatenation(left, right)
			case Union:
				f, err = b.union(left, right)
			default:
				err = fmt.Errorf("%w: unknown binary operator", ErrMalformedExpression)
			}
			if err != nil {
				return nil, err
			}
			work = append(work, f)
		default:
			return nil, fmt.Errorf("%w: unrecognized node type %T", ErrMalformedExpression, n)
		}
	}

	if len(work) != 1 {
		return nil, fmt.Errorf("%w: working stack ended with %d fragments", ErrMalformedExpression, len(work))
	}

	final := work[0]
	return &Nfa{
		Alphabet:    alphabet,
		Start:       final.start,
		Accept:      final.accept,
		Transitions: b.trans,
		NumStates:   int(b.next),
	}, nil
}

// postOrder flattens tree into post-order using the classic two-stack
// technique: push root; repeatedly pop a node onto the output stack and
// push its children (left before right) onto the work stack; reverse the
// output stack at the end. Because children are pushed left-then-right,
// they come off output in right-then-left order relative to their
// parent when popped as operands (see BuildNfa).
func postOrder(root Node) []Node {
	work := []Node{root}
	var out []Node
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		out = append(out, n)
		switch tn := n.(type) {
		case *StarNode:
			work = append(work, tn.Child)
		case *BinaryNode:
			work = append(work, tn.Left, tn.Right)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
