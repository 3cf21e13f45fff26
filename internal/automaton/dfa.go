package automaton

import (
	"sort"
	"strconv"
	"strings"
)

// DfaState is an ordered, deduplicated set of NFA state ids (a subset).
// Two DfaStates are equal iff their underlying sets are equal (§3.3).
type DfaState struct {
	NfaStates []StateID
}

// Dfa is a deterministic finite automaton produced by subset
// construction. States are indexed in BFS-discovery order; Transitions
// is a total map from (state index, symbol) to state index, defined
// only where reachable.
type Dfa struct {
	Alphabet    Alphabet
	States      []DfaState
	Start       int
	Accept      []int
	Transitions map[int]map[rune]int
}

// IsAccepting reports whether state index i is one of Dfa's accept
// states.
func (d *Dfa) IsAccepting(i int) bool {
	for _, a := range d.Accept {
		if a == i {
			return true
		}
	}
	return false
}

// epsilonClosure computes all NFA states reachable from seed using only
// epsilon transitions, via BFS over a queue (§4.3). It is idempotent:
// closing an already-closed set returns the same set.
func epsilonClosure(n *Nfa, seed []StateID) []StateID {
	visited := make(map[StateID]bool, len(seed))
	queue := make([]StateID, 0, len(seed))
	for _, s := range seed {
		if !visited[s] {
			visited[s] = true
			queue = append(queue, s)
		}
	}
	for i := 0; i < len(queue); i++ {
		for _, e := range n.Transitions[queue[i]] {
			if e.IsEpsilon() && !visited[e.Target] {
				visited[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })
	return queue
}

// move computes the set of states reachable from any state in states
// via a single symbol transition (§4.3).
func move(n *Nfa, states []StateID, symbol rune) []StateID {
	seen := make(map[StateID]bool)
	var out []StateID
	for _, s := range states {
		for _, e := range n.Transitions[s] {
			if !e.IsEpsilon() && e.Symbol == symbol && !seen[e.Target] {
				seen[e.Target] = true
				out = append(out, e.Target)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func canonicalKey(states []StateID) string {
	var b strings.Builder
	for i, s := range states {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(s)))
	}
	return b.String()
}

func containsState(states []StateID, target StateID) bool {
	i := sort.Search(len(states), func(i int) bool { return states[i] >= target })
	return i < len(states) && states[i] == target
}

// Determinize runs the subset construction over n, producing a Dfa whose
// states are epsilon-closures of NFA state sets (§4.3). Determinism of
// output layout falls out of BFS discovery order, which is stable given
// a stable iteration order over n's alphabet and transitions.
func Determinize(n *Nfa) *Dfa {
	d := &Dfa{Alphabet: n.Alphabet, Transitions: map[int]map[rune]int{}}
	indexOf := map[string]int{}

	addState := func(states []StateID) int {
		key := canonicalKey(states)
		idx := len(d.States)
		indexOf[key] = idx
		d.States = append(d.States, DfaState{NfaStates: states})
		if containsState(states, n.Accept) {
			d.Accept = append(d.Accept, idx)
		}
		return idx
	}

	startSet := epsilonClosure(n, []StateID{n.Start})
	d.Start = addState(startSet)

	queue := []int{d.Start}
	symbols := n.Alphabet.Symbols()
	for len(queue) > 0 {
		qi := queue[0]
		queue = queue[1:]
		qSet := d.States[qi].NfaStates

		for _, sym := range symbols {
			moved := move(n, qSet, sym)
			if len(moved) == 0 {
				continue
			}
			closure := epsilonClosure(n, moved)
			key := canonicalKey(closure)
			targetIdx, exists := indexOf[key]
			if !exists {
				targetIdx = addState(closure)
				queue = append(queue, targetIdx)
			}
			if d.Transitions[qi] == nil {
				d.Transitions[qi] = map[rune]int{}
			}
			d.Transitions[qi][sym] = targetIdx
		}
	}
	return d
}
