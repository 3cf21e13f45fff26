package automaton

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// epsilonGlyph is how the epsilon sentinel is rendered in human-facing
// output (Graphviz edge labels).
const epsilonGlyph = "ε"

// GraphOptions controls Graphviz rendering. RankDir defaults to "LR"
// (left-to-right) and RunID, when non-empty, is attached as a graph
// label for provenance (§3 DOMAIN STACK, run identifiers).
type GraphOptions struct {
	RankDir      string
	RunID        string
	EpsilonGlyph string
}

func (o GraphOptions) rankDir() string {
	if o.RankDir == "" {
		return "LR"
	}
	return o.RankDir
}

func (o GraphOptions) epsilonGlyph() string {
	if o.EpsilonGlyph == "" {
		return epsilonGlyph
	}
	return o.EpsilonGlyph
}

// SerializeNfaText renders n in the textual layout of §6: alphabet, then
// accept state, then per-state-per-symbol target lists, with a trailing
// epsilon row for each state.
func SerializeNfaText(n *Nfa) string {
	var b strings.Builder
	symbols := n.Alphabet.Symbols()

	writeSymbols(&b, symbols)
	fmt.Fprintf(&b, "%d\n", n.Accept)

	for s := StateID(0); int(s) < n.NumStates; s++ {
		for _, sym := range symbols {
			writeTargets(&b, targetsOf(n, s, sym))
		}
		writeTargets(&b, targetsOf(n, s, epsilon))
	}
	return b.String()
}

// SerializeDfaText renders d in the textual layout of §6: one line per
// state listing its NFA-subset members, one line of accept-state
// indices, then per-state-per-symbol the target index. Every
// (state, symbol) pair is iterated explicitly so a missing transition
// still emits an (empty) line — the original C++ writeOutputDFA's bug
// of skipping lines when the transitions map lacks a key is
// deliberately avoided.
func SerializeDfaText(d *Dfa) string {
	var b strings.Builder
	symbols := d.Alphabet.Symbols()

	for _, st := range d.States {
		parts := make([]string, len(st.NfaStates))
		for i, s := range st.NfaStates {
			parts[i] = strconv.Itoa(int(s))
		}
		b.WriteString(strings.Join(parts, " "))
		b.WriteByte('\n')
	}

	accept := make([]string, len(d.Accept))
	for i, a := range d.Accept {
		accept[i] = strconv.Itoa(a)
	}
	b.WriteString(strings.Join(accept, " "))
	b.WriteByte('\n')

	for s := range d.States {
		for _, sym := range symbols {
			if targets, ok := d.Transitions[s]; ok {
				if t, ok := targets[sym]; ok {
					fmt.Fprintf(&b, "%d\n", t)
					continue
				}
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeSymbols(b *strings.Builder, symbols []rune) {
	for i, s := range symbols {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(s)
	}
	b.WriteByte('\n')
}

func writeTargets(b *strings.Builder, targets []StateID) {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = strconv.Itoa(int(t))
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')
}

func targetsOf(n *Nfa, s StateID, symbol rune) []StateID {
	var out []StateID
	for _, e := range n.Transitions[s] {
		if (symbol == epsilon) == e.IsEpsilon() && (symbol == epsilon || e.Symbol == symbol) {
			out = append(out, e.Target)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GraphvizNfa renders n as a left-to-right directed graph description:
// circle nodes, the accept state doubly peripheried, edges labeled with
// their symbol (epsilon rendered as the Greek letter).
func GraphvizNfa(n *Nfa, opts GraphOptions) string {
	var b strings.Builder
	b.WriteString("digraph Automaton {\n")
	fmt.Fprintf(&b, "    rankdir=%s;\n", opts.rankDir())
	if opts.RunID != "" {
		fmt.Fprintf(&b, "    label=%q;\n", "run "+opts.RunID)
	}
	b.WriteString("    node [shape=circle];")
	for i := 0; i < n.NumStates; i++ {
		fmt.Fprintf(&b, " %d", i)
	}
	b.WriteString(";\n")
	fmt.Fprintf(&b, "    node [shape=doublecircle]; %d;\n", n.Accept)

	for s := StateID(0); int(s) < n.NumStates; s++ {
		for _, e := range n.Transitions[s] {
			label := string(e.Symbol)
			if e.IsEpsilon() {
				label = opts.epsilonGlyph()
			}
			fmt.Fprintf(&b, "    %d -> %d [label=%q];\n", s, e.Target, label)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// GraphvizDfa renders d in the same style as GraphvizNfa, over DFA
// states and symbol-only edges.
func GraphvizDfa(d *Dfa, opts GraphOptions) string {
	var b strings.Builder
	b.WriteString("digraph Automaton {\n")
	fmt.Fprintf(&b, "    rankdir=%s;\n", opts.rankDir())
	if opts.RunID != "" {
		fmt.Fprintf(&b, "    label=%q;\n", "run "+opts.RunID)
	}
	b.WriteString("    node [shape=circle];")
	for i := range d.States {
		fmt.Fprintf(&b, " %d", i)
	}
	b.WriteString(";\n")
	if len(d.Accept) > 0 {
		b.WriteString("    node [shape=doublecircle];")
		for _, a := range d.Accept {
			fmt.Fprintf(&b, " %d", a)
		}
		b.WriteString(";\n")
	}

	symbols := d.Alphabet.Symbols()
	for s := range d.States {
		targets, ok := d.Transitions[s]
		if !ok {
			continue
		}
		for _, sym := range symbols {
			if t, ok := targets[sym]; ok {
				fmt.Fprintf(&b, "    %d -> %d [label=%q];\n", s, t, string(sym))
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
