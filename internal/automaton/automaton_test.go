package automaton

import (
	"errors"
	"os"
	"sort"
	"strings"
	"testing"
)

func mustAst(t *testing.T, alphabet Alphabet, text string) Node {
	t.Helper()
	n, err := BuildAst(alphabet, text)
	if err != nil {
		t.Fatalf("BuildAst(%q): unexpected error: %v", text, err)
	}
	return n
}

func TestBuildAstCases(t *testing.T) {
	ab := NewAlphabet('a', 'b')

	cases := []struct {
		name string
		text string
	}{
		{"bare leaf", "a"},
		{"parenthesized leaf", "(a)"},
		{"concat", ".(a)(b)"},
		{"union", "|(a)(b)"},
		{"star", "*(a)"},
		{"nested", ".(a)(*(|(a)(b)))"},
		{"whitespace insignificant", "  . (a) (b) "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := BuildAst(ab, c.text); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildAstErrors(t *testing.T) {
	ab := NewAlphabet('a', 'b')

	cases := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"unknown symbol", "c", ErrUnknownSymbol},
		{"unknown operator", "?(a)(b)", ErrUnknownOperator},
		{"unbalanced parens", ".(a)(b", ErrMalformed},
		{"malformed short string", "axb", ErrMalformed},
		{"missing second operand", ".(a)", ErrMalformed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := BuildAst(ab, c.text)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("got error %v, want wrapping %v", err, c.wantErr)
			}
		})
	}
}

// TestThompsonConcatScenario checks end-to-end scenario 1 from §8: the
// regex .(a)(b) over {a,b} produces a 4-state NFA with the exact
// transitions the spec names.
func TestThompsonConcatScenario(t *testing.T) {
	ab := NewAlphabet('a', 'b')
	tree := mustAst(t, ab, ".(a)(b)")

	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	if n.NumStates != 4 {
		t.Fatalf("NumStates = %d, want 4", n.NumStates)
	}
	if n.Start != 0 || n.Accept != 3 {
		t.Fatalf("start/accept = %d/%d, want 0/3", n.Start, n.Accept)
	}
	assertEdge(t, n, 0, 'a', 1)
	assertEdge(t, n, 1, epsilon, 2)
	assertEdge(t, n, 2, 'b', 3)

	d := Determinize(n)
	if !acceptsString(d, "ab") {
		t.Fatalf("DFA should accept \"ab\"")
	}
	for _, s := range []string{"", "a", "b", "abc", "ba"} {
		if acceptsString(d, s) {
			t.Fatalf("DFA should reject %q", s)
		}
	}
}

// TestThompsonStarScenario checks scenario 2: *(a) over {a} accepts
// ε, a, aa, aaa, ...
func TestThompsonStarScenario(t *testing.T) {
	ab := NewAlphabet('a')
	tree := mustAst(t, ab, "*(a)")
	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	d := Determinize(n)
	for _, s := range []string{"", "a", "aa", "aaa", "aaaa"} {
		if !acceptsString(d, s) {
			t.Fatalf("DFA should accept %q", s)
		}
	}
	if acceptsString(d, "b") {
		t.Fatalf("DFA should reject \"b\"")
	}
}

// TestThompsonUnionScenario checks scenario 3: |(a)(b) accepts exactly
// "a" or "b".
func TestThompsonUnionScenario(t *testing.T) {
	ab := NewAlphabet('a', 'b')
	tree := mustAst(t, ab, "|(a)(b)")
	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	d := Determinize(n)
	for _, s := range []string{"a", "b"} {
		if !acceptsString(d, s) {
			t.Fatalf("DFA should accept %q", s)
		}
	}
	for _, s := range []string{"", "ab", "ba", "aa"} {
		if acceptsString(d, s) {
			t.Fatalf("DFA should reject %q", s)
		}
	}
}

func TestDeterminizeIsDeterministic(t *testing.T) {
	ab := NewAlphabet('a', 'b')
	tree := mustAst(t, ab, ".(a)(*(|(a)(b)))")
	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	d := Determinize(n)
	for state, targets := range d.Transitions {
		seen := map[rune]bool{}
		for sym := range targets {
			if seen[sym] {
				t.Fatalf("state %d has more than one transition for symbol %q", state, sym)
			}
			seen[sym] = true
		}
	}
}

func TestEpsilonClosureIdempotent(t *testing.T) {
	ab := NewAlphabet('a')
	tree := mustAst(t, ab, "*(a)")
	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	once := epsilonClosure(n, []StateID{n.Start})
	twice := epsilonClosure(n, once)
	if !equalStateSets(once, twice) {
		t.Fatalf("epsilon-closure not idempotent: %v vs %v", once, twice)
	}
}

func TestThompsonInvariantViolationSurfaces(t *testing.T) {
	b := newThompsonBuilder(NewAlphabet('a'))
	s, f := b.freshState(), b.freshState()
	if err := b.addEdge(s, 'a', f); err != nil {
		t.Fatalf("unexpected error on first edge: %v", err)
	}
	if err := b.addEdge(s, 'a', f); !errors.Is(err, ErrThompsonInvariantViolated) {
		t.Fatalf("expected ErrThompsonInvariantViolated, got %v", err)
	}
}

// TestLoadNfaFileScenario4 checks scenario 4 from §8: an NFA input file
// with a mixed non-epsilon and epsilon transition out of state 0 (which
// a Thompson-built NFA would never contain, but a hand-authored input
// file may) still determinizes correctly: the start subset {0,1} is
// accepting, so the empty string is accepted.
func TestLoadNfaFileScenario4(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/n.nfa"
	// alphabet "a", accept state 1; state 0: symbol-a row -> 1, epsilon
	// row -> 1; state 1: both rows empty.
	content := "a\n1\n1\n1\n\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write nfa file: %v", err)
	}

	n, err := LoadNfaFile(path)
	if err != nil {
		t.Fatalf("LoadNfaFile: %v", err)
	}
	d := Determinize(n)
	if !d.IsAccepting(d.Start) {
		t.Fatalf("start state should be accepting")
	}
	if !acceptsString(d, "") {
		t.Fatalf("DFA should accept the empty string")
	}
}

func TestSerializeDfaTextEmitsEveryPairExplicitly(t *testing.T) {
	ab := NewAlphabet('a', 'b')
	tree := mustAst(t, ab, ".(a)(b)")
	n, err := BuildNfa(tree, ab)
	if err != nil {
		t.Fatalf("BuildNfa: %v", err)
	}
	d := Determinize(n)
	text := SerializeDfaText(d)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	wantLines := len(d.States) + 1 + len(d.States)*len(ab.Symbols())
	if len(lines) != wantLines {
		t.Fatalf("got %d lines, want %d (one per state, one for accept indices, one per state-symbol pair)", len(lines), wantLines)
	}
}

func assertEdge(t *testing.T, n *Nfa, from StateID, symbol rune, to StateID) {
	t.Helper()
	for _, e := range n.Transitions[from] {
		if e.Symbol == symbol && e.Target == to {
			return
		}
	}
	t.Fatalf("expected edge %d --%q--> %d not found", from, string(symbol), to)
}

func equalStateSets(a, b []StateID) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := append([]StateID(nil), a...), append([]StateID(nil), b...)
	sort.Slice(sa, func(i, j int) bool { return sa[i] < sa[j] })
	sort.Slice(sb, func(i, j int) bool { return sb[i] < sb[j] })
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func acceptsString(d *Dfa, s string) bool {
	state := d.Start
	for _, r := range s {
		targets, ok := d.Transitions[state]
		if !ok {
			return false
		}
		next, ok := targets[r]
		if !ok {
			return false
		}
		state = next
	}
	return d.IsAccepting(state)
}
