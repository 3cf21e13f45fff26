package automaton

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadRegexFile reads the two-line regex input file described in §6:
// line 1 is the whitespace-separated alphabet, line 2 is the
// fully-parenthesized prefix regex.
func LoadRegexFile(path string) (Alphabet, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	defer f.Close()

	lines, err := readLines(f, 2)
	if err != nil {
		return nil, "", err
	}
	alphabet := NewAlphabet([]rune(strings.Join(strings.Fields(lines[0]), ""))...)
	return alphabet, lines[1], nil
}

// LoadNfaFile reads the NFA input file described in §6: line 1 is the
// alphabet, line 2 is the accept state id, and the remaining lines are
// transitions in row-major order — for each state, one line per
// alphabet symbol (sorted) followed by one line for epsilon, each
// listing whitespace-separated target state ids (an empty line means no
// transition).
func LoadNfaFile(path string) (*Nfa, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing alphabet line", ErrMalformedInput)
	}
	alphabet := NewAlphabet([]rune(strings.Join(strings.Fields(scanner.Text()), ""))...)
	symbols := alphabet.Symbols()

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: missing accept state line", ErrMalformedInput)
	}
	accept, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, fmt.Errorf("%w: accept state %q is not an integer", ErrMalformedInput, scanner.Text())
	}

	rowsPerState := len(symbols) + 1 // one row per symbol, plus the epsilon row
	trans := map[StateID][]Edge{}
	state := 0
	col := 0
	for scanner.Scan() {
		targets := strings.Fields(scanner.Text())
		symbol := epsilon
		if col < len(symbols) {
			symbol = symbols[col]
		}
		for _, tok := range targets {
			target, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: transition target %q is not an integer", ErrMalformedInput, tok)
			}
			trans[StateID(state)] = append(trans[StateID(state)], Edge{Symbol: symbol, Target: StateID(target)})
		}
		col++
		if col == rowsPerState {
			col = 0
			state++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if col != 0 {
		return nil, fmt.Errorf("%w: transition table has an incomplete final state", ErrMalformedInput)
	}
	if accept < 0 || accept >= state {
		return nil, fmt.Errorf("%w: accept state %d, table has %d state(s)", ErrStateIndexOutOfRange, accept, state)
	}
	for from, edges := range trans {
		for _, e := range edges {
			if e.Target < 0 || int(e.Target) >= state {
				return nil, fmt.Errorf("%w: state %d targets %d, table has %d state(s)", ErrStateIndexOutOfRange, from, e.Target, state)
			}
		}
	}

	return &Nfa{
		Alphabet:    alphabet,
		Start:       0,
		Accept:      StateID(accept),
		Transitions: trans,
		NumStates:   state,
	}, nil
}

func readLines(f *os.File, n int) ([]string, error) {
	scanner := bufio.NewScanner(f)
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("%w: expected %d lines, got %d", ErrMalformedInput, n, i)
		}
		lines = append(lines, scanner.Text())
	}
	return lines, nil
}
