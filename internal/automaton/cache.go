package automaton

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion guards against decoding a snapshot written by an
// incompatible version of this package, matching the schema-version
// idiom of a disk cache DTO.
const cacheSchemaVersion uint16 = 1

// dfaSnapshot is the on-disk representation of a Dfa: a flat DTO with no
// rune-keyed maps, so it round-trips through msgpack without relying on
// reflection over exotic key types.
type dfaSnapshot struct {
	Schema      uint16
	Alphabet    []rune
	States      [][]int
	Start       int
	Accept      []int
	Transitions []transitionEntry
}

type transitionEntry struct {
	From   int
	Symbol rune
	To     int
}

// EncodeDfaCache writes a msgpack-encoded snapshot of d to w. This is
// the optional binary cache format from the DOMAIN STACK expansion,
// letting a caller skip recomputing a Dfa it has already determinized
// once.
func EncodeDfaCache(w io.Writer, d *Dfa) error {
	snap := dfaSnapshot{
		Schema:   cacheSchemaVersion,
		Alphabet: d.Alphabet.Symbols(),
		Start:    d.Start,
		Accept:   append([]int(nil), d.Accept...),
	}
	snap.States = make([][]int, len(d.States))
	for i, st := range d.States {
		row := make([]int, len(st.NfaStates))
		for j, s := range st.NfaStates {
			row[j] = int(s)
		}
		snap.States[i] = row
	}
	for s := range d.States {
		targets, ok := d.Transitions[s]
		if !ok {
			continue
		}
		for _, sym := range snap.Alphabet {
			if t, ok := targets[sym]; ok {
				snap.Transitions = append(snap.Transitions, transitionEntry{From: s, Symbol: sym, To: t})
			}
		}
	}
	return msgpack.NewEncoder(w).Encode(&snap)
}

// DecodeDfaCache reads a msgpack-encoded snapshot from r, reconstructing
// a Dfa. It fails if the snapshot's schema version does not match the
// version this build writes.
func DecodeDfaCache(r io.Reader) (*Dfa, error) {
	var snap dfaSnapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode dfa cache: %w", err)
	}
	if snap.Schema != cacheSchemaVersion {
		return nil, fmt.Errorf("dfa cache schema mismatch: got %d, want %d", snap.Schema, cacheSchemaVersion)
	}

	d := &Dfa{
		Alphabet:    NewAlphabet(snap.Alphabet...),
		Start:       snap.Start,
		Accept:      snap.Accept,
		Transitions: map[int]map[rune]int{},
	}
	d.States = make([]DfaState, len(snap.States))
	for i, row := range snap.States {
		states := make([]StateID, len(row))
		for j, s := range row {
			states[j] = StateID(s)
		}
		d.States[i] = DfaState{NfaStates: states}
	}
	for _, t := range snap.Transitions {
		if d.Transitions[t.From] == nil {
			d.Transitions[t.From] = map[rune]int{}
		}
		d.Transitions[t.From][t.Symbol] = t.To
	}
	return d, nil
}
