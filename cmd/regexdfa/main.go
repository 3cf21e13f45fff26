// Command regexdfa runs Pipeline A: it parses a prefix-form regex,
// builds its Thompson NFA, determinizes it into a DFA, and writes the
// textual, Graphviz, and (optionally) binary-cache artifacts described
// in §6. It follows the CLI shape surge's cmd/surge/main.go uses: one
// cobra root, subcommands for each mode, and the same set of
// cross-cutting flags registered on each subcommand.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Piltxi/kaltz/internal/automaton"
	"github.com/Piltxi/kaltz/internal/config"
	"github.com/Piltxi/kaltz/internal/diag"
	"github.com/Piltxi/kaltz/internal/store"
)

// errMissingArg is returned by exactlyOneArg so main can translate it
// to exit code -1, matching §6's "missing argument exits -1" contract
// (cobra's own usage-error path doesn't distinguish "too few" from
// "too many" the way that contract needs).
var errMissingArg = errors.New("missing required input-file argument")

func exactlyOneArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errMissingArg
	}
	if len(args) > 1 {
		return fmt.Errorf("%s takes exactly one input file, got %d", cmd.Name(), len(args))
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "regexdfa",
	Short: "Compile prefix-form regular expressions to NFAs and DFAs",
}

var compileCmd = &cobra.Command{
	Use:   "compile <input-file>",
	Short: "Parse a regex file, build its NFA, and determinize it into a DFA",
	Args:  exactlyOneArg,
	RunE:  runCompile,
}

var nfaCmd = &cobra.Command{
	Use:   "determinize <nfa-file>",
	Short: "Determinize a hand-authored NFA transition table into a DFA",
	Args:  exactlyOneArg,
	RunE:  runDeterminize,
}

func init() {
	for _, c := range []*cobra.Command{compileCmd, nfaCmd} {
		c.Flags().String("out-prefix", "", "path prefix for emitted artifacts (default: input file's path minus extension)")
		c.Flags().String("config", "", "path to a TOML config file")
		c.Flags().Bool("cache", false, "write a msgpack-encoded DFA cache alongside the textual output")
	}
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(nfaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errMissingArg) {
			os.Exit(-1)
		}
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	inputPath := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outPrefix, err := resolveOutPrefix(cmd, inputPath)
	if err != nil {
		return err
	}
	cacheRequested, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	bag := diag.NewBag(runID, 100)
	defer bag.Print(os.Stderr)

	alphabet, text, err := automaton.LoadRegexFile(inputPath)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}
	tree, err := automaton.BuildAst(alphabet, text)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}
	nfa, err := automaton.BuildNfa(tree, alphabet)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}
	useCache := cacheRequested || cfg.Automaton.CacheEnabled
	dfa, err := loadOrDeterminize(outPrefix, nfa, useCache)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}

	return emitAutomatonArtifacts(outPrefix, runID, cfg, nfa, dfa, useCache)
}

func runDeterminize(cmd *cobra.Command, args []string) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	inputPath := args[0]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outPrefix, err := resolveOutPrefix(cmd, inputPath)
	if err != nil {
		return err
	}
	cacheRequested, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	bag := diag.NewBag(runID, 100)
	defer bag.Print(os.Stderr)

	nfa, err := automaton.LoadNfaFile(inputPath)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}
	useCache := cacheRequested || cfg.Automaton.CacheEnabled
	dfa, err := loadOrDeterminize(outPrefix, nfa, useCache)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}

	return emitAutomatonArtifacts(outPrefix, runID, cfg, nfa, dfa, useCache)
}

// loadOrDeterminize checks outPrefix+".dfa.cache" for a previously
// written snapshot before running subset construction, the same
// Get-before-recompute order DiskCache.Get follows: a cache miss or a
// corrupt/mismatched-schema snapshot both just fall through to a fresh
// Determinize rather than failing the run.
func loadOrDeterminize(outPrefix string, nfa *automaton.Nfa, useCache bool) (*automaton.Dfa, error) {
	if !useCache {
		return automaton.Determinize(nfa), nil
	}
	if data, ok, err := store.ReadArtifactBytes(outPrefix + ".dfa.cache"); err != nil {
		return nil, err
	} else if ok {
		if dfa, err := automaton.DecodeDfaCache(bytes.NewReader(data)); err == nil {
			return dfa, nil
		}
	}
	return automaton.Determinize(nfa), nil
}

func emitAutomatonArtifacts(outPrefix, runID string, cfg config.Config, nfa *automaton.Nfa, dfa *automaton.Dfa, withCache bool) error {
	opts := automaton.GraphOptions{
		RankDir:      cfg.Automaton.GraphvizRankDir,
		RunID:        runID,
		EpsilonGlyph: cfg.Automaton.EpsilonGlyph,
	}

	writes := []struct {
		suffix  string
		content string
	}{
		{".nfa.txt", automaton.SerializeNfaText(nfa)},
		{".dfa.txt", automaton.SerializeDfaText(dfa)},
		{".nfa.dot", automaton.GraphvizNfa(nfa, opts)},
		{".dfa.dot", automaton.GraphvizDfa(dfa, opts)},
	}
	for _, w := range writes {
		path, err := store.WriteArtifact(outPrefix, w.suffix, w.content)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}

	if withCache {
		var buf bytes.Buffer
		if err := automaton.EncodeDfaCache(&buf, dfa); err != nil {
			return fmt.Errorf("encode dfa cache: %w", err)
		}
		path, err := store.WriteArtifactBytes(outPrefix, ".dfa.cache", buf.Bytes())
		if err != nil {
			return err
		}
		fmt.Println(path)
	}
	return nil
}

func resolveOutPrefix(cmd *cobra.Command, inputPath string) (string, error) {
	prefix, err := cmd.Flags().GetString("out-prefix")
	if err != nil {
		return "", err
	}
	if prefix != "" {
		return prefix, nil
	}
	return trimExt(inputPath), nil
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
