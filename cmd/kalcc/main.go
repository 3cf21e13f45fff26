// Command kalcc runs Pipeline B: it reads a JSON-serialized AST (the
// surface grammar itself is out of scope per §4 of the language spec —
// it's produced by a parser generator this repo doesn't include) and
// lowers it to the textual IR of internal/lang/ir, following the same
// cobra CLI shape as cmd/regexdfa.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Piltxi/kaltz/internal/config"
	"github.com/Piltxi/kaltz/internal/diag"
	"github.com/Piltxi/kaltz/internal/lang/astjson"
	"github.com/Piltxi/kaltz/internal/lang/codegen"
	"github.com/Piltxi/kaltz/internal/store"
)

// errMissingArg is returned by exactlyOneArg so main can translate it
// to exit code -1, matching §6's "missing argument exits -1" contract.
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
	Use:   "kalcc",
	Short: "Lower a serialized AST to IR",
}

var lowerCmd = &cobra.Command{
	Use:   "lower <input-file>",
	Short: "Lower a JSON-serialized AST file to a textual IR module",
	Args:  exactlyOneArg,
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().String("out-prefix", "", "path prefix for the emitted .ir file (default: input file's path minus extension)")
	lowerCmd.Flags().String("config", "", "path to a TOML config file")
	rootCmd.AddCommand(lowerCmd)
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

func runLower(cmd *cobra.Command, args []string) error {
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	inputPath := args[0]

	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	var cfg config.Config
	if cfgPath == "" {
		cfg = config.Default()
	} else {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
	}

	outPrefix, err := cmd.Flags().GetString("out-prefix")
	if err != nil {
		return err
	}
	if outPrefix == "" {
		outPrefix = trimExt(inputPath)
	}

	runID := uuid.New().String()
	bag := diag.NewBag(runID, 100)
	defer bag.Print(os.Stderr)

	source, err := store.ReadInput(inputPath)
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}
	tree, err := astjson.Decode([]byte(source))
	if err != nil {
		bag.Errorf("%v", err)
		return err
	}

	ctx := codegen.NewContextWithAllocaPrefix(moduleName(inputPath), cfg.Codegen.EntryAllocaPrefix)
	drv := codegen.NewDriver(ctx)
	if err := drv.Run(cmd.Context(), tree); err != nil {
		bag.Errorf("%v", err)
		return err
	}

	if cfg.Codegen.DumpIR {
		fmt.Print(ctx.Module.String())
	}
	path, err := store.WriteArtifact(outPrefix, ".ir", ctx.Module.String())
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func moduleName(path string) string {
	base := trimExt(path)
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			return base[i+1:]
		}
	}
	return base
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
