// Package fe fronts the compiler pipeline: it regenerates and loads the
// cached lexer DFA and parse tables, runs lex/parse/analyze over source
// text, and hands an analyzed program across the C back-end boundary.
package fe

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dekarrin/gizzard/internal/fe/ast"
	"github.com/dekarrin/gizzard/internal/fe/cache"
	"github.com/dekarrin/gizzard/internal/fe/config"
	"github.com/dekarrin/gizzard/internal/fe/lang"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/fe/regexfe"
	"github.com/dekarrin/gizzard/internal/fe/sema"
)

// CodeGenerator is the C back-end boundary: it receives the analyzed
// program plus the fully resolved context and must emit a self-contained C
// translation unit.
type CodeGenerator interface {
	Generate(prog ast.Program, ctx *sema.Context) (string, error)
}

// Build deterministically regenerates every cached artifact: the source
// language's lexer DFA and parse table, and the regex grammar's parse
// table. It fails iff any grammar's LR generator reports a conflict (or an
// artifact cannot be written).
func Build(cfg config.Config) error {
	if err := os.MkdirAll(cfg.CacheDir, 0770); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	lx, err := lang.BuildLexer()
	if err != nil {
		return fmt.Errorf("build lexer: %w", err)
	}
	if err := cache.SaveLexer(cfg.CacheDir, lang.GrammarName, lx.Snapshot()); err != nil {
		return err
	}

	langTable, err := lang.BuildTable()
	if err != nil {
		return fmt.Errorf("build %s table: %w", lang.GrammarName, err)
	}
	if err := cache.SaveTable(cfg.CacheDir, lang.GrammarName, langTable); err != nil {
		return err
	}

	regexTable, err := regexfe.BuildTable()
	if err != nil {
		return fmt.Errorf("build %s table: %w", regexfe.GrammarName, err)
	}
	return cache.SaveTable(cfg.CacheDir, regexfe.GrammarName, regexTable)
}

// LoadArtifacts loads the source language's lexer and parse table from the
// cache, re-validating the table: it must have at least one state, and its
// terminal and production counts must match the live grammar. Any mismatch
// or load failure triggers a rebuild.
func LoadArtifacts(cfg config.Config) (*lex.Lexer, *lr.Table, error) {
	lx, table, err := loadCached(cfg)
	if err == nil {
		return lx, table, nil
	}

	if err := Build(cfg); err != nil {
		return nil, nil, err
	}
	return loadCached(cfg)
}

func loadCached(cfg config.Config) (*lex.Lexer, *lr.Table, error) {
	snap, err := cache.LoadLexer(cfg.CacheDir, lang.GrammarName)
	if err != nil {
		return nil, nil, err
	}
	lx, err := lex.FromSnapshot(snap)
	if err != nil {
		return nil, nil, err
	}

	table, err := cache.LoadTable(cfg.CacheDir, lang.GrammarName)
	if err != nil {
		return nil, nil, err
	}

	g := lang.Grammar()
	if table.NumStates == 0 || len(table.Terminals) != len(g.Terminals()) ||
		len(table.Productions) != len(g.AllProductions()) {
		return nil, nil, fmt.Errorf("%w: table shape does not match grammar", cache.ErrInvalid)
	}

	return lx, table, nil
}

// Analyze runs lex, parse, and semantic analysis over source. The first
// failing stage short-circuits the rest.
func Analyze(cfg config.Config, source string) (ast.Program, sema.Result, error) {
	lx, table, err := LoadArtifacts(cfg)
	if err != nil {
		return ast.Program{}, sema.Result{}, err
	}

	prog, err := lang.Parse(lx, table, source)
	if err != nil {
		return ast.Program{}, sema.Result{}, err
	}

	return prog, sema.Analyze(prog), nil
}

// Compile runs the whole pipeline over source. With a nil generator it
// stops after analysis; otherwise the generator's output is written under
// the cache directory, compiled with the configured C toolchain, and run.
// It returns true iff every stage succeeded.
func Compile(cfg config.Config, source string, gen CodeGenerator) (bool, []error) {
	prog, res, err := Analyze(cfg, source)
	if err != nil {
		return false, []error{err}
	}
	if !res.OK {
		return false, res.Errors
	}
	if gen == nil {
		return true, nil
	}

	csrc, err := gen.Generate(prog, res.Context)
	if err != nil {
		return false, []error{fmt.Errorf("generate C source: %w", err)}
	}

	cPath := filepath.Join(cfg.CacheDir, cfg.OutName+".c")
	if err := os.WriteFile(cPath, []byte(csrc), 0664); err != nil {
		return false, []error{fmt.Errorf("write C source: %w", err)}
	}

	outPath := filepath.Join(cfg.CacheDir, cfg.OutName)
	args := append([]string{"-o", outPath, cPath}, cfg.CCFlags...)
	if out, err := exec.Command(cfg.CC, args...).CombinedOutput(); err != nil {
		return false, []error{fmt.Errorf("%s: %w\n%s", cfg.CC, err, out)}
	}

	if err := exec.Command(outPath).Run(); err != nil {
		return false, []error{fmt.Errorf("run compiled program: %w", err)}
	}
	return true, nil
}
