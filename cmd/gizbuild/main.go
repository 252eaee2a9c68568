/*
Gizbuild deterministically regenerates all cached front-end artifacts: the
source language's lexer DFA and LR parse table, and the regex grammar's LR
parse table.

It succeeds iff every grammar's LR generator reports no conflict; a
shift/reduce or reduce/reduce collision anywhere is reported with both
productions and the lookahead, and the program exits nonzero.

Usage:

	gizbuild [flags]

The flags are:

	-v, --version
		Give the current version of gizzard and then exit.

	-C, --config FILE
		Use the provided TOML config file. Defaults to the file
		"gizzard.toml" in the current working directory.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/gizzard/internal/fe"
	"github.com/dekarrin/gizzard/internal/fe/config"
	"github.com/dekarrin/gizzard/internal/version"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitBuildError indicates an unsuccessful program execution due to a
	// problem generating an artifact.
	ExitBuildError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile  *string = pflag.StringP("config", "C", "gizzard.toml", "The TOML config file with cache and toolchain settings")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}

	if err := fe.Build(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitBuildError
		return
	}

	fmt.Printf("caches rebuilt under %s\n", cfg.CacheDir)
}
