/*
Gizc compiles source programs with the gizzard front-end.

It loads the cached lexer DFA and parse tables (rebuilding them if they are
missing or stale), runs the pipeline over the given file, and reports every
lexical, syntactic, or semantic error with its source position. With -i it
instead starts an interactive session that lexes, parses, and analyzes one
line at a time.

Usage:

	gizc [flags] [FILE]

The flags are:

	-v, --version
		Give the current version of gizzard and then exit.

	-C, --config FILE
		Use the provided TOML config file. Defaults to the file
		"gizzard.toml" in the current working directory.

	-i, --interactive
		Start an interactive session instead of compiling a file.

	-d, --direct
		Force reading directly from the console as opposed to using GNU
		readline based routines for reading input even if launched in a tty
		with stdin and stdout.

	-c, --command COMMANDS
		Immediately run the given session command(s) at start. Can be
		multiple commands separated by the ";" character. Implies -i.
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dekarrin/gizzard"
	"github.com/dekarrin/gizzard/internal/fe"
	"github.com/dekarrin/gizzard/internal/fe/config"
	"github.com/dekarrin/gizzard/internal/fe/faults"
	"github.com/dekarrin/gizzard/internal/version"
	"github.com/spf13/pflag"
)

const (

	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates an unsuccessful program execution due to a
	// problem in the program being compiled.
	ExitCompileError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the front-end.
	ExitInitError
)

var (
	returnCode   int     = ExitSuccess
	flagVersion  *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile   *string = pflag.StringP("config", "C", "gizzard.toml", "The TOML config file with cache and toolchain settings")
	interactive  *bool   = pflag.BoolP("interactive", "i", false, "Start an interactive session instead of compiling a file")
	forceDirect  *bool   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	startCommand *string = pflag.StringP("command", "c", "", "Execute the given session command(s) immediately at start and leave the session open")
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
		returnCode = ExitInitError
		return
	}

	if *interactive || *startCommand != "" {
		var startCommands []string
		if *startCommand != "" {
			startCommands = strings.Split(*startCommand, ";")
		}

		eng, initErr := gizzard.New(os.Stdin, os.Stdout, cfg, *forceDirect)
		if initErr != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", initErr.Error())
			returnCode = ExitInitError
			return
		}
		defer eng.Close()

		if err := eng.RunUntilQuit(startCommands); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
		}
		return
	}

	if pflag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "ERROR: no input file; give a FILE or -i\n")
		returnCode = ExitInitError
		return
	}

	data, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	ok, errs := fe.Compile(cfg, string(data), nil)
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", faults.Message(e))
	}
	if !ok {
		returnCode = ExitCompileError
	}
}
