// Package gizzard contains a CLI-driven interactive front-end for getting
// compiler commands and running source text through the pipeline
// continuously until the user quits.
package gizzard

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/gizzard/internal/command"
	"github.com/dekarrin/gizzard/internal/fe"
	"github.com/dekarrin/gizzard/internal/fe/config"
	"github.com/dekarrin/gizzard/internal/fe/faults"
	"github.com/dekarrin/gizzard/internal/fe/lang"
	"github.com/dekarrin/gizzard/internal/fe/lex"
	"github.com/dekarrin/gizzard/internal/fe/lr"
	"github.com/dekarrin/gizzard/internal/fe/sema"
	"github.com/dekarrin/gizzard/internal/input"
)

// Engine contains the things needed to run an interactive front-end
// session attached to an input stream and an output stream.
type Engine struct {
	cfg     config.Config
	in      command.Reader
	out     *bufio.Writer
	lx      *lex.Lexer
	table   *lr.Table
	running bool
}

const consoleOutputWidth = 80

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered reader on the input stream
// and a buffered writer on the output stream.
//
// If nil is given for the input stream, input is read from stdin. If nil is
// given for the output stream, output goes to stdout.
func New(inputStream io.Reader, outputStream io.Writer, cfg config.Config, forceDirectInput bool) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	eng := &Engine{
		cfg:     cfg,
		out:     bufio.NewWriter(outputStream),
		running: false,
	}

	useReadline := !forceDirectInput && inputStream == os.Stdin && outputStream == os.Stdout
	if useReadline {
		rl, err := input.NewInteractiveReader()
		if err != nil {
			return nil, fmt.Errorf("initialize readline: %w", err)
		}
		eng.in = rl
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}

	return eng, nil
}

// Close cleans up the engine's reader. It must be called once the engine is
// no longer needed.
func (eng *Engine) Close() error {
	return eng.in.Close()
}

// RunUntilQuit starts the interactive session and processes commands until
// the user quits or input ends. Any commands in startCommands are executed
// first, in order.
func (eng *Engine) RunUntilQuit(startCommands []string) error {
	eng.running = true
	defer func() { eng.running = false }()

	eng.println("gizzard interactive front-end. Type :help for commands, :quit to leave.")
	eng.flush()

	for _, line := range startCommands {
		if !eng.execLine(line) {
			return nil
		}
	}

	for {
		line, err := eng.in.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read command: %w", err)
		}
		if !eng.execLine(line) {
			return nil
		}
	}
}

// execLine parses and executes one input line, returning false when the
// session should end.
func (eng *Engine) execLine(line string) bool {
	defer eng.flush()

	cmd, err := command.Parse(line)
	if err != nil {
		eng.println(err.Error())
		return true
	}

	switch cmd.Verb {
	case "":
		return true
	case command.VerbQuit:
		eng.println("bye")
		return false
	case command.VerbHelp:
		eng.printHelp()
	case command.VerbBuild:
		if err := fe.Build(eng.cfg); err != nil {
			eng.println("ERROR: " + err.Error())
		} else {
			eng.lx, eng.table = nil, nil
			eng.println("caches rebuilt")
		}
	case command.VerbTokens:
		eng.showTokens(cmd.Payload)
	case command.VerbAST:
		eng.showAST(cmd.Payload)
	case command.VerbCheck:
		eng.check(cmd.Payload, true)
	case command.VerbEval:
		eng.check(cmd.Payload, false)
	case command.VerbLoad:
		data, err := os.ReadFile(cmd.Args[0])
		if err != nil {
			eng.println("ERROR: " + err.Error())
			return true
		}
		eng.check(string(data), true)
	}
	return true
}

func (eng *Engine) artifacts() bool {
	if eng.lx != nil && eng.table != nil {
		return true
	}
	lx, table, err := fe.LoadArtifacts(eng.cfg)
	if err != nil {
		eng.println("ERROR: " + err.Error())
		return false
	}
	eng.lx, eng.table = lx, table
	return true
}

func (eng *Engine) showTokens(source string) {
	if !eng.artifacts() {
		return
	}
	toks, err := lang.Tokenize(eng.lx, source)
	if err != nil {
		eng.println("ERROR: " + faults.Message(err))
		return
	}
	for _, t := range toks {
		eng.println(t.String())
	}
}

func (eng *Engine) showAST(source string) {
	if !eng.artifacts() {
		return
	}
	prog, err := lang.Parse(eng.lx, eng.table, source)
	if err != nil {
		eng.println("ERROR: " + faults.Message(err))
		return
	}
	eng.println(prog.Print())
}

func (eng *Engine) check(source string, showContext bool) {
	if !eng.artifacts() {
		return
	}
	prog, err := lang.Parse(eng.lx, eng.table, source)
	if err != nil {
		eng.println("ERROR: " + faults.Message(err))
		return
	}

	res := sema.Analyze(prog)
	if !res.OK {
		for _, e := range res.Errors {
			eng.println("ERROR: " + faults.Message(e))
		}
		return
	}
	if showContext {
		eng.println(res.Context.String())
	}
	eng.println("ok")
}

func (eng *Engine) printHelp() {
	eng.println("Commands:")
	eng.println("  :tokens SOURCE - lex SOURCE and show its token stream")
	eng.println("  :ast SOURCE    - parse SOURCE and show it printed back")
	eng.println("  :check SOURCE  - analyze SOURCE and show the typed context")
	eng.println("  :load FILE     - analyze the program in FILE")
	eng.println("  :build         - regenerate all cached DFAs and parse tables")
	eng.println("  :quit          - leave the session")
	eng.println("Any other input is analyzed as source text.")
}

// println writes a line to output. Text longer than the console width is
// wrapped to that width whatever it contains; shorter text is written as is.
func (eng *Engine) println(text string) {
	if len(text) > consoleOutputWidth {
		text = rosed.Edit(text).Wrap(consoleOutputWidth).String()
	}
	fmt.Fprintln(eng.out, text)
}

func (eng *Engine) flush() {
	eng.out.Flush()
}
