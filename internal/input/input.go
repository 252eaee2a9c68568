// Package input contains readers used for getting interactive front-end
// input from the CLI or other sources.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// DirectReader implements command.Reader and reads lines from any generic
// input stream directly. It can be used generically with any io.Reader but
// does not sanitize the input of control and escape sequences.
//
// DirectReader should not be used directly; instead, create one with
// [NewDirectReader].
type DirectReader struct {
	r             *bufio.Reader
	blanksAllowed bool
}

// InteractiveReader implements command.Reader and reads lines from stdin
// using a go implementation of the GNU Readline library. This keeps input
// clear of all typing and editing escape sequences and enables the use of
// line history. This should in general probably only be used when directly
// connecting to a TTY for input.
//
// InteractiveReader should not be used directly; instead, create one with
// [NewInteractiveReader].
type InteractiveReader struct {
	rl            *readline.Instance
	blanksAllowed bool
	prompt        string
}

// NewDirectReader creates a DirectReader and initializes a buffered reader
// on the provided stream.
func NewDirectReader(r io.Reader) *DirectReader {
	return &DirectReader{
		r: bufio.NewReader(r),
	}
}

// NewInteractiveReader creates an InteractiveReader and initializes
// readline. The returned InteractiveReader must have Close() called on it
// before disposal to properly teardown readline resources.
func NewInteractiveReader() (*InteractiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "giz> ",
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}

	return &InteractiveReader{
		rl:     rl,
		prompt: "giz> ",
	}, nil
}

// Close cleans up resources associated with the DirectReader.
func (dr *DirectReader) Close() error {
	// this function is here so DirectReader implements command.Reader. For
	// now it doesn't really do anything as the DirectReader does not create
	// resources but it may in the future and callers should treat it as
	// though it must have Close called on it.

	return nil
}

// Close cleans up readline resources and other resources associated with
// the InteractiveReader.
func (ir *InteractiveReader) Close() error {
	return ir.rl.Close()
}

// ReadLine reads the next line from the stream. The returned string will
// only be empty if there is an error reading input, otherwise this function
// is blocked on until a line containing non-space characters is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (dr *DirectReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = dr.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && dr.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// ReadLine reads the next line from stdin. The returned string will only be
// empty if there is an error, otherwise this function is blocked on until a
// line consisting of more than empty or whitespace-only input is read.
//
// If at end of input, the returned string will be empty and error will be
// io.EOF. If any other error occurs, the returned string will be empty and
// error will be that error.
func (ir *InteractiveReader) ReadLine() (string, error) {
	var line string
	var err error

	for line == "" {
		line, err = ir.rl.Readline()
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}

		line = strings.TrimSpace(line)

		if line == "" && ir.blanksAllowed {
			return line, nil
		}
	}

	return line, nil
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (dr *DirectReader) AllowBlank(allow bool) {
	dr.blanksAllowed = allow
}

// AllowBlank sets whether blank output is allowed. By default it is not.
func (ir *InteractiveReader) AllowBlank(allow bool) {
	ir.blanksAllowed = allow
}

// SetPrompt updates the prompt to the given text.
func (ir *InteractiveReader) SetPrompt(p string) {
	ir.prompt = p
	ir.rl.SetPrompt(p)
}

// GetPrompt gets the current prompt.
func (ir *InteractiveReader) GetPrompt() string {
	return ir.prompt
}
