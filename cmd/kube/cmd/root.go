// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the kube REPL command, a thin cobra.Command
// wrapper grounded on cmd/cue/cmd's Command type: a root *cobra.Command
// plus injectable Stdin/Stdout so the same binary entry point can be
// driven by a testscript harness instead of a real terminal.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bramble.dev/kube/internal/debuglog"
	"bramble.dev/kube/kube/ast"
	"bramble.dev/kube/kube/errors"
	"bramble.dev/kube/kube/eval"
	"bramble.dev/kube/kube/interp"
	"bramble.dev/kube/kube/parser"
	"bramble.dev/kube/kube/printer"
)

// version is a compile-time banner constant, overridable with
// -ldflags "-X bramble.dev/kube/cmd/kube/cmd.version=...", mirroring
// cuelang.org/go/internal/cueversion's constant-banner approach rather
// than resolving a version at runtime from module or VCS metadata.
var version = "(devel)"

// maxLineBytes bounds how much of one line of input the REPL reads
// (spec.md §6).
const maxLineBytes = 256

// Command wraps the active *cobra.Command, the same shape
// cmd/cue/cmd.Command uses so Stdin/Stdout can be redirected by tests
// without relying on cobra's package-level default streams.
type Command struct {
	*cobra.Command
	root *cobra.Command
}

// SetInput redirects the REPL's stdin.
func (c *Command) SetInput(r io.Reader) { c.root.SetIn(r) }

// SetOutput redirects the REPL's stdout.
func (c *Command) SetOutput(w io.Writer) { c.root.SetOut(w) }

// New builds the root command with args already bound, ready for Run.
func New(args []string) (*Command, error) {
	c := &Command{}

	prompt := "1>"

	root := &cobra.Command{
		Use:           "kube",
		Short:         "an interactive interpreter for a compact K-family array language",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runREPL(cc, prompt)
		},
	}
	root.Flags().StringVar(&prompt, "prompt", prompt, "REPL prompt string")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print the version banner",
		RunE: func(cc *cobra.Command, _ []string) error {
			fmt.Fprintln(cc.OutOrStdout(), version)
			return nil
		},
	})

	root.SetArgs(args)
	c.Command = root
	c.root = root
	return c, nil
}

// Run executes the command tree.
func (c *Command) Run(ctx context.Context) error {
	return c.root.ExecuteContext(ctx)
}

// Main runs the kube REPL and returns the code for os.Exit.
func Main() int {
	c, err := New(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := c.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runREPL implements spec.md §6's read-parse-eval-print loop: read up
// to maxLineBytes per line, parse, evaluate, print the result through
// kube/printer, and exit when a line evaluates to Quit.
func runREPL(cc *cobra.Command, prompt string) error {
	in := bufio.NewReaderSize(cc.InOrStdin(), maxLineBytes)
	out := cc.OutOrStdout()

	ip := interp.New()

	for {
		fmt.Fprint(out, prompt+" ")
		line, err := readLine(in)
		if err == io.EOF && line == "" {
			return nil
		}

		root, perr := parser.Parse(line, ip.Arena)
		if perr != nil {
			fmt.Fprintln(out, errors.Diagnostic(perr))
			continue
		}

		debuglog.Printf("parsed %s", printer.Sprint(ip.Arena, root))

		result, eerr := eval.Run(ip, root)
		if eerr != nil {
			fmt.Fprintln(out, errors.Diagnostic(eerr))
			ip.Env.Clean()
			continue
		}

		if ip.Arena.Deref(result).Kind == ast.KQuit {
			fmt.Fprintln(out)
			return nil
		}

		fmt.Fprintln(out, printer.Sprint(ip.Arena, result))
		ip.Env.Clean()
	}
}

// readLine reads one line (up to maxLineBytes, not counting the
// trailing newline) from in, returning io.EOF alongside any partial
// final line.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if len(line) > maxLineBytes {
		line = line[:maxLineBytes]
	}
	return line, err
}
