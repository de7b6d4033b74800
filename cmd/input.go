package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/workairs/wa-cli/internal/api"
	"github.com/workairs/wa-cli/internal/ui"
)

// stdin is shared by every prompt so buffered input is not lost between them.
var stdin = bufio.NewReader(os.Stdin)

// parseData decodes a --data value: inline JSON or YAML, @path to read a
// file, or @- to read standard input.
func parseData(raw string) (api.Fields, error) {
	if raw == "" {
		return nil, errors.New("--data is required")
	}

	src := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		if path == "-" {
			src, err = io.ReadAll(stdin)
		} else {
			src, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}
	}

	var fields api.Fields
	if err := yaml.Unmarshal(src, &fields); err != nil {
		return nil, fmt.Errorf("invalid --data: %w", err)
	}
	if len(fields) == 0 {
		return nil, errors.New("--data must be a non-empty object")
	}
	return fields, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// printResult writes v to stdout in the selected --output format.
func printResult(v any, tab ui.Tabular) error {
	return ui.Print(os.Stdout, outputFormat, v, tab)
}

// prompt asks for a line of input on stderr.
func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "  %s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echo when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Fprintf(os.Stderr, "  %s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// orPrompt returns v, or asks for it when empty.
func orPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return prompt(label)
}
