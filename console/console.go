// Package console provides the terminal surface of the approval loop: an
// interactive Approver prompting for approve / reject / edit decisions, and
// helpers for streaming assistant output to the terminal.
package console

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hupe1980/inboxgate/core"
)

// Console reads decisions from in and writes prompts and output to out. It
// implements runner.Approver.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// New constructs a Console over the given reader and writer (typically
// os.Stdin and os.Stdout).
func New(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Decide prompts for a decision on the proposed action and blocks until the
// human answers. Unrecognized input re-prompts; an action is never approved
// by default. EOF on the input aborts with an error, which the runner treats
// as a fatal run failure rather than an implicit approval.
func (c *Console) Decide(req core.ActionRequest) (core.Decision, error) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	fmt.Fprintf(c.out, "  PROPOSED ACTION: %s\n", req.Tool)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	fmt.Fprintf(c.out, "  email_id: %s\n", req.TargetID)
	for _, key := range sortedKeys(req.Args) {
		fmt.Fprintf(c.out, "  %s: %v\n", key, req.Args[key])
	}
	fmt.Fprintln(c.out, strings.Repeat("-", 60))

	for {
		choice, err := c.prompt("\n  Decision - (a)pprove / (r)eject / (e)dit: ")
		if err != nil {
			return core.Decision{}, fmt.Errorf("read decision: %w", err)
		}

		switch strings.ToLower(choice) {
		case "a":
			return core.Approve(), nil
		case "r":
			reason, err := c.prompt("  Reason for rejection: ")
			if err != nil {
				return core.Decision{}, fmt.Errorf("read rejection reason: %w", err)
			}
			return core.Reject(reason), nil
		case "e":
			args, err := c.editArgs(req.Args)
			if err != nil {
				return core.Decision{}, err
			}
			return core.Edit(args), nil
		default:
			fmt.Fprintln(c.out, "  Unrecognized choice, please answer a, r or e.")
		}
	}
}

// editArgs walks the editable arguments one key at a time. An empty answer
// keeps the current value. The target id is not part of Args and therefore
// never editable.
func (c *Console) editArgs(current map[string]any) (map[string]any, error) {
	edited := make(map[string]any, len(current))
	for k, v := range current {
		edited[k] = v
	}

	fmt.Fprintf(c.out, "\n  Current args: %v\n", current)
	for _, key := range sortedKeys(current) {
		newVal, err := c.prompt(fmt.Sprintf("  New value for %q (Enter to keep): ", key))
		if err != nil {
			return nil, fmt.Errorf("read edited value: %w", err)
		}
		if newVal != "" {
			edited[key] = newVal
		}
	}
	return edited, nil
}

// prompt writes the prompt text and reads one trimmed line.
func (c *Console) prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadLine reads one trimmed input line, for REPL-style examples. io.EOF is
// returned when the input is exhausted.
func (c *Console) ReadLine(promptText string) (string, error) {
	return c.prompt(promptText)
}

// Banner prints a separator line with a centered title.
func (c *Console) Banner(title string) {
	fmt.Fprintln(c.out, strings.Repeat("=", 60))
	fmt.Fprintf(c.out, "  %s\n", title)
	fmt.Fprintln(c.out, strings.Repeat("=", 60))
}

// PrintEvent writes an event's textual content. Partial events stream
// without trailing newlines so tokens join up; final assistant turns are
// skipped when streaming already printed them.
func (c *Console) PrintEvent(ev core.Event, streaming bool) {
	if ev.Content == nil {
		return
	}
	if ev.IsPartial() {
		fmt.Fprint(c.out, ev.Content.Text())
		return
	}
	if streaming && ev.Content.Role == "assistant" && len(ev.GetFunctionCalls()) == 0 {
		fmt.Fprintln(c.out)
		return
	}
	if ev.Content.Role == "assistant" {
		if text := ev.Content.Text(); text != "" {
			fmt.Fprintf(c.out, "\n  Agent: %s\n", text)
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
