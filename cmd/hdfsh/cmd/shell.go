package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/opensandbox/hdfsh/pkg/types"
)

var errScriptFailed = errors.New("one or more commands failed")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Commands are the same as on the command line,
without the "hdfsh" prefix. Tab completes command names and remote paths.

When stdin is not a terminal, commands are read one per line, so a script can
be piped in. Type "exit" or "quit" (or send EOF) to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return runTerminal(ctx, appFrom(cmd), f)
		}
		return runScript(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func prompt(a *application) string {
	return "hdfs:" + a.executor.WorkingDir() + "$ "
}

func runTerminal(ctx context.Context, a *application, f *os.File) error {
	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set terminal raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(f, prompt(a))
	t.AutoCompleteCallback = func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		return completeLine(ctx, a, line, pos)
	}

	for {
		t.SetPrompt(prompt(a))
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read line: %w", err)
		}
		if exit, _ := runLine(ctx, line, t, t); exit {
			return nil
		}
	}
}

func runScript(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	failed := false
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		exit, err := runLine(ctx, scanner.Text(), out, errOut)
		if err != nil {
			failed = true
		}
		if exit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	if failed {
		return errScriptFailed
	}
	return nil
}

// runLine executes one command line through the root command. ctx must
// carry the session's application. Errors are printed and returned so the
// caller can keep going.
func runLine(ctx context.Context, line string, out, errOut io.Writer) (exit bool, err error) {
	args := strings.Fields(line)
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false, nil
	}

	switch args[0] {
	case "exit", "quit":
		return true, nil
	case "shell":
		err = errors.New("shell: already in an interactive session")
		fmt.Fprintln(errOut, err)
		return false, err
	}

	defer resetCommands(rootCmd)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	if err = rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, types.Render(err))
	}
	return false, err
}

// completeLine completes the word ending at pos: a command name for the
// first word, a remote path otherwise. pos and the returned position count
// runes.
func completeLine(ctx context.Context, a *application, line string, pos int) (string, int, bool) {
	runes := []rune(line)
	pos = min(pos, len(runes))
	head, tail := string(runes[:pos]), string(runes[pos:])
	start := strings.LastIndexByte(head, ' ') + 1
	word := head[start:]

	var candidates []string
	if strings.TrimSpace(head[:start]) == "" {
		for _, c := range rootCmd.Commands() {
			if !c.Hidden && strings.HasPrefix(c.Name(), word) {
				candidates = append(candidates, c.Name()+" ")
			}
		}
	} else {
		dirsOnly := strings.Fields(head)[0] == "cd"
		var err error
		candidates, err = a.executor.Complete(ctx, word, dirsOnly)
		if err != nil {
			return "", 0, false
		}
	}
	if len(candidates) == 0 {
		return "", 0, false
	}

	completed := commonPrefix(candidates)
	if len(completed) <= len(word) {
		return "", 0, false
	}
	newHead := head[:start] + completed
	return newHead + tail, utf8.RuneCountInString(newHead), true
}

func commonPrefix(words []string) string {
	sorted := append([]string(nil), words...)
	sort.Strings(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]
	i := 0
	for i < len(first) && i < len(last) && first[i] == last[i] {
		i++
	}
	return first[:i]
}
