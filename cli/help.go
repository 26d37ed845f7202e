package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/grovetools/linkpicker/tui/theme"
)

const (
	helpMaxWidth = 60
	helpMinWidth = 40
)

// helpStyles are the lipgloss styles of one help page.
type helpStyles struct {
	title, heading, name, sub, flag, muted, italic lipgloss.Style
}

func newHelpStyles(t *theme.Theme) helpStyles {
	return helpStyles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Orange),
		heading: lipgloss.NewStyle().Italic(true).Foreground(t.Colors.Orange),
		name:    lipgloss.NewStyle().Bold(true).Foreground(t.Colors.Cyan),
		sub:     lipgloss.NewStyle().Foreground(t.Colors.Green),
		flag:    lipgloss.NewStyle().Foreground(t.Colors.Accent),
		muted:   t.Muted,
		italic:  lipgloss.NewStyle().Italic(true),
	}
}

// SetStyledHelp replaces cobra's help template on cmd.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
}

// ApplyStyledHelpRecursive sets styled help on root and every command below
// it. Execute calls it once the tree is built.
func ApplyStyledHelpRecursive(root *cobra.Command) {
	root.SetHelpFunc(styledHelpFunc)
	for _, sub := range root.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

func helpWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil, width < helpMinWidth:
		return helpMaxWidth
	case width > helpMaxWidth:
		return helpMaxWidth
	}
	return width
}

// wrapText breaks each paragraph of text at word boundaries so no line is
// wider than width. A non-positive width means helpMaxWidth.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = helpMaxWidth
	}
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(paragraph) <= width || len(words) == 0 {
			lines = append(lines, paragraph)
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// parseDescription splits a Long text at its "Examples:" line.
func parseDescription(long string) (description, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if before, after, ok := strings.Cut(long, marker); ok {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return long, ""
}

func styledHelpFunc(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	s := newHelpStyles(theme.DefaultTheme)
	width := helpWidth() - 2

	fmt.Fprintln(w, " "+s.title.Render(strings.ToUpper(cmd.CommandPath())))

	description, examples := cmd.Short, cmd.Example
	if cmd.Long != "" {
		var fromLong string
		description, fromLong = parseDescription(cmd.Long)
		if examples == "" {
			examples = fromLong
		}
	}
	if cmd.Short != "" {
		writeLines(w, wrapText(cmd.Short, width), s.italic)
	}
	if description != "" && description != cmd.Short {
		fmt.Fprintln(w)
		writeLines(w, wrapText(description, width), lipgloss.NewStyle())
	}

	if cmd.Runnable() || cmd.HasSubCommands() {
		heading(w, s, "USAGE")
		if cmd.Runnable() {
			fmt.Fprintln(w, " "+cmd.UseLine())
		}
		if cmd.HasSubCommands() {
			fmt.Fprintf(w, " %s [command]\n", cmd.CommandPath())
		}
	}

	writeCommands(w, s, cmd)
	writeFlags(w, s, cmd)

	if examples != "" {
		heading(w, s, "EXAMPLES")
		writeExamples(w, s, examples, cmd.Root().Name())
	}
	if cmd.HasSubCommands() {
		fmt.Fprintf(w, "\n Use \"%s [command] --help\" for more information.\n", cmd.CommandPath())
	}
}

func heading(w io.Writer, s helpStyles, text string) {
	fmt.Fprintln(w, "\n "+s.heading.Render(text))
}

func writeLines(w io.Writer, text string, style lipgloss.Style) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, " "+style.Render(line))
	}
}

func writeCommands(w io.Writer, s helpStyles, cmd *cobra.Command) {
	var subs []*cobra.Command
	pad := 0
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			subs = append(subs, sub)
			pad = max(pad, len(sub.Name()))
		}
	}
	if len(subs) == 0 {
		return
	}
	heading(w, s, "COMMANDS")
	for _, sub := range subs {
		fmt.Fprintf(w, " %s%s  %s\n", s.name.Render(sub.Name()), strings.Repeat(" ", pad-len(sub.Name())), sub.Short)
	}
}

// writeFlags lists local flags. Commands with children get a one-line
// summary so the command list stays readable.
func writeFlags(w io.Writer, s helpStyles, cmd *cobra.Command) {
	var flags []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			flags = append(flags, f)
		}
	})
	if len(flags) == 0 {
		return
	}
	sort.SliceStable(flags, func(i, j int) bool { return flags[i].Name < flags[j].Name })

	if cmd.HasAvailableSubCommands() {
		names := make([]string, 0, len(flags))
		for _, f := range flags {
			names = append(names, strings.TrimSpace(flagName(f)))
		}
		fmt.Fprintln(w, "\n "+s.muted.Render("Flags: "+strings.Join(names, ", ")))
		return
	}

	heading(w, s, "FLAGS")
	pad := 0
	for _, f := range flags {
		pad = max(pad, len(flagName(f)))
	}
	for _, f := range flags {
		usage := f.Usage
		switch f.DefValue {
		case "", "false", "[]", "0", "0s":
		default:
			usage += s.muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
		}
		name := flagName(f)
		fmt.Fprintf(w, " %s%s  %s\n", s.flag.Render(name), strings.Repeat(" ", pad-len(name)), usage)
	}
}

func flagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return "    --" + f.Name
}

// writeExamples mutes comment lines and colours the program, subcommand and
// flags of command lines.
func writeExamples(w io.Writer, s helpStyles, examples, program string) {
	for _, line := range strings.Split(examples, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			fmt.Fprintln(w)
		case strings.HasPrefix(line, "#"):
			fmt.Fprintln(w, " "+s.muted.Render(line))
		default:
			parts := strings.Fields(line)
			for i, part := range parts {
				switch {
				case strings.HasPrefix(part, "-"):
					parts[i] = s.flag.Render(part)
				case i == 0 && part == program:
					parts[i] = s.name.Render(part)
				case i == 1:
					parts[i] = s.sub.Render(part)
				}
			}
			fmt.Fprintln(w, "   "+strings.Join(parts, " "))
		}
	}
}
