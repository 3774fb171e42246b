package main

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

//go:embed help/*.md
var helpFS embed.FS

var topicsCmd = &cobra.Command{
	Use:       "topics [topic]",
	Short:     MsgTopicsShort,
	Long:      MsgTopicsLong,
	ValidArgs: topicNames(),
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			names := topicNames()
			sort.Strings(names)
			fmt.Fprintln(cmd.OutOrStdout(), "Available help topics:")
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nUse 'devup topics <topic>' to read one.\n")
			return nil
		}

		content, err := helpFS.ReadFile("help/" + args[0] + ".md")
		if err != nil {
			return fmt.Errorf("unknown topic %q; run 'devup topics' for the list", args[0])
		}

		fmt.Fprint(cmd.OutOrStdout(), renderTopic(string(content)))
		return nil
	},
}

func topicNames() []string {
	entries, err := helpFS.ReadDir("help")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	return names
}

// renderTopic formats markdown for the terminal, falling back to the
// raw text when rendering fails or output is piped.
func renderTopic(content string) string {
	style := glamour.WithAutoStyle()
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		style = glamour.WithStandardStyle("notty")
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
