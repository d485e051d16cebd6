package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"vr-dimension/src/window"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	boundsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AF87"))
)

const maxTitleWidth = 60

func newWindowsCmd() *cobra.Command {
	var (
		jsonOutput bool
		hint       string
	)
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List capturable windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := window.NewFinder().List()
			if err != nil {
				return fmt.Errorf("failed to list windows: %w", err)
			}
			if jsonOutput {
				return writeWindowsJSON(cmd.OutOrStdout(), infos)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), renderWindows(infos, hint))
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&hint, "hint", "", "Highlight titles containing this text")
	return cmd
}

type windowJSON struct {
	Title  string `json:"title"`
	Left   int    `json:"left"`
	Top    int    `json:"top"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func writeWindowsJSON(w io.Writer, infos []window.Info) error {
	out := make([]windowJSON, 0, len(infos))
	for _, in := range infos {
		out = append(out, windowJSON{
			Title:  in.Title,
			Left:   in.Bounds.Left,
			Top:    in.Bounds.Top,
			Width:  in.Bounds.Width,
			Height: in.Bounds.Height,
		})
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func renderWindows(infos []window.Info, hint string) string {
	if len(infos) == 0 {
		return boundsStyle.Render("No capturable windows found.") + "\n"
	}

	width := 0
	for _, in := range infos {
		width = max(width, min(len([]rune(in.Title)), maxTitleWidth))
	}
	col := lipgloss.NewStyle().Width(width + 2).Align(lipgloss.Left)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d windows", len(infos))))
	b.WriteString("\n")
	hint = strings.ToLower(strings.TrimSpace(hint))
	for _, in := range infos {
		style := titleStyle
		if hint != "" && strings.Contains(strings.ToLower(in.Title), hint) {
			style = matchStyle
		}
		b.WriteString(col.Render(style.Render(truncate(in.Title, maxTitleWidth))))
		b.WriteString(boundsStyle.Render(in.Bounds.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
