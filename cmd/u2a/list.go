package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/url2app/u2a/internal/errors"
	"github.com/url2app/u2a/internal/lifecycle"
)

// listItem is one app in json and yaml output.
type listItem struct {
	Name           string    `json:"name" yaml:"name"`
	URL            string    `json:"url" yaml:"url"`
	Created        time.Time `json:"created" yaml:"created"`
	Path           string    `json:"path" yaml:"path"`
	Icon           string    `json:"icon,omitempty" yaml:"icon,omitempty"`
	DesktopPath    string    `json:"desktopPath,omitempty" yaml:"desktopPath,omitempty"`
	ExecutablePath string    `json:"executablePath,omitempty" yaml:"executablePath,omitempty"`
}

func (a *app) listCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List generated apps",
		Long: `List the registered apps with their URL, creation time, directory and
desktop integration.

Examples:
  u2a list
  u2a list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.manager.List()
			if err != nil {
				return err
			}
			return renderList(os.Stdout, entries, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json, yaml)")

	return cmd
}

func renderList(w io.Writer, entries []lifecycle.Entry, format string) error {
	items := make([]listItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, listItem{
			Name:           e.Name,
			URL:            e.Record.URL,
			Created:        e.Record.Created,
			Path:           e.Record.Path,
			Icon:           e.Record.Icon,
			DesktopPath:    e.Record.DesktopPath,
			ExecutablePath: e.Record.ExecutablePath,
		})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		if len(items) == 0 {
			fmt.Fprintln(w, "No applications yet. Create one with 'u2a create <url>'.")
			return nil
		}
		fmt.Fprintln(w, listTable(items))
		return nil
	}

	return errors.New("E205").
		WithDetailf("unknown format %q", format).
		WithSuggestion("Use one of: table, json, yaml")
}

func listTable(items []listItem) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "URL", "CREATED", "DIRECTORY", "DESKTOP")

	if plain {
		t = t.Border(lipgloss.HiddenBorder())
	} else {
		t = t.BorderStyle(labelStyle).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})
	}

	for _, it := range items {
		desktop := it.DesktopPath
		if desktop == "" {
			desktop = "-"
		}
		t.Row(it.Name, it.URL, it.Created.Local().Format("2006-01-02 15:04"), it.Path, desktop)
	}
	return t.String()
}
