package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"yousearch/internal/config"
	"yousearch/internal/domain"
	"yousearch/internal/export"
	"yousearch/internal/logger"
	"yousearch/internal/session"
	"yousearch/internal/youapi"
)

// Output formats accepted by --format
const (
	formatText = "text"
	formatLLM  = "llm"
	formatJSON = "json"
	formatMD   = "md"
	formatYAML = "yaml"
)

var (
	searchFormat string
	searchCount  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run one search and print the results",
	Long: `Run one search and print the results.

Bangs work as in the interactive UI, e.g.

  yousearch search golang generics !year !us
  yousearch search --format json climate policy !news`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", formatText, "output format: text, llm, json, md or yaml")
	searchCmd.Flags().IntVarP(&searchCount, "count", "n", 0, "number of results to request (default from the API)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(searchFormat)
	switch format {
	case formatText, formatLLM, formatJSON, formatMD, formatYAML:
	default:
		return fmt.Errorf("unknown format %q", searchFormat)
	}

	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	orch := session.New(newBackend(appConfig, log),
		session.WithLogger(log.WithName("session")),
		session.WithFilters(appConfig.Filters),
		session.WithDefaultCount(searchCount),
	)

	query := strings.Join(args, " ")
	snap, err := orch.Submit(ctx, query)
	if err != nil {
		return err
	}
	if !snap.HasSearched {
		return errors.New("search query cannot be empty")
	}
	if !snap.Err.IsZero() {
		if snap.Err.Kind == session.ErrorConfiguration {
			return fmt.Errorf("no API key configured: set %s, add api_key to %s or pass --demo", config.EnvAPIKey, cfgSvc.Path())
		}
		return errors.New(snap.Err.Message)
	}

	resp := domain.SearchResponse{}
	if snap.Results != nil {
		resp = *snap.Results
	}
	return writeResults(cmd.OutOrStdout(), format, snap.CleanQuery, resp, appConfig.Demo)
}

func writeResults(w io.Writer, format, query string, resp domain.SearchResponse, demo bool) error {
	switch format {
	case formatJSON:
		out, err := export.JSON(query, resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err

	case formatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(export.Payload{Query: query, Results: resp}); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err

	case formatMD:
		md := export.Markdown(resp.Results.Web, resp.Results.News)
		if demo {
			md = "> Demo mode: these are mock results.\n\n" + md
		}
		if isTerminal(w) {
			if rendered, err := renderMarkdown(md); err == nil {
				md = rendered
			}
		}
		_, err := fmt.Fprintln(w, md)
		return err

	default:
		text := youapi.FormatForLLM(&resp)
		if demo {
			text = youapi.DemoBanner + "\n" + text
		}
		_, err := fmt.Fprint(w, text)
		return err
	}
}

func renderMarkdown(md string) (string, error) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && w < width {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
