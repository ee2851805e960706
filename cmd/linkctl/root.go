package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/InQaaaaGit/link_admin.git/internal/buildinfo"
	"github.com/InQaaaaGit/link_admin.git/internal/client"
	"github.com/InQaaaaGit/link_admin.git/internal/dashboard"
	"github.com/InQaaaaGit/link_admin.git/internal/models"
	"github.com/spf13/cobra"
)

type cliApp struct {
	server    string
	apiPrefix string
	username  string
	password  string
	timeout   time.Duration
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	cmd := &cobra.Command{
		Use:          "linkctl",
		Short:        "Link admin console client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # List users with link blocks, second page
  linkctl users --page 2

  # Replace all link blocks of alice
  linkctl save alice --block "https://a.example" --block "https://b.example"

  # Append a block to the ones alice already has
  linkctl save alice --append --block "https://c.example"
`),
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&app.server, "server", envOr("LINKCTL_SERVER", "http://localhost:3000"), "console base URL (env: LINKCTL_SERVER)")
	flags.StringVar(&app.apiPrefix, "api-prefix", envOr("API_BASE_URL", "/api"), "API prefix (env: API_BASE_URL)")
	flags.StringVar(&app.username, "user", envOr("ADMIN_USER", "admin"), "admin username (env: ADMIN_USER)")
	flags.StringVar(&app.password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password (env: ADMIN_PASSWORD)")
	flags.DurationVar(&app.timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(newUsersCmd(app), newSaveCmd(app), newVersionCmd())
	return cmd
}

// connect создает клиента и выполняет вход; cookie живет до конца команды
func (a *cliApp) connect(ctx context.Context) (*client.Client, error) {
	c := client.New(a.server, a.apiPrefix, client.WithTimeout(a.timeout))
	if err := c.Login(ctx, a.username, a.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

// newBoard создает доску без отложенного сброса кнопки: процесс завершается сразу после сохранения
func newBoard(saver dashboard.Saver) *dashboard.Board {
	return dashboard.NewBoard(saver, dashboard.WithAfterFunc(func(time.Duration, func()) {}))
}

func newUsersCmd(app *cliApp) *cobra.Command {
	var (
		search string
		page   int
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users that have link blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := app.connect(ctx)
			if err != nil {
				return err
			}

			board := newBoard(c)
			if result := board.Load(ctx, c); result.Failed() {
				return fmt.Errorf("load users: %w", result.Err)
			}
			board.Search(search)
			board.GoTo(page)

			return printView(cmd.OutOrStdout(), board.View())
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive username filter")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return cmd
}

func newSaveCmd(app *cliApp) *cobra.Command {
	var (
		blocks       []string
		appendBlocks bool
	)

	cmd := &cobra.Command{
		Use:   "save <username>",
		Short: "Replace or extend the link blocks of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			username := args[0]
			c, err := app.connect(ctx)
			if err != nil {
				return err
			}

			if !appendBlocks {
				mappings := make([]models.LinkMapping, 0, len(blocks))
				for _, b := range blocks {
					mappings = append(mappings, models.LinkMapping{Links: b})
				}
				if err := c.SaveLinkMappings(ctx, username, mappings); err != nil {
					return saveError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d link blocks saved\n", username, len(mappings))
				return nil
			}

			board := newBoard(c)
			if result := board.Load(ctx, c); result.Failed() {
				return fmt.Errorf("load users: %w", result.Err)
			}
			if !board.Reveal(username) {
				return fmt.Errorf("user %q has no link blocks yet, save without --append", username)
			}
			for _, b := range blocks {
				if err := board.AddLinkBlock(username); err != nil {
					return err
				}
				current, err := board.Blocks(username)
				if err != nil {
					return err
				}
				if err := board.SetBlock(username, len(current)-1, b); err != nil {
					return err
				}
			}

			result := board.SaveUser(ctx, username)
			if result.Err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Alert)
				return result.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d link blocks saved\n", username, len(result.Mappings))
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&blocks, "block", "b", nil, "link block content, one per flag, newline separated links")
	cmd.Flags().BoolVar(&appendBlocks, "append", false, "append blocks to the existing ones instead of replacing them")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildinfo.NewInfo(buildVersion, buildDate, buildCommit).Print(cmd.OutOrStdout())
		},
	}
}

func saveError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("save failed: %s", apiErr.Message)
	}
	return fmt.Errorf("save failed: %w", err)
}

func printView(w io.Writer, view dashboard.View) error {
	var sb strings.Builder
	if view.Message != "" {
		sb.WriteString(view.Message + "\n")
	}
	for _, card := range view.Cards {
		sb.WriteString(card.Username + "\n")
		for _, b := range card.Blocks {
			fmt.Fprintf(&sb, "  [%d] %s\n", b.Index+1, strings.ReplaceAll(b.Content, "\n", "\n      "))
		}
	}
	if view.Pagination.Visible {
		fmt.Fprintf(&sb, "page %d of %d\n", view.Page, view.Pagination.TotalPages)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
