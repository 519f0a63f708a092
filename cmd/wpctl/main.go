package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/wepublish/wepublish-api/pkg/publishing"
	"github.com/wepublish/wepublish-api/pkg/publishing/api"
	"github.com/wepublish/wepublish-api/pkg/publishing/archive"
	"github.com/wepublish/wepublish-api/pkg/publishing/config"
	repopg "github.com/wepublish/wepublish-api/pkg/publishing/repo/postgres"
	"github.com/wepublish/wepublish-api/pkg/publishing/scheduler"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cliSession is the identity administrative commands run as.
var cliSession = &publishing.Session{UserID: "wpctl", Roles: []publishing.Role{publishing.RoleAdmin}}

func loadConfig() (*config.ServerConfig, error) {
	cfg, err := config.Load(config.WithDotEnv(), config.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func postgresURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseType != config.DatabasePostgres {
		return "", fmt.Errorf("DATABASE_URL must point at postgres for migrations")
	}
	return cfg.DatabaseURL, nil
}

// newServices builds the services the way the server does. The caller must
// defer Close().
func newServices(ctx context.Context) (*config.Services, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	services, err := cfg.BuildServices(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing services: %w", err)
	}
	return services, nil
}

func kindFor(name string) (publishing.Kind, error) {
	switch strings.ToLower(name) {
	case "article", "articles":
		return publishing.KindArticle, nil
	case "page", "pages":
		return publishing.KindPage, nil
	default:
		return "", fmt.Errorf("unknown kind %q (use articles or pages)", name)
	}
}

func serviceFor(services *config.Services, name string) (publishing.Service, error) {
	kind, err := kindFor(name)
	if err != nil {
		return nil, err
	}
	if kind == publishing.KindPage {
		return services.Pages, nil
	}
	return services.Articles, nil
}

var rootCmd = &cobra.Command{
	Use:          "wpctl",
	Short:        "Administer articles and pages",
	SilenceUsage: true,
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := postgresURL()
		if err != nil {
			return err
		}
		if err := repopg.MigrateUp(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := postgresURL()
		if err != nil {
			return err
		}
		if err := repopg.MigrateDown(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the schema is at the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := postgresURL()
		if err != nil {
			return err
		}
		if err := repopg.CheckMigrationStatus(url); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Create articles and pages from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening seed file: %w", err)
		}
		defer f.Close()

		ctx := cmd.Context()
		services, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer services.Close()

		return seed(ctx, services, f, cmd.OutOrStdout())
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Publish pending revisions whose publish time has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		services, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer services.Close()

		promoted := scheduler.NewScheduler(0, slog.Default(), services.Articles, services.Pages).RunOnce(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "Promoted %d item(s)\n", promoted)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list <articles|pages>",
	Short: "List articles or pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		services, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer services.Close()

		svc, err := serviceFor(services, args[0])
		if err != nil {
			return err
		}
		req, err := listRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		return list(ctx, svc, req, cmd.OutOrStdout())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <articles|pages> <id>",
	Short: "Show the archived snapshots of an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := kindFor(args[0])
		if err != nil {
			return err
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}

		ctx := cmd.Context()
		services, err := newServices(ctx)
		if err != nil {
			return err
		}
		defer services.Close()

		if services.Archive == nil {
			return fmt.Errorf("no archive configured (set ARCHIVE_URL)")
		}
		return history(ctx, services.Archive, kind, id, cmd.OutOrStdout())
	},
}

func history(ctx context.Context, sink *archive.Sink, kind publishing.Kind, id uuid.UUID, out io.Writer) error {
	snapshots, err := sink.History(ctx, kind, id)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return fmt.Errorf("%s %s has no archived history", kind, id)
	}

	rows := make([][]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		title := ""
		if latest := snapshot.Item.Latest(); latest != nil {
			title = runewidth.Truncate(latest.Title, maxTitleWidth, "…")
		}
		rows = append(rows, []string{
			snapshot.At.Format(time.RFC3339),
			snapshot.Event,
			stateSummary(snapshot.Item),
			title,
		})
	}
	writeTable(out, []string{"AT", "EVENT", "STATE", "TITLE"}, rows)
	return nil
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		subject, _ := cmd.Flags().GetString("sub")
		roles, _ := cmd.Flags().GetStringSlice("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := mintToken([]byte(cfg.JWTSecret), subject, roles, ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func mintToken(secret []byte, subject string, roles []string, ttl time.Duration, now time.Time) (string, error) {
	claims := map[string]interface{}{
		"sub":          subject,
		"iat":          now.Unix(),
		api.ClaimRoles: roles,
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	_, token, err := api.NewTokenAuth(secret).Encode(claims)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return token, nil
}

func listRequestFromFlags(cmd *cobra.Command) (publishing.ListRequest, error) {
	flags := cmd.Flags()
	title, _ := flags.GetString("title")
	tags, _ := flags.GetStringSlice("tag")
	sort, _ := flags.GetString("sort")
	order, _ := flags.GetString("order")
	take, _ := flags.GetInt("take")

	req := publishing.ListRequest{
		Filter: publishing.Filter{Title: title, Tags: tags},
		Sort:   publishing.SortField(sort),
		Order:  publishing.SortOrder(order),
		Take:   take,
	}
	for name, dst := range map[string]**bool{
		"published": &req.Filter.Published,
		"draft":     &req.Filter.Draft,
		"pending":   &req.Filter.Pending,
	} {
		if flags.Changed(name) {
			v, err := flags.GetBool(name)
			if err != nil {
				return req, err
			}
			*dst = &v
		}
	}
	return req, nil
}

func list(ctx context.Context, svc publishing.Service, req publishing.ListRequest, out io.Writer) error {
	conn, err := svc.List(ctx, cliSession, req)
	if err != nil {
		return err
	}
	writeTable(out, itemHeaders, itemRows(conn.Nodes))
	fmt.Fprintf(out, "\n%d of %d\n", len(conn.Nodes), conn.TotalCount)
	return nil
}

func init() {
	// migrate subcommands
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	listCmd.Flags().String("title", "", "Only items whose title contains this text")
	listCmd.Flags().StringSlice("tag", nil, "Only items carrying all of these tags")
	listCmd.Flags().Bool("published", false, "Only items with (or without) a published revision")
	listCmd.Flags().Bool("draft", false, "Only items with (or without) a draft")
	listCmd.Flags().Bool("pending", false, "Only items with (or without) a pending revision")
	listCmd.Flags().String("sort", string(publishing.SortModifiedAt), "Sort field")
	listCmd.Flags().String("order", string(publishing.SortDescending), "Sort order (asc or desc)")
	listCmd.Flags().IntP("take", "n", publishing.DefaultTake, "Maximum number of items to show")

	tokenCmd.Flags().String("sub", "wpctl", "Subject (user id) of the token")
	tokenCmd.Flags().StringSlice("role", []string{publishing.RoleAdmin.ID}, "Role ids granted by the token")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime, 0 for no expiry")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tokenCmd)
}
