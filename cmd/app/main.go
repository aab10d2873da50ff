package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/panda-moodle/moodle-repository-pandavideo/internal/config"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/daemon"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/handlers"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/models"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/panda"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/services"
	"github.com/panda-moodle/moodle-repository-pandavideo/internal/storage"
	"github.com/panda-moodle/moodle-repository-pandavideo/web"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	cfg *config.Config

	token        string
	port         int
	dbPath       string
	cacheBackend string
	redisAddr    string
	logLevel     string
)

// app holds the wired services shared by every command
type app struct {
	client  *panda.Client
	cache   handlers.CachePurger
	tmpl    *template.Template
	listing *services.ListingService
	player  *services.PlayerService
	closeFn func()
}

func main() {
	cfg = config.Load()

	rootCmd := &cobra.Command{
		Use:   "panda-repository",
		Short: "Browse and embed Panda Video content",
		Long: `panda-repository serves a picker API over a Panda Video account: folder
browsing with breadcrumbs, video search, metadata lookups and embeddable players.`,
		PersistentPreRun: applyFlags,
		Run:              runServer,
	}

	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Panda API token (or set PANDA_TOKEN env var)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the sqlite database")
	rootCmd.PersistentFlags().StringVar(&cacheBackend, "cache", "", "Response cache backend: sqlite, redis or none")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Redis address when --cache=redis")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().IntVar(&port, "port", 0, "Port to run the web server on")

	rootCmd.AddCommand(
		videosCmd(),
		foldersCmd(),
		pathCmd(),
		propertiesCmd(),
		oembedCmd(),
		analyticsCmd(),
		bandwidthCmd(),
		playerCmd(),
		purgeCmd(),
		startCmd(),
		stopCmd(),
		statusCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func applyFlags(cmd *cobra.Command, args []string) {
	if token != "" {
		cfg.Token = token
	}
	if port != 0 {
		cfg.Port = port
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cacheBackend != "" {
		cfg.CacheBackend = cacheBackend
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
}

func newApp() (*app, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := storage.NewRepository(db)

	a := &app{closeFn: func() {}}

	var cache panda.Cache
	switch cfg.CacheBackend {
	case config.CacheRedis:
		rc, err := storage.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		cache, a.cache = rc, rc
		a.closeFn = func() { rc.Close() }
	case config.CacheNone:
	default:
		cache, a.cache = repo, repo
	}

	a.client = panda.NewClient(cfg, cache,
		panda.WithTimeout(cfg.HTTPTimeout),
		panda.WithBaseURLs(cfg.APIBaseURL, cfg.DataBaseURL),
		panda.WithDashboardURL(cfg.DashboardURL),
		panda.WithRateLimit(cfg.RateLimitPerMin),
	)

	if a.tmpl, err = web.Templates(); err != nil {
		return nil, err
	}

	a.listing = services.NewListingService(a.client, repo, services.ListingOptions{
		ManageURL:  cfg.ManageURL,
		RootLabel:  cfg.RootLabel,
		FolderIcon: "/static/folder.svg",
		HomeIcon:   "/static/home.svg",
	})
	a.player = services.NewPlayerService(a.client, a.tmpl)

	if !a.client.Enabled() {
		slog.Warn("no usable Panda token configured, only cached and oEmbed lookups will work")
	}

	return a, nil
}

func runServer(cmd *cobra.Command, args []string) {
	a, err := newApp()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.closeFn()

	server := handlers.NewServer(cfg, a.client, a.listing, a.player, a.cache, a.tmpl, web.StaticFS)

	slog.Info("starting panda-repository", "port", cfg.Port, "cache", cfg.CacheBackend, "db", cfg.DBPath)

	if err := server.Run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// withApp runs fn with a wired app and prints its result as JSON
func withApp(fn func(ctx context.Context, a *app) (interface{}, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout*2)
		defer cancel()

		result, err := fn(ctx, a)
		if err != nil {
			return err
		}
		if s, ok := result.(string); ok {
			fmt.Println(s)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func videosCmd() *cobra.Command {
	var page, limit int
	var title string
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List videos",
		RunE: withApp(func(ctx context.Context, a *app) (interface{}, error) {
			return a.client.ListVideos(ctx, page, limit, title)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 100, "Videos per page")
	cmd.Flags().StringVar(&title, "title", "", "Filter by title")
	return cmd
}

func foldersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List folders",
		RunE: withApp(func(ctx context.Context, a *app) (interface{}, error) {
			return a.client.ListFolders(ctx)
		}),
	}
}

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path [folder-id]",
		Short: "Print the breadcrumb of a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var folderID models.FolderID
			if len(args) == 1 {
				folderID = models.FolderID(args[0])
			}
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				folders, err := a.client.ListFolders(ctx)
				if err != nil {
					return nil, err
				}
				return services.ResolvePath(folders.Folders, folderID, cfg.RootLabel)
			})(cmd, args)
		},
	}
}

func propertiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "properties <url>",
		Short: "Show the properties of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				return a.client.GetVideoProperties(ctx, args[0])
			})(cmd, args)
		},
	}
}

func oembedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "oembed <url>",
		Short: "Resolve the oEmbed player of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				return a.client.ResolveOEmbed(ctx, args[0])
			})(cmd, args)
		},
	}
}

func analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <video-id>",
		Short: "Show the analytics of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				return a.client.GetAnalytics(ctx, args[0])
			})(cmd, args)
		},
	}
}

func bandwidthCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "bandwidth <video-id>",
		Short: "Show the traffic report of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from, to time.Time
			var err error
			if start != "" {
				if from, err = time.Parse("2006-01-02", start); err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
			}
			if end != "" {
				if to, err = time.Parse("2006-01-02", end); err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
			}
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				return a.client.GetBandwidth(ctx, args[0], from, to)
			})(cmd, args)
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	return cmd
}

func playerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <url>",
		Short: "Render the embed markup of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) (interface{}, error) {
				return a.player.Render(ctx, args[0], nil), nil
			})(cmd, args)
		},
	}
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Drop every cached API response",
		RunE: withApp(func(ctx context.Context, a *app) (interface{}, error) {
			if a.cache == nil {
				return map[string]int64{"removed": 0}, nil
			}
			removed, err := a.cache.Purge(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int64{"removed": removed}, nil
		}),
	}
}

func newDaemon() (*daemon.Daemon, error) {
	return daemon.New(filepath.Dir(cfg.DBPath))
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the web server in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDaemon()
			if err != nil {
				return err
			}

			pid, err := d.Start(serverArgs(cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Printf("panda-repository started (PID: %d)\n", pid)
			fmt.Printf("Logs: %s\n", d.LogFile)
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to run the web server on")
	return cmd
}

// serverArgs rebuilds the flags set on the command line, so the child runs
// the root command with the same settings.
func serverArgs(flags *pflag.FlagSet) []string {
	var args []string
	flags.Visit(func(f *pflag.Flag) {
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDaemon()
			if err != nil {
				return err
			}
			if err := d.Stop(); err != nil {
				return err
			}
			fmt.Println("panda-repository stopped")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the background web server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDaemon()
			if err != nil {
				return err
			}
			if pid, running := d.IsRunning(); running {
				fmt.Printf("panda-repository is running (PID: %d)\n", pid)
				return nil
			}
			fmt.Println("panda-repository is not running")
			return nil
		},
	}
}
