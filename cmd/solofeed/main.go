package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"solofeed/internal/analytics"
	"solofeed/internal/api"
	"solofeed/internal/cmdlog"
	"solofeed/internal/config"
	"solofeed/internal/identity"
	"solofeed/internal/logging"
	"solofeed/internal/metrics"
	"solofeed/internal/model"
	"solofeed/internal/schedule"
	"solofeed/internal/theme"
	"solofeed/internal/util"
)

const defaultConfigPath = "./solofeed.yaml"

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var run func() error
	switch cmd {
	case "init":
		run = cmdInit
	case "serve":
		run = cmdServe
	case "post":
		run = cmdPost
	case "feed":
		run = cmdFeed
	case "notifications":
		run = cmdNotifications
	case "monitor":
		run = cmdMonitor
	case "actors":
		run = cmdActors
	case "schedule":
		run = cmdSchedule
	default:
		printHelp()
		return
	}
	if err := cmdlog.Run(cmd, run); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: solofeed <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init           Create a config file at ./solofeed.yaml")
	fmt.Println("  serve          Run the HTTP/websocket API and the engagement loop")
	fmt.Println("  post           Publish a post and fast-forward the community's reaction")
	fmt.Println("  feed           Print the feed")
	fmt.Println("  notifications  Print notifications")
	fmt.Println("  monitor        Show hourly engagement analytics")
	fmt.Println("  actors         List the synthetic community")
	fmt.Println("  schedule       Show the next non-quiet tick window")
}

// loadConfig reads the config and sets up logging from it.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return cfg, err
	}
	logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func cmdInit() error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfigPath, "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdServe() error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, clock.New())
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.StartServer(cfg.Metrics.Addr)
	apiSrv := api.NewServer(api.Deps{
		Feed: a.feed, Stories: a.stories, Engine: a.engine,
		Registry: a.registry, Events: a.db, Clock: a.clock,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           apiSrv.Handler(cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	theme.PrintBanner()
	logging.Info("serve_start", map[string]any{"addr": cfg.Server.Addr, "db": cfg.Storage.DBPath})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		apiSrv.Close()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	err = g.Wait()
	logging.Info("serve_stop", nil)
	return err
}

// cmdPost publishes a post and runs the loop on a virtual clock, so the whole
// reaction plays out without waiting in real time.
func cmdPost() error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	images := fs.String("images", "", "comma-separated image references")
	caption := fs.String("caption", "", "post caption")
	location := fs.String("location", "", "optional location")
	runFor := fs.Duration("run", 30*time.Second, "virtual time to simulate after posting")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	imgs := splitAndTrim(*images)
	if err := model.ValidateNewPost(imgs, *caption); err != nil {
		return err
	}

	mock := clock.NewMock()
	mock.Set(time.Now())
	a, err := openApp(context.Background(), cfg, mock)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.feed.CreatePost(imgs, *caption, util.NormalizeWhitespace(*location))
	a.loop.Advance(*runFor)

	p, err = a.feed.Post(p.ID)
	if err != nil {
		return err
	}
	printPost(p, mock.Now())
	for _, c := range p.Comments {
		fmt.Printf("    @%s: %s\n", c.Author.Username, c.Text)
	}
	fmt.Println("Notifications:")
	for _, n := range a.feed.Notifications() {
		if n.PostID == p.ID {
			fmt.Printf("  [%s] %s\n", n.Kind, n.Message)
		}
	}
	return nil
}

func printPost(p model.Post, now time.Time) {
	tags := util.Hashtags(p.Caption)
	fmt.Printf("%s  @%s  %s ago\n", p.ID, p.Author.Username, util.RelativeTime(p.CreatedAt, now))
	fmt.Printf("  %s\n", p.Caption)
	if len(tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(tags, ", "))
	}
	fmt.Printf("  likes=%d comments=%d liked=%v saved=%v\n", p.LikeCount, len(p.Comments), p.Liked, p.Saved)
}

func cmdFeed() error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	limit := fs.Int("limit", 20, "max posts to print")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	a, err := openApp(context.Background(), cfg, clock.New())
	if err != nil {
		return err
	}
	defer a.Close()
	posts := a.feed.Posts()
	if len(posts) == 0 {
		fmt.Println("No posts yet. Try: solofeed post -images a.jpg -caption 'Hello #world'")
		return nil
	}
	now := a.clock.Now()
	for i := 0; i < len(posts) && i < *limit; i++ {
		printPost(posts[i], now)
	}
	return nil
}

func cmdNotifications() error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	markSeen := fs.Bool("seen", false, "mark every notification as seen")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	a, err := openApp(context.Background(), cfg, clock.New())
	if err != nil {
		return err
	}
	defer a.Close()
	now := a.clock.Now()
	fmt.Printf("Unseen: %d\n", a.feed.UnseenCount())
	for _, n := range a.feed.Notifications() {
		mark := " "
		if !n.Seen {
			mark = "*"
		}
		fmt.Printf("%s %-4s %-8s %s\n", mark, util.RelativeTime(n.CreatedAt, now), n.Kind, n.Message)
	}
	if *markSeen {
		a.feed.MarkNotificationsSeen()
	}
	return nil
}

func cmdMonitor() error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	hours := fs.Int("hours", 24, "look-back window in hours")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	a, err := openApp(context.Background(), cfg, clock.New())
	if err != nil {
		return err
	}
	defer a.Close()
	end := a.clock.Now()
	events, err := a.db.LoadEventsRange(context.Background(), end.Add(-time.Duration(*hours)*time.Hour), end.Add(time.Second), "")
	if err != nil {
		return err
	}
	buckets := analytics.Hourly(events)
	if len(buckets) == 0 {
		fmt.Println("No engagement recorded in the window.")
	}
	for _, b := range buckets {
		fmt.Printf("%s -> %v (total %d)\n", b.Hour.Format("2006-01-02 15:00"), b.Counts, b.Total)
	}
	return nil
}

func cmdActors() error {
	fs := flag.NewFlagSet("actors", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	_ = fs.Parse(os.Args[2:])
	if _, err := loadConfig(*cfgPath); err != nil {
		return err
	}
	for _, a := range identity.Default().List() {
		badge := ""
		if a.Verified {
			badge = " ✓"
		}
		fmt.Printf("%-5s @%s%s  %s\n", a.ID, a.Username, badge, a.Personality)
	}
	return nil
}

func cmdSchedule() error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config path")
	quiet := fs.String("quiet", "", "quiet hours (UTC) comma-separated; defaults to the config")
	_ = fs.Parse(os.Args[2:])
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	qh := cfg.Engagement.QuietHours
	if *quiet != "" {
		qh = parseHours(*quiet)
	}
	next := schedule.NextWindow(time.Now().UTC(), qh)
	fmt.Println("Next window:", next.Format(time.RFC3339))
	return nil
}

func parseHours(s string) []int {
	var out []int
	for _, p := range splitAndTrim(s) {
		var h int
		if _, err := fmt.Sscanf(p, "%d", &h); err != nil {
			continue
		}
		if h >= 0 && h <= 23 {
			out = append(out, h)
		}
	}
	return out
}

func splitAndTrim(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
