// Command staygrip resolves a search URL, runs the search once and prints
// the result page as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staygrip/internal/app"
	"staygrip/internal/config"
	"staygrip/internal/controller"
	"staygrip/internal/domain"
	"staygrip/internal/logging"
	"staygrip/internal/searchstate"
)

type output struct {
	URL        string                 `json:"url"`
	Params     map[string]interface{} `json:"params,omitempty"`
	Pagination domain.PageInfo        `json:"pagination"`
	Properties []domain.Property      `json:"properties"`
}

// collector is the controller's view for a single search
type collector struct {
	results chan domain.ResultPage
	failed  chan error
}

func newCollector() *collector {
	return &collector{results: make(chan domain.ResultPage, 1), failed: make(chan error, 1)}
}

func (c *collector) ShowLoading(domain.LoadingKind) {}

func (c *collector) ShowResults(page domain.ResultPage) {
	select {
	case c.results <- page:
	default:
	}
}

func (c *collector) ClearResults() {}

func (c *collector) Notify(message string, err error) {
	if err == nil {
		err = errors.New(message)
	} else {
		err = fmt.Errorf("%s: %w", message, err)
	}
	select {
	case c.failed <- err:
	default:
	}
}

func main() {
	var (
		configPath string
		envFile    string
		baseURL    string
		timeout    time.Duration
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config.toml (default: user config dir)")
	flag.StringVar(&envFile, "env", ".env", "Dotenv file with STAYGRIP_* overrides")
	flag.StringVar(&baseURL, "api", "", "Search API base URL (overrides config)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	flag.BoolVar(&verbose, "v", false, "Log to stderr")
	flag.Parse()

	href := app.SearchRoute
	if flag.NArg() > 0 {
		href = flag.Arg(0)
	}

	if err := run(href, configPath, envFile, baseURL, timeout, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "staygrip: %v\n", err)
		os.Exit(1)
	}
}

func run(href, configPath, envFile, baseURL string, timeout time.Duration, verbose bool) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.NewConfigServiceWithBus(nil, configPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	logger := logging.Nop()
	if verbose {
		logger = logging.NewSlogAdapter(logging.SlogConfig{
			Writer:   os.Stderr,
			Level:    logging.ParseLevel("debug"),
			UseColor: true,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	view := newCollector()
	engine := app.NewEngine(cfg, nil, logger, controller.WithView(view), controller.WithNotifier(view))
	defer engine.Close()

	// a listing URL bypasses the search state
	if id := app.ListIDFromHref(href); id > 0 {
		p, err := engine.Client.GetByListID(ctx, id)
		if err != nil {
			return fmt.Errorf("listing %d: %w", id, err)
		}
		page := domain.SinglePropertyPage(p, 1)
		return printJSON(output{URL: href, Pagination: page.Pagination, Properties: page.Properties})
	}

	nav, err := engine.Open(ctx, href)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", href, err)
	}
	stopped := engine.Start(ctx)
	defer func() {
		cancel()
		<-stopped
	}()

	select {
	case page := <-view.results:
		return printJSON(output{
			URL:        engine.Router.CurrentURL(),
			Params:     paramsMap(engine.Store.SearchParams()),
			Pagination: page.Pagination,
			Properties: page.Properties,
		})
	case err := <-view.failed:
		return err
	case <-ctx.Done():
		return fmt.Errorf("no results for %s: %w", nav.Href, ctx.Err())
	}
}

func paramsMap(p searchstate.SearchParams) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range p.Values() {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
