// cmd/tools/listings-cli/cmd_search.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"listings-workers/internal/common/config"
	"listings-workers/internal/common/database"
	"listings-workers/internal/listings"
	"listings-workers/internal/models"
	"listings-workers/internal/search"
)

// filterFlags are the structured filters shared by build-request and search.
type filterFlags struct {
	locations  []string
	categories []string
	minPrice   float64
	maxPrice   float64
	ratings    []float64
	sortBy     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.locations, "location", nil, "Location filter (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Category filter (repeatable or comma separated)")
	cmd.Flags().Float64Var(&f.minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&f.maxPrice, "max-price", 0, "Maximum price (0 = open ended)")
	cmd.Flags().Float64SliceVar(&f.ratings, "rating", nil, "Rating threshold(s)")
	cmd.Flags().StringVar(&f.sortBy, "sort", models.SortRelevance, "Sort: relevance, price_asc, price_desc, rating, newest")
}

func (f *filterFlags) filters() (models.Filters, error) {
	sortBy := strings.ToLower(strings.TrimSpace(f.sortBy))
	valid := false
	for _, s := range models.ValidSortOptions {
		if s == sortBy {
			valid = true
			break
		}
	}
	if !valid {
		return models.Filters{}, fmt.Errorf("invalid --sort %q", f.sortBy)
	}
	if f.minPrice < 0 || f.maxPrice < 0 {
		return models.Filters{}, fmt.Errorf("prices must not be negative")
	}
	if f.maxPrice > 0 && f.minPrice > f.maxPrice {
		return models.Filters{}, fmt.Errorf("--min-price %v is above --max-price %v", f.minPrice, f.maxPrice)
	}

	return models.Filters{
		Locations:  f.locations,
		Categories: f.categories,
		PriceRange: models.PriceRange{Min: f.minPrice, Max: f.maxPrice},
		Ratings:    f.ratings,
		SortBy:     sortBy,
	}, nil
}

// backendFlags select the listings API, either directly or through config.yaml.
type backendFlags struct {
	baseURL    string
	configPath string
	timeout    time.Duration
	noCache    bool
}

func (b *backendFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&b.baseURL, "base-url", "", "Listings API base URL (skips config.yaml)")
	cmd.Flags().StringVar(&b.configPath, "config", "", "Config file (default: configs/config.yaml lookup)")
	cmd.Flags().DurationVar(&b.timeout, "timeout", 10*time.Second, "Request timeout")
	cmd.Flags().BoolVar(&b.noCache, "no-cache", false, "Bypass the redis response cache")
}

// connect builds the listings client. The returned func releases the cache
// connection, if any.
func (b *backendFlags) connect(ctx context.Context, opts *rootOptions) (*listings.Client, string, func(), error) {
	noop := func() {}

	if b.baseURL != "" {
		client := listings.NewClient(listings.ClientConfig{
			BaseURL: strings.TrimRight(b.baseURL, "/"),
			Timeout: b.timeout,
		}, nil, nil, opts.log)
		return client, search.ListingsPath, noop, nil
	}

	var (
		cfg *config.Config
		err error
	)
	if b.configPath != "" {
		cfg, err = config.LoadFromFile(b.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, "", noop, err
	}

	var cache *database.RedisClient
	if !b.noCache && cfg.Database.Redis.Enabled() && cfg.ListingsAPI.CacheTTL > 0 {
		cache, err = database.NewRedis(cfg.Database.Redis)
		if err == nil {
			err = cache.Ping(ctx)
		}
		if err != nil {
			opts.log.Warn("redis unavailable, cache disabled", map[string]interface{}{"error": err})
			cache = nil
		}
	}

	timeout := config.GetDuration(cfg.ListingsAPI.Timeout)
	if timeout <= 0 {
		timeout = b.timeout
	}
	client := listings.NewClient(listings.ClientConfig{
		BaseURL:  cfg.ListingsAPI.TrimmedBaseURL(),
		Timeout:  timeout,
		CacheTTL: time.Duration(cfg.ListingsAPI.CacheTTL) * time.Second,
	}, nil, cache, opts.log)

	release := noop
	if cache != nil {
		release = func() { _ = cache.Close() }
	}
	return client, cfg.Search.ListingsPath, release, nil
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify [query]",
		Short: "Classify a query as location or keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := search.ClassifyQuery(args[0])
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), c)
			}
			kind := "keyword"
			if c.IsLocation {
				kind = "location"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) normalized=%q\n", kind, c.Reason, c.Normalized)
			return nil
		},
	}
}

func newBuildRequestCmd(opts *rootOptions) *cobra.Command {
	var (
		ff       filterFlags
		basePath string
	)
	cmd := &cobra.Command{
		Use:   "build-request [query]",
		Short: "Render the listings request path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			path := search.BuildPath(basePath, query, filters)
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"path":        path,
					"queryParams": search.QueryParams(query, filters),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&basePath, "path", search.ListingsPath, "Base path of the listings endpoint")
	return cmd
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		ff    filterFlags
		bf    backendFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Classify, fetch and filter listings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := ff.filters()
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), bf.timeout)
			defer cancel()

			client, basePath, release, err := bf.connect(ctx, opts)
			if err != nil {
				return err
			}
			defer release()

			result := listings.NewService(client, basePath, opts.log).Search(ctx, query, filters)
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printResult(cmd.OutOrStdout(), result, limit)
			if result.Error != "" {
				return fmt.Errorf("search failed: %s", result.Error)
			}
			return nil
		},
	}
	ff.register(cmd)
	bf.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 20, "Listings to print (0 = all)")
	return cmd
}

func newInteractiveCmd(opts *rootOptions) *cobra.Command {
	var bf backendFlags
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Search every line read from stdin; older searches are superseded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			client, basePath, release, err := bf.connect(ctx, opts)
			if err != nil {
				return err
			}
			defer release()

			searcher := listings.NewSearcher(listings.NewService(client, basePath, opts.log))
			out := cmd.OutOrStdout()

			var (
				wg sync.WaitGroup
				mu sync.Mutex
			)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					continue
				}
				sctx, cancel := context.WithTimeout(ctx, bf.timeout)
				run := searcher.Start(sctx, query, models.Filters{})
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer cancel()

					result := run()
					if result.Stale {
						return
					}
					mu.Lock()
					defer mu.Unlock()
					printResult(out, result, 5)
				}()
			}
			wg.Wait()
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			if latest := searcher.Latest(); latest != nil {
				fmt.Fprintf(out, "latest: %q (%d results, %d searches issued)\n",
					latest.Query, latest.Count(), searcher.Issued())
			}
			return nil
		},
	}
	bf.register(cmd)
	return cmd
}

func printResult(w io.Writer, r *listings.SearchResult, limit int) {
	kind := "keyword"
	if r.IsLocation {
		kind = "location"
	}
	fmt.Fprintf(w, "%s [%s/%s] %s\n", r.Query, kind, r.Reason, r.Path)
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "  %d of %d listings\n", r.Count(), r.BackendCount)
	for i, l := range r.Listings {
		if limit > 0 && i >= limit {
			fmt.Fprintf(w, "  ... %d more\n", r.Count()-limit)
			break
		}
		loc := l.MatchedLocation
		if loc == "" {
			loc = l.LocationText()
		}
		fmt.Fprintf(w, "  %-10s %-40s %s\n", l.ID, l.Title, loc)
	}
}
