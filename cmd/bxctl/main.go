package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/boilerex/bx/internal/browse"
	"github.com/boilerex/bx/internal/campus"
	"github.com/boilerex/bx/internal/config"
	"github.com/boilerex/bx/internal/entity"
	"github.com/boilerex/bx/internal/logging"
	"github.com/boilerex/bx/internal/market"
	"github.com/boilerex/bx/internal/session"
	"go.uber.org/zap"
)

func main() {
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.LoadOrDefault(session.ConfigPath())

	// Tee logger: diagnostics go to the profile log, warnings echo on stderr.
	profile := session.Resolve("")
	logger, err := logging.New(session.LogPath(profile), profile)
	if err != nil {
		logger = zap.NewNop()
	}
	client := entity.New(cfg.Backend.BaseURL, cfg.Backend.AppID, cfg.Backend.APIToken, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch args[0] {
	case "browse":
		cmdBrowse(ctx, client, args[1:], *jsonFlag)
	case "get":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: bxctl get <listing-id>")
			os.Exit(1)
		}
		cmdGet(ctx, client, args[1], *jsonFlag)
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: bxctl search <query>")
			os.Exit(1)
		}
		cmdSearch(ctx, client, strings.Join(args[1:], " "), *jsonFlag)
	case "locations":
		cmdLocations(*jsonFlag)
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: bxctl [--json] <command>

commands:
  browse [flags]     list marketplace listings
  get <id>           show one listing
  search <query>     natural language search
  locations          safe meetup locations

browse flags:
  --q <text>         title/description substring
  --category <name>  category filter
  --condition <name> condition filter
  --min <price>      minimum price
  --max <price>      maximum price (-1 = no ceiling)
  --sort <mode>      newest | price_asc | price_desc
  --sold             show sold instead of active`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdBrowse(ctx context.Context, client *entity.Client, args []string, asJSON bool) {
	fs := flag.NewFlagSet("browse", flag.ExitOnError)
	q := fs.String("q", "", "search term")
	category := fs.String("category", browse.All, "category filter")
	condition := fs.String("condition", browse.All, "condition filter")
	minPrice := fs.Float64("min", 0, "minimum price")
	maxPrice := fs.Float64("max", browse.OpenMax, "maximum price")
	sortBy := fs.String("sort", string(browse.SortNewest), "sort mode")
	sold := fs.Bool("sold", false, "show sold listings")
	_ = fs.Parse(args)

	listings, err := client.List(ctx)
	if err != nil {
		fatal(err)
	}

	criteria := browse.Criteria{
		SearchTerm: *q,
		Category:   *category,
		Condition:  *condition,
		PriceMin:   *minPrice,
		PriceMax:   *maxPrice,
		SortBy:     browse.SortMode(*sortBy),
		ShowSold:   *sold,
	}
	result := browse.Apply(listings, criteria)

	if asJSON {
		printJSON(result.Listings)
		return
	}
	for _, l := range result.Listings {
		status := ""
		if l.Sold() {
			status = " [sold]"
		}
		fmt.Printf("%-36s  %10s  %-22s  %s%s\n", l.ID, market.FormatPrice(l.Price), l.Category, l.Title, status)
	}
	if n := len(result.Excluded); n > 0 {
		fmt.Fprintf(os.Stderr, "(%d malformed listings hidden)\n", n)
	}
}

func cmdGet(ctx context.Context, client *entity.Client, id string, asJSON bool) {
	l, err := client.Get(ctx, id)
	if err != nil {
		fatal(err)
	}
	if asJSON {
		printJSON(l)
		return
	}
	fmt.Printf("%s\n%s\n\nCategory:  %s\nCondition: %s\nStatus:    %s\nViews:     %d\n",
		l.Title, market.FormatPrice(l.Price), l.Category, l.Condition, l.Status, l.Views)
	if l.Description != "" {
		fmt.Printf("\n%s\n", l.Description)
	}
}

func cmdSearch(ctx context.Context, client *entity.Client, query string, asJSON bool) {
	resp, err := client.SearchByVoice(ctx, query)
	if err != nil {
		fatal(err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "search failed"
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		os.Exit(1)
	}
	if asJSON {
		printJSON(resp.Results)
		return
	}
	if len(resp.Results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, r := range resp.Results {
		fmt.Printf("%-36s  %10s  %-22s  %s\n", r.ID, market.FormatPrice(r.Price), r.Category, r.Title)
	}
}

func cmdLocations(asJSON bool) {
	if asJSON {
		printJSON(campus.Locations)
		return
	}
	for _, loc := range campus.Locations {
		fmt.Printf("%-12s  %s  %-26s  %s\n", loc.ID, strings.Repeat("*", loc.SafetyRating), loc.CrowdLevel, loc.Name)
	}
	fmt.Println("\nsafety tips:")
	for _, tip := range campus.SafetyTips {
		fmt.Printf("  - %s\n", tip)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}
