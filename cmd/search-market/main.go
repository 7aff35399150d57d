package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/raine/photo-pricer/internal/config"
	"github.com/raine/photo-pricer/internal/market"
	"github.com/raine/photo-pricer/internal/recognizer"
)

func main() {
	query := flag.String("q", "", "Search seed, e.g. \"Apple MacBook Pro used for sale\"")
	pass := flag.String("pass", string(market.PassShopping), "Query variants: shopping or web")
	condition := flag.String("condition", "", "Condition appended to the buy variant")
	rows := flag.Int("rows", market.DefaultMaxResults, "Maximum number of hits")
	minPrice := flag.Float64("min-price", 0, "Minimum price filter")
	maxPrice := flag.Float64("max-price", 0, "Maximum price filter")
	rawJSON := flag.Bool("json", false, "Output raw JSON only")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *query == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -q <query> [-pass shopping|web]\n", os.Args[0])
		os.Exit(2)
	}

	config.LoadEnvFile()
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	searcher, closeSearcher, err := recognizer.NewSearcher(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeSearcher()

	hits, err := market.New(searcher).Search(ctx, *query, market.Options{
		Pass:       market.Pass(*pass),
		MinPrice:   *minPrice,
		MaxPrice:   *maxPrice,
		MaxResults: *rows,
		Condition:  *condition,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	summary := market.Summarize(hits)

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(map[string]any{"hits": hits, "pricing": summary}, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("Found %d hits (%d priced)\n\n", len(hits), summary.Count)

	for i, hit := range hits {
		price := "N/A"
		if hit.Price > 0 {
			price = fmt.Sprintf("%.2f %s", hit.Price, hit.Currency)
		}
		fmt.Printf("%d. %s - %s\n", i+1, hit.Title, price)
		fmt.Printf("   %s\n", hit.Link)
	}

	if summary.Count > 0 {
		fmt.Printf("\nAverage %.2f, range %.2f - %.2f, suggested %.2f %s\n",
			summary.Average, summary.Min, summary.Max, summary.Suggested, summary.Currency)
	}
}
