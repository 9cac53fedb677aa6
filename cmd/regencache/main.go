package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/zapan/eventbus/internal/config"
	"github.com/zapan/eventbus/internal/events"
	"github.com/zapan/eventbus/internal/registry"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load config: %v\n", err)
		os.Exit(1)
	}

	filter := registry.NewFilter(cfg.Registry.WhiteList, cfg.Registry.BlackList)
	cache := registry.NewCache(cfg.Registry.CachePath)

	reg, err := registry.New(events.Source(), filter, cache)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to build registry: %v\n", err)
		os.Exit(1)
	}

	if err := reg.Regenerate(); err != nil {
		fmt.Fprintf(os.Stderr, "Regenerate failed: %v\n", err)
		os.Exit(1)
	}

	table := reg.Table()
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("--- Event registry (%d entries, cache: %s) ---\n", len(table), cfg.Registry.CachePath)
	for _, k := range keys {
		fmt.Printf("%-32s -> %s\n", k, table[k])
	}
}
