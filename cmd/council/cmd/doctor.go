package cmd

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider connectivity and configuration",
	Long:  "Verify that every enabled provider is reachable and configured with credentials.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type providerCheck struct {
	name string
	err  error
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registry := buildRegistry(cfg)

	providers := cfg.EnabledProviders()
	if len(providers) == 0 {
		return fmt.Errorf("no providers are enabled")
	}

	fmt.Println("Checking providers...")
	fmt.Println()

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	var mu sync.Mutex
	results := make([]providerCheck, 0, len(providers))

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range providers {
		g.Go(func() error {
			client, err := registry.Get(name)
			if err == nil {
				err = client.Ping(ctx)
			}
			mu.Lock()
			results = append(results, providerCheck{name: name, err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })

	healthy := 0
	for _, r := range results {
		if r.err != nil {
			fmt.Printf("  ✗ %-10s %v\n", r.name, r.err)
			continue
		}
		fmt.Printf("  ✓ %-10s ok\n", r.name)
		healthy++
	}

	fmt.Println()
	if healthy < cfg.Council.MinResponses {
		return fmt.Errorf("only %d of %d providers are healthy; at least %d are needed for a council",
			healthy, len(providers), cfg.Council.MinResponses)
	}
	fmt.Printf("%d/%d providers healthy\n", healthy, len(providers))
	return nil
}
