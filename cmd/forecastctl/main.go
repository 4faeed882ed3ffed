// Package main implements forecastctl, a terminal client for the
// forecaster service. It fetches the latest snapshot of a dataset and
// renders it as a table, optionally refreshing at an interval.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/rspadim/NNS/cmd/forecastctl/config"
	"github.com/rspadim/NNS/pkg/client"
)

func main() {
	cfg := config.ParseFlags()
	c := client.NewForecasterClientWithTimeout(cfg.ForecasterURL, cfg.Timeout)

	if err := show(c, cfg); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	if !cfg.Watch {
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for range ticker.C {
		if err := show(c, cfg); err != nil {
			pterm.Error.Println(err)
		}
	}
}

// show fetches the latest snapshot and renders it.
func show(c *client.ForecasterClient, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	res, err := c.GetSnapshot(ctx, cfg.Dataset)
	if err != nil {
		return err
	}

	render(res)
	return nil
}

func render(res *client.SnapshotResult) {
	snap := res.Snapshot

	pterm.DefaultSection.Printfln("%s (generated %s, objective %s, lag depth %d)",
		snap.Dataset, snap.GeneratedAt.Format(time.RFC3339), snap.Objective, snap.LagDepth)
	if res.Stale {
		pterm.Warning.Println("snapshot is stale")
	}

	data := make(pterm.TableData, 0, len(snap.Values)+1)
	data = append(data, append([]string{"step"}, snap.Names...))
	for t, row := range snap.Values {
		line := make([]string, 0, len(row)+1)
		line = append(line, strconv.Itoa(t+1))
		for _, v := range row {
			line = append(line, strconv.FormatFloat(v, 'f', 4, 64))
		}
		data = append(data, line)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}
