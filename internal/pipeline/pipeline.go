// Package pipeline wires the streaming core (internal/fetcher,
// internal/stats) to its downstream sinks (internal/render,
// internal/broadcast, internal/notify) through an internal/events bus,
// and owns a run-level identifier for log/wire correlation.
//
// Run follows the shape of a typical process entrypoint: load config,
// init telemetry, wire shared infrastructure, run the core to completion,
// print a final summary.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/debs2013/possession/internal/broadcast"
	cfgpkg "github.com/debs2013/possession/internal/config"
	gamecontext "github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/events"
	"github.com/debs2013/possession/internal/fetcher"
	"github.com/debs2013/possession/internal/linesource"
	"github.com/debs2013/possession/internal/metacache"
	"github.com/debs2013/possession/internal/metadata"
	"github.com/debs2013/possession/internal/notify"
	"github.com/debs2013/possession/internal/render"
	"github.com/debs2013/possession/internal/stats"
	"github.com/debs2013/possession/internal/telemetry"
)

// Run loads the metadata registry, drives the fetcher/stats core to
// completion over cfg.StreamPath, and fans every emitted partial out to
// whichever sinks cfg enables. It returns a non-nil error on a parse
// failure or a missing metadata file; the caller (cmd/possession) prints
// one diagnostic line and exits 1.
func Run(cfg *cfgpkg.Config) error {
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Reset()

	runID := uuid.New().String()
	telemetry.Infof("possession: starting run %s (time-units=%ds max-distance=%gm threads=%d batch-size=%d)",
		runID, cfg.TimeUnitsSec, cfg.MaxDistanceM, cfg.Threads, cfg.BatchSize)

	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	telemetry.Infof("possession: loaded %d players and %d ball sensors", len(reg.Players), len(reg.BallSids))

	ctx := gamecontext.New(reg.Players, reg.BallSids)

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	bus := events.NewBus()
	renderer := render.New(out, ctx)
	renderer.Subscribe(bus)

	if cfg.BroadcastAddr != "" {
		srv := broadcast.NewServer(bus)
		go func() {
			if err := srv.ListenAndServe(cfg.BroadcastAddr); err != nil {
				telemetry.Warnf("possession: broadcast server stopped: %v", err)
			}
		}()
	}
	if cfg.NotifyURL != "" {
		notify.NewNotifier(cfg.NotifyURL).Subscribe(bus, runID)
	}

	src, err := linesource.OpenFile(cfg.StreamPath)
	if err != nil {
		return fmt.Errorf("pipeline: open stream: %w", err)
	}
	defer src.Close()

	f := fetcher.New(src, ctx, time.Duration(cfg.TimeUnitsSec)*time.Second, cfg.BatchSize)
	engine := stats.New(ctx, cfg.MaxDistanceM, cfg.Threads)

	start := time.Now()
	for {
		batch, ok := f.NextBatch()
		if !ok {
			break
		}
		telemetry.Metrics.BatchesEmitted.Inc()
		telemetry.Metrics.CurrentBatchSize.Set(int64(len(batch.Data)))

		foldStart := time.Now()
		partial, err := engine.Fold(context.Background(), batch)
		telemetry.Metrics.BatchFoldLatency.Record(time.Since(foldStart))
		if err != nil {
			return fmt.Errorf("pipeline: fold batch: %w", err)
		}
		if partial != nil {
			telemetry.Metrics.PartialsEmitted.Inc()
			bus.Publish(events.Event{
				Type:  events.EventPeriodPartial,
				RunID: runID,
				Partial: events.PeriodPartial{
					Distribution: partial.Distribution,
					FinalTs:      partial.FinalTs,
				},
			})
		}
		if f.GameOver() {
			break
		}
	}

	if err := f.ParseErr(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	bus.Publish(events.Event{
		Type:  events.EventGameFinal,
		RunID: runID,
		Partial: events.PeriodPartial{
			Distribution: engine.GameStats(),
			IsFinal:      true,
		},
	})

	telemetry.Infof("possession: run %s complete in %s — %s lines, %s batches, %s partials, %s referential drops",
		runID,
		time.Since(start).Round(time.Millisecond),
		humanize.Comma(telemetry.Metrics.LinesRead.Value()),
		humanize.Comma(telemetry.Metrics.BatchesEmitted.Value()),
		humanize.Comma(telemetry.Metrics.PartialsEmitted.Value()),
		humanize.Comma(telemetry.Metrics.ReferentialDrops.Value()),
	)
	telemetry.Debugf("possession: fold latency p50=%s p99=%s",
		telemetry.Metrics.BatchFoldLatency.P50(),
		telemetry.Metrics.BatchFoldLatency.P99(),
	)
	return nil
}

func loadRegistry(cfg *cfgpkg.Config) (*metadata.Registry, error) {
	if cfg.MetacachePath == "" {
		return metadata.Load(cfg.MetadataPath)
	}
	cache, err := metacache.Open(cfg.MetacachePath)
	if err != nil {
		return nil, err
	}
	defer cache.Close()
	return cache.LoadOrParse(cfg.MetadataPath)
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: open output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
