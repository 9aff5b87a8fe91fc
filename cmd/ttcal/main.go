package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"ttcal/internal/config"
	"ttcal/internal/ics"
	appLog "ttcal/internal/log"
	"ttcal/internal/model"
	"ttcal/internal/pdftext"
	"ttcal/internal/timetable"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	pdfPath    string
	group      string
	outPath    string
	watch      bool
	debug      bool
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("ttcal starting", "version", "0.1.0")

	if flags.pdfPath == "" {
		appLog.Error("no input document", errors.New("-pdf is required"))
		os.Exit(2)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	if flags.outPath == "" {
		flags.outPath = defaultOutPath(flags.group)
	}

	appLog.Info("effective config",
		"timezone", conf.Timezone,
		"group", flags.group,
		"pdf", flags.pdfPath,
		"out", flags.outPath,
		"watch", flags.watch,
	)

	if err := runOnce(conf, flags); err != nil {
		appLog.Error("conversion failed", err)
		os.Exit(1)
	}

	if !flags.watch {
		return
	}

	// Watch mode: re-run the conversion on the configured cron schedule
	// until interrupted. Each run is an independent single-shot pass; the
	// source PDF is re-read every time.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	c := cron.New()
	_, err = c.AddFunc(conf.Refresh, func() {
		if err := runOnce(conf, flags); err != nil {
			appLog.Error("scheduled conversion failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.Refresh)
		os.Exit(1)
	}
	c.Start()
	appLog.Info("watch mode active", "refresh", conf.Refresh)

	<-ctx.Done()
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
	}
	appLog.Info("ttcal exiting")
}

// runOnce performs one complete extract -> assemble -> map -> encode ->
// write pass over the source document.
func runOnce(conf *config.Config, flags flagConfig) error {
	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", conf.Timezone, err)
	}

	pages, err := pdftext.ExtractPages(flags.pdfPath)
	if err != nil {
		return err
	}

	res := timetable.Assemble(pages, timetable.Options{
		TargetGroup:    flags.group,
		GroupSeparator: conf.GroupSeparator,
		Rules:          timetable.Rules{RemoteMarkers: conf.RemoteMarkers},
	})

	mapping := ics.Mapping{Location: loc, RemoteLocation: conf.RemoteLocation}
	events := make([]model.Event, 0, len(res.Entries))
	for _, entry := range res.Entries {
		events = append(events, ics.MapEvent(entry, mapping))
	}

	data, err := ics.Encode(events, ics.CalendarMeta{
		ProdID:   conf.ProdID,
		Name:     conf.CalendarName,
		Timezone: conf.Timezone,
	})
	if err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}

	if err := ics.WriteFile(flags.outPath, data); err != nil {
		return fmt.Errorf("write %q: %w", flags.outPath, err)
	}

	logSummary(res, len(events), flags)
	return nil
}

// logSummary reports what made it into the calendar and what was skipped.
// Skipped lines are a normal consequence of table noise, so they are
// warnings, not failures.
func logSummary(res timetable.Result, eventCount int, flags flagConfig) {
	appLog.Info("calendar written",
		"out", flags.outPath,
		"events", eventCount,
		"group", flags.group,
		"skipped", len(res.Diagnostics),
	)
	if eventCount == 0 {
		appLog.Warn("no sessions matched", "group", flags.group)
	}
	if len(res.Diagnostics) == 0 {
		return
	}

	byKind := make(map[string]int)
	for _, d := range res.Diagnostics {
		byKind[d.Err.Error()]++
		appLog.Debug("skipped line", "page", d.Page, "line", d.Line, "reason", d.Err, "text", d.Text)
	}
	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		appLog.Warn("skipped lines", "reason", kind, "count", byKind[kind])
	}
}

func defaultOutPath(group string) string {
	if group == "" {
		return "timetable.ics"
	}
	return fmt.Sprintf("timetable_%s.ics", strings.ToLower(group))
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "", "Path to config file (defaults used when empty)")
	flag.StringVar(&cfg.pdfPath, "pdf", "", "Path to the timetable PDF")
	flag.StringVar(&cfg.group, "group", "", "Class-group label to filter for (e.g. 25A); empty keeps all")
	flag.StringVar(&cfg.outPath, "o", "", "Output .ics path (default timetable_<group>.ics)")
	flag.BoolVar(&cfg.watch, "watch", false, "Keep running and re-convert on the config's cron schedule")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
