package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"thoughtburn/internal/analytics"
	"thoughtburn/internal/calendar"
	"thoughtburn/internal/preferences"
)

const maxBarWidth = 30

// output renders command results. On a terminal numbers follow the
// configured locale and charts get bars; otherwise output stays plain for
// scripts.
type output struct {
	w       io.Writer
	deriver *calendar.Deriver
	printer *message.Printer
	pretty  bool
}

func newOutput(w io.Writer, deriver *calendar.Deriver, tag language.Tag, pretty bool) *output {
	o := &output{w: w, deriver: deriver, pretty: pretty}
	if pretty {
		o.printer = message.NewPrinter(tag)
	}
	return o
}

func (o *output) number(n int) string {
	if o.printer != nil {
		return o.printer.Sprintf("%d", n)
	}
	return strconv.Itoa(n)
}

func (o *output) today(count int) {
	if !o.pretty {
		fmt.Fprintln(o.w, count)
		return
	}
	fmt.Fprintf(o.w, "%s: %s burned\n", o.deriver.FormatLabel(o.deriver.Now(), calendar.LabelLong), o.number(count))
}

func (o *output) progress(p analytics.WeeklyProgress) {
	if !o.pretty {
		fmt.Fprintf(o.w, "%d %d\n", p.CurrentWeek, p.PreviousWeek)
		return
	}
	fmt.Fprintf(o.w, "This week: %s\n", o.number(p.CurrentWeek))
	fmt.Fprintf(o.w, "Last week: %s\n", o.number(p.PreviousWeek))
	fmt.Fprintln(o.w, analytics.ProgressMessage(p))
}

func (o *output) dashboard(d analytics.Dashboard) {
	fmt.Fprintln(o.w, "Last 7 days")
	o.series(d.Daily)
	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w, "Last 8 weeks")
	o.series(d.Weekly)
	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w, d.Message)
}

func (o *output) series(points []analytics.Point) {
	peak := 0
	labelWidth := 0
	for _, p := range points {
		peak = max(peak, p.Count)
		labelWidth = max(labelWidth, len(p.Label))
	}

	for _, p := range points {
		line := fmt.Sprintf("  %-*s %s", labelWidth, p.Label, o.number(p.Count))
		if o.pretty && peak > 0 && p.Count > 0 {
			width := max(1, p.Count*maxBarWidth/peak)
			line = fmt.Sprintf("  %-*s %s %s", labelWidth, p.Label, strings.Repeat("#", width), o.number(p.Count))
		}
		fmt.Fprintln(o.w, line)
	}
}

func (o *output) preferences(p preferences.Preferences) {
	fmt.Fprintf(o.w, "%s=%t\n", preferences.KeyReduceMotion, p.ReduceMotion)
	fmt.Fprintf(o.w, "%s=%t\n", preferences.KeySoundEnabled, p.SoundEnabled)
}

// writeSnapshot encodes the full history as json or yaml.
func writeSnapshot(w io.Writer, snap analytics.Snapshot, format string) error {
	if snap.Daily == nil {
		snap.Daily = []analytics.DailyCount{}
	}
	if snap.Weekly == nil {
		snap.Weekly = []analytics.WeeklyCount{}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func cutPair(arg string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
