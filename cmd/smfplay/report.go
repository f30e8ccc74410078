package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/james-see/smfplay/pkg/player"
	"github.com/james-see/smfplay/pkg/smf"
)

func printInspect(w io.Writer, f *smf.File, events bool) {
	duration := player.Merge(f.Tracks).Duration(f.Division)
	fmt.Fprintf(w, "Format:   %d\n", f.Header.Format)
	fmt.Fprintf(w, "Tracks:   %d\n", f.Header.Tracks)
	fmt.Fprintf(w, "Division: %d ticks/quarter\n", f.Division)
	fmt.Fprintf(w, "Duration: %s\n\n", duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tNAME\tOFFSET\tLENGTH\tEVENTS\tTICKS\tSTATUS")
	for _, tr := range f.Tracks {
		status := "ok"
		if tr.Err != nil {
			status = tr.Err.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s\n",
			tr.Index, tr.Name, tr.Offset, tr.Length, len(tr.Events), tr.Ticks(), status)
	}
	tw.Flush()

	if !events {
		return
	}
	for _, tr := range f.Tracks {
		fmt.Fprintf(w, "\nTrack %d\n", tr.Index)
		for _, ev := range tr.Events {
			fmt.Fprintf(w, "  +%-6d %s\n", ev.Delta, ev.Event)
		}
	}
}

func printTimeline(w io.Writer, f *smf.File, limit int) {
	tl := player.Merge(f.Tracks)
	offsets := tl.Offsets(f.Division)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tTICK\tTRACK\tEVENT")
	for i, ev := range tl {
		if limit > 0 && i >= limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", offsets[i].Round(time.Millisecond), ev.Tick, ev.Track, ev.Event)
	}
	tw.Flush()

	if len(offsets) > 0 {
		fmt.Fprintf(w, "\n%d events, %s\n", len(tl), offsets[len(offsets)-1].Round(time.Millisecond))
	}
}
