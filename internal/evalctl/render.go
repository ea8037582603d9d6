package evalctl

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printMembers(w io.Writer, members []Member) {
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tNAME\tTRACK\tLABEL")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Number, m.Name, m.Track, m.Label)
	}
	_ = tw.Flush()
}

func printAssignment(w io.Writer, a Assignment) {
	parity := "even"
	if a.OddWeek {
		parity = "odd"
	}
	fmt.Fprintf(w, "week %d (%s), evaluator %s\n", a.Week, parity, a.Evaluator)
	if a.Next == nil {
		fmt.Fprintln(w, "no one left to evaluate")
	} else {
		fmt.Fprintf(w, "next: %s (%s)\n", a.Next.Name, a.Next.Track)
	}
	if len(a.Remaining) > 1 {
		fmt.Fprint(w, "then:")
		for _, m := range a.Remaining[1:] {
			fmt.Fprintf(w, " %s", m.Name)
		}
		fmt.Fprintln(w)
	}
	if a.Stale {
		fmt.Fprintln(w, "warning: snapshot is stale")
	}
}

func printAck(w io.Writer, a Ack) {
	verb := "recorded"
	if a.Duplicate {
		verb = "already recorded"
	}
	fmt.Fprintf(w, "%s: %s -> %s = %.2f (week %d)\n", verb, a.Evaluator, a.Evaluated, a.Score, a.Week)
	switch {
	case a.Stale:
		fmt.Fprintln(w, "warning: reload failed, snapshot is stale")
	case a.Next != nil:
		fmt.Fprintf(w, "next: %s\n", a.Next.Name)
	}
}

func printAverages(w io.Writer, rows []Average) {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tTRACK\tAVERAGE\tCOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.Name, r.Track, r.Display, r.Count)
	}
	_ = tw.Flush()
}

func printSnapshot(w io.Writer, s SnapshotInfo) {
	fmt.Fprintf(w, "members: %d\nrecords: %d\nloaded:  %s\nstale:   %t\n",
		s.Members, s.Records, formatTime(s.LoadedAt), s.Stale)
	if s.LastError != "" {
		fmt.Fprintf(w, "error:   %s\n", s.LastError)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}
