package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/probectl/internal/store"
)

var (
	historyDB     string
	historyTarget string
	historyLimit  int
	historyLatest bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded register snapshots",
	RunE:  runHistory,
}

func init() {
	flags := historyCmd.Flags()
	flags.StringVar(&historyDB, "db", "probectl.db", "snapshot database path")
	flags.StringVarP(&historyTarget, "target", "t", "", "only snapshots for this agent address")
	flags.IntVar(&historyLimit, "limit", 20, "maximum snapshots to list")
	flags.BoolVar(&historyLatest, "latest", false, "show only the newest snapshot, registers included")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := store.NewSQLiteStore(historyDB)
	if err != nil {
		return err
	}
	defer st.Close()

	if historyLatest {
		rec, err := st.LatestSnapshot(cmd.Context(), historyTarget)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(os.Stdout, "no snapshots recorded")
			return nil
		}
		writeSnapshot(os.Stdout, rec)
		return nil
	}

	recs, err := st.ListSnapshots(cmd.Context(), historyTarget, historyLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stdout, "no snapshots recorded")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(os.Stdout, "%-5d %s  %-21s %-26s %4d bytes\n",
			rec.ID,
			rec.TakenAt.Format(time.RFC3339),
			rec.Target,
			rec.Outcome,
			len(rec.Image),
		)
	}
	return nil
}

func writeSnapshot(w io.Writer, rec *store.SnapshotRecord) {
	fmt.Fprintf(w, "id:       %d\n", rec.ID)
	fmt.Fprintf(w, "target:   %s\n", rec.Target)
	fmt.Fprintf(w, "query:    %s\n", rec.Query)
	fmt.Fprintf(w, "outcome:  %s\n", rec.Outcome)
	fmt.Fprintf(w, "taken:    %s\n", rec.TakenAt.Format(time.RFC3339))
	if len(rec.Image) > 0 {
		fmt.Fprintf(w, "revision: %#02x\n", byte(rec.Revision))
		fmt.Fprintf(w, "registers (%d bytes):\n%s", len(rec.Image), hex.Dump(rec.Image))
	}
}
