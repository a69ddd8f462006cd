package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/probectl/internal/host"
	"github.com/probelab/probectl/internal/observability"
	"github.com/probelab/probectl/internal/protocol"
	"github.com/probelab/probectl/internal/store"
)

var (
	queryTarget  string
	queryTimeout time.Duration
	queryRetries int
	queryJSON    bool
	queryDB      string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run inspection queries against one agent",
}

var seqRegsCmd = &cobra.Command{
	Use:   "seqregs",
	Short: "Fetch the agent's sequencer register image",
	RunE:  runSeqRegs,
}

func init() {
	flags := queryCmd.PersistentFlags()
	flags.StringVarP(&queryTarget, "target", "t", "127.0.0.1:9301", "agent datagram address")
	flags.DurationVar(&queryTimeout, "timeout", time.Second, "per-attempt reply timeout")
	flags.IntVar(&queryRetries, "retries", 2, "resend attempts after the first")
	flags.BoolVar(&queryJSON, "json", false, "emit the answer as JSON")
	flags.StringVar(&queryDB, "db", "", "record the answer in this snapshot database")

	queryCmd.AddCommand(seqRegsCmd)
	rootCmd.AddCommand(queryCmd)
}

func runSeqRegs(cmd *cobra.Command, args []string) error {
	client, err := host.Dial(host.Options{
		Target:   queryTarget,
		Timeout:  queryTimeout,
		Attempts: queryRetries + 1,
		Log:      observability.InitLogger("probectl"),
	})
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.SequencerRegisters(cmd.Context())
	if err != nil {
		return err
	}

	// Failure outcomes are answers too; record them before deciding the
	// exit code.
	if queryDB != "" {
		if err := recordSnapshot(cmd.Context(), queryDB, res); err != nil {
			return err
		}
	}

	if queryJSON {
		if err := writeJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		writeSeqRegs(os.Stdout, res)
	}

	if res.Outcome != protocol.SeqRegsSuccess {
		return fmt.Errorf("%w: %s", errQueryFailed, res.Outcome)
	}
	return nil
}

func writeSeqRegs(w io.Writer, res host.SeqRegsResult) {
	fmt.Fprintf(w, "target:   %s\n", queryTarget)
	fmt.Fprintf(w, "outcome:  %s\n", res.Outcome)
	if res.Outcome != protocol.SeqRegsSuccess {
		return
	}
	fmt.Fprintf(w, "revision: %#02x\n", res.Revision)
	fmt.Fprintf(w, "registers (%d bytes):\n%s", len(res.Registers), hex.Dump(res.Registers))
}

type queryReport struct {
	Target    string `json:"target"`
	Query     string `json:"query"`
	Outcome   string `json:"outcome"`
	Revision  byte   `json:"revision,omitempty"`
	Registers string `json:"registers,omitempty"`
	TakenAt   string `json:"taken_at"`
}

func writeJSON(w io.Writer, res host.SeqRegsResult) error {
	report := queryReport{
		Target:  queryTarget,
		Query:   protocol.QueryV0SequencerRegisters.String(),
		Outcome: res.Outcome.String(),
		TakenAt: time.Now().UTC().Format(time.RFC3339),
	}
	if res.Outcome == protocol.SeqRegsSuccess {
		report.Revision = res.Revision
		report.Registers = hex.EncodeToString(res.Registers)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func recordSnapshot(ctx context.Context, dbPath string, res host.SeqRegsResult) error {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := &store.SnapshotRecord{
		Target:  queryTarget,
		Query:   protocol.QueryV0SequencerRegisters.String(),
		Outcome: res.Outcome.String(),
	}
	if res.Outcome == protocol.SeqRegsSuccess {
		rec.Revision = int64(res.Revision)
		rec.Image = res.Registers
	}
	return st.SaveSnapshot(ctx, rec)
}
