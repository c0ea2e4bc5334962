package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"shelfscan/internal/capture"
	"shelfscan/internal/catalog"
	"shelfscan/internal/config"
	"shelfscan/internal/identify"
	"shelfscan/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var codeFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a disc barcode and add the movie to the catalog",
		Long: "Scan opens the camera, decodes one barcode, resolves it against the movie\n" +
			"database, and saves the confirmed record. Pass --code to skip the camera and\n" +
			"resolve a code directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				logger := ctx.ensureLogger()
				resolver, err := identify.New(cfg, logger)
				if err != nil {
					return err
				}
				wf := workflow.New(store, resolver, logger)

				runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				code := strings.TrimSpace(codeFlag)
				if code == "" {
					code, err = decodeFromCamera(runCtx, cmd, cfg, logger)
					if err != nil {
						return err
					}
				}

				if err := wf.HandleDecoded(runCtx, code); err != nil {
					return err
				}
				return settleScan(runCtx, cmd, wf)
			})
		},
	}

	cmd.Flags().StringVar(&codeFlag, "code", "", "Resolve this code directly instead of scanning")
	return cmd
}

// decodeFromCamera drives a capture session until one code is decoded. The
// hotplug monitor keeps the scan honest about cameras disappearing mid-read.
func decodeFromCamera(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (string, error) {
	out := cmd.OutOrStdout()
	decoded := make(chan string, 1)

	session := capture.NewSession(
		cfg.Scanner,
		capture.NewV4LDeviceAPI(),
		capture.NewZbarDecoderFactory(cfg.Scanner.ZbarBinary, logger),
		logger,
		func(code string) {
			select {
			case decoded <- code:
			default:
			}
		},
	)
	defer session.Teardown()

	removed := make(chan string, 1)
	monitor := capture.NewHotplugMonitor(logger, func(event capture.HotplugEvent) {
		switch event.Action {
		case "remove":
			if event.Device == session.ActiveDevice().ID {
				select {
				case removed <- event.Device:
				default:
				}
			}
		case "add":
			_ = session.RefreshDevices(ctx)
		}
	})
	if err := monitor.Start(ctx); err != nil {
		return "", err
	}
	defer monitor.Stop()

	if err := session.Initialize(ctx); err != nil {
		return "", scanFailure(err)
	}

	active := session.ActiveDevice()
	fmt.Fprintf(out, "Using %s (%s). Point the camera at the barcode.\n", active.Label, active.ID)

	if err := session.Start(ctx); err != nil {
		return "", scanFailure(err)
	}

	select {
	case code := <-decoded:
		fmt.Fprintf(out, "Decoded %s\n", code)
		return code, nil
	case device := <-removed:
		session.Stop()
		return "", fmt.Errorf("camera %s disconnected: %s", device, capture.Remediation(capture.FailureDeviceRemoved))
	case <-ctx.Done():
		session.Stop()
		return "", ctx.Err()
	}
}

func scanFailure(err error) error {
	return fmt.Errorf("%w\n%s", err, capture.Remediation(capture.Classify(err)))
}

// settleScan walks the user through the post-decode outcome: confirm a found
// candidate, fill in a manual record, or acknowledge a local hit.
func settleScan(ctx context.Context, cmd *cobra.Command, wf *workflow.Workflow) error {
	out := cmd.OutOrStdout()
	snapshot := wf.Snapshot()

	switch snapshot.Phase {
	case workflow.PhaseConfirmed:
		if snapshot.AlreadyKnown {
			fmt.Fprintf(out, "Already in the catalog: %q (%s)\n", snapshot.Candidate.Title, releaseYear(snapshot.Candidate.ReleaseDate))
		}
		return nil

	case workflow.PhaseFound:
		fmt.Fprintln(out, "Found:")
		printRecordDetail(out, snapshot.Candidate)
		return confirmCandidate(ctx, cmd, wf, snapshot.Candidate)

	case workflow.PhaseNotFound:
		fmt.Fprintln(out, snapshot.Reason)
		if !interactive(cmd) {
			return fmt.Errorf("code %s not resolved and manual entry needs a terminal", snapshot.Candidate.ScanCode)
		}
		return manualEntry(ctx, cmd, wf, snapshot.Candidate)

	default:
		return fmt.Errorf("scan ended in unexpected phase %s", snapshot.Phase)
	}
}

func confirmCandidate(ctx context.Context, cmd *cobra.Command, wf *workflow.Workflow, candidate *catalog.Record) error {
	out := cmd.OutOrStdout()

	if interactive(cmd) {
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, err := prompt(reader, out, "Save to catalog? [Y/n/e to edit]", "y")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "n", "no":
			wf.Reset()
			fmt.Fprintln(out, "Discarded.")
			return nil
		case "e", "edit":
			if err := editRecord(reader, out, candidate); err != nil {
				return err
			}
		}
	}

	id, err := wf.Confirm(ctx, candidate)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %q (%s)\n", candidate.Title, id)
	return nil
}

func manualEntry(ctx context.Context, cmd *cobra.Command, wf *workflow.Workflow, skeleton *catalog.Record) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out, "Enter the movie details:")
	if err := editRecord(reader, out, skeleton); err != nil {
		return err
	}

	id, err := wf.Confirm(ctx, skeleton)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %q (%s)\n", skeleton.Title, id)
	return nil
}

// editRecord prompts for each editable field, keeping the current value on an
// empty answer.
func editRecord(reader *bufio.Reader, out io.Writer, record *catalog.Record) error {
	title, err := prompt(reader, out, "Title", record.Title)
	if err != nil {
		return err
	}
	record.Title = title

	release, err := prompt(reader, out, "Release date (YYYY-MM-DD)", record.ReleaseDate)
	if err != nil {
		return err
	}
	record.ReleaseDate = release

	director, err := prompt(reader, out, "Director", record.Director)
	if err != nil {
		return err
	}
	record.Director = director

	rating, err := prompt(reader, out, "Rating", record.Rating)
	if err != nil {
		return err
	}
	record.Rating = rating

	cast, err := prompt(reader, out, "Cast (comma separated)", strings.Join(record.Cast, ", "))
	if err != nil {
		return err
	}
	record.Cast = splitList(cast)

	genres, err := prompt(reader, out, "Genres (comma separated)", strings.Join(record.Genres, ", "))
	if err != nil {
		return err
	}
	record.Genres = splitList(genres)

	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}

// interactive reports whether stdin and stdout are attached to a terminal.
// Non-interactive runs auto-confirm found candidates and refuse manual entry.
func interactive(cmd *cobra.Command) bool {
	stdin, inOK := cmd.InOrStdin().(*os.File)
	stdout, outOK := cmd.OutOrStdout().(*os.File)
	if !inOK || !outOK {
		// Buffers in tests count as interactive so prompts can be scripted.
		return true
	}
	return isatty.IsTerminal(stdin.Fd()) && isatty.IsTerminal(stdout.Fd())
}
