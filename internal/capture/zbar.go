package capture

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"shelfscan/internal/logging"
)

// processRunner starts a long-running process and exposes its stdout. The
// stop function terminates the process and reaps it.
type processRunner interface {
	Start(ctx context.Context, name string, args ...string) (stdout io.ReadCloser, stop func(), err error)
}

type execProcessRunner struct{}

func (execProcessRunner) Start(ctx context.Context, name string, args ...string) (io.ReadCloser, func(), error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	stop := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}
	return stdout, stop, nil
}

// ZbarDecoderFactory decodes barcodes by running an external zbarcam process
// against the stream's device node and reading recognized codes line by line
// from its stdout.
type ZbarDecoderFactory struct {
	binary string
	logger *slog.Logger
	runner processRunner
}

// NewZbarDecoderFactory returns a factory invoking the given zbarcam binary.
func NewZbarDecoderFactory(binary string, logger *slog.Logger) *ZbarDecoderFactory {
	return &ZbarDecoderFactory{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "zbar"),
		runner: execProcessRunner{},
	}
}

// Start launches zbarcam on the stream's device and feeds every recognized
// code to onDecode until Stop.
func (f *ZbarDecoderFactory) Start(ctx context.Context, stream Stream, cfg DecoderConfig, onDecode func(code string)) (Decoder, error) {
	args := buildZbarArgs(stream.Device(), cfg)
	stdout, stop, err := f.runner.Start(ctx, f.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", f.binary, err)
	}

	decoder := &zbarDecoder{stdout: stdout, stop: stop}
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			code := strings.TrimSpace(scanner.Text())
			if code == "" {
				continue
			}
			onDecode(code)
		}
		if err := scanner.Err(); err != nil {
			f.logger.Debug("decode stream closed", logging.Error(err))
		}
	}()
	return decoder, nil
}

// buildZbarArgs assembles the zbarcam invocation: raw codes on stdout, no
// preview window, and only the configured symbologies enabled. zbarcam has no
// flag for a sampling rate or a fractional decode crop (--prescale requests a
// capture resolution, which means something else), so SampleRateFPS and
// RegionScale are left to decoder backends that can honor them.
func buildZbarArgs(device string, cfg DecoderConfig) []string {
	args := []string{"--raw", "--nodisplay", "-Sdisable"}
	for _, symbology := range cfg.Symbologies {
		symbology = strings.TrimSpace(symbology)
		if symbology == "" {
			continue
		}
		args = append(args, "-S"+symbology+".enable")
	}
	return append(args, device)
}

type zbarDecoder struct {
	stdout io.ReadCloser
	stop   func()
	once   sync.Once
}

// Stop terminates the zbarcam process. It must not block on the reader
// goroutine: a decode callback may call Stop from that same goroutine, and
// the session drops any codes arriving after the stop anyway.
func (d *zbarDecoder) Stop() {
	d.once.Do(func() {
		_ = d.stdout.Close()
		d.stop()
	})
}
