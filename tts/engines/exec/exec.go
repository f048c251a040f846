// Package exec runs an external text-to-speech command, in the style of
// piper's --output-raw mode: the text is written to the process's stdin and
// raw 16-bit little-endian mono PCM is read back from its stdout. A fresh
// process is started per request.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	shellwords "github.com/mattn/go-shellwords"

	"github.com/voxsync/voxsync/tts"
)

// Engine shells out to a configured speech command.
type Engine struct {
	cfg  tts.ExecConfig
	argv []string
}

// New creates an exec engine from cfg. The command line is split with shell
// quoting rules once up front; a command that fails to parse leaves the
// engine unavailable.
func New(cfg tts.ExecConfig) *Engine {
	def := tts.DefaultConfig().Exec
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.ChunkDuration <= 0 {
		cfg.ChunkDuration = def.ChunkDuration
	}

	argv, err := shellwords.Parse(cfg.Command)
	if err != nil {
		log.Warn("cannot parse speech command", "command", cfg.Command, "error", err)
		argv = nil
	}
	return &Engine{cfg: cfg, argv: argv}
}

// Name reports the engine identifier.
func (e *Engine) Name() string { return "exec" }

// Available reports whether the configured command resolves to an
// executable.
func (e *Engine) Available() bool {
	if len(e.argv) == 0 {
		return false
	}
	_, err := exec.LookPath(e.argv[0])
	return err == nil
}

// Synthesize starts the command and streams its stdout as audio chunks of
// roughly ChunkDuration each. The first chunk carries the configured sample
// rate. Source text offsets are unknown for external commands and are left
// at -1.
func (e *Engine) Synthesize(ctx context.Context, text string) (<-chan tts.AudioChunk, <-chan error) {
	chunks := make(chan tts.AudioChunk)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)
		if err := e.run(ctx, text, chunks); err != nil {
			errs <- err
		}
	}()

	return chunks, errs
}

func (e *Engine) run(ctx context.Context, text string, chunks chan<- tts.AudioChunk) error {
	if len(e.argv) == 0 {
		return fmt.Errorf("%w: no command configured", tts.ErrEngineNotAvailable)
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	cmd.Stdin = strings.NewReader(text + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", e.argv[0], err)
	}

	streamErr := e.stream(ctx, stdout, chunks)

	waitErr := cmd.Wait()
	if streamErr != nil {
		return streamErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", e.argv[0], waitErr, msg)
		}
		return fmt.Errorf("%s: %w", e.argv[0], waitErr)
	}
	return nil
}

// stream reads stdout into fixed-size chunks and forwards them. Only the
// final read may be short; an odd trailing byte is dropped to keep samples
// whole.
func (e *Engine) stream(ctx context.Context, stdout io.Reader, chunks chan<- tts.AudioChunk) error {
	chunkBytes := int(e.cfg.ChunkDuration.Seconds()*float64(e.cfg.SampleRate)) * 2
	if chunkBytes < 2 {
		chunkBytes = 2
	}

	first := true
	for {
		buf := make([]byte, chunkBytes)
		n, err := io.ReadFull(stdout, buf)
		if n > 0 {
			if n%2 != 0 {
				log.Debug("dropping odd trailing byte from speech command output")
				n--
			}
			if n > 0 {
				chunk := tts.AudioChunk{PCM: buf[:n], SourceTextOffset: -1}
				if first {
					chunk.SampleRate = e.cfg.SampleRate
					first = false
				}
				select {
				case chunks <- chunk:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s output: %w", e.argv[0], err)
		}
	}
}
