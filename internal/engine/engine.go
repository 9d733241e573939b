// Package engine exposes the cipher operations to callers such as the CLI
// and the HTTP API. It holds no per-request state: every call selects a
// method, builds a fresh cipher and runs to completion or failure.
package engine

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/textcipher-go/internal/dao"
	"github.com/textcipher-go/internal/encryption"
	"github.com/textcipher-go/internal/trace"
)

const (
	ModeText   = "text"
	ModeFile   = "file"
	ModeStream = "stream"
)

// HistoryRecorder persists finished operations
type HistoryRecorder interface {
	Record(entry *dao.HistoryEntry) error
}

// Options configures an Engine
type Options struct {
	ChunkSize int
	Atomic    bool
	// History is optional; nil disables recording
	History HistoryRecorder
}

// Engine runs encrypt and decrypt requests
type Engine struct {
	processor *encryption.Processor
	history   HistoryRecorder
}

// Result describes a completed request
type Result struct {
	// Output holds the transformed bytes in text mode
	Output []byte
	Bytes  int64
	Method encryption.Method
	// Fallback is set when an unknown method tag was replaced by rotation
	Fallback bool
}

// New creates an Engine
func New(opts Options) *Engine {
	return &Engine{
		processor: encryption.NewProcessor(opts.ChunkSize, opts.Atomic),
		history:   opts.History,
	}
}

// EncryptText encrypts inline text
func (e *Engine) EncryptText(ctx context.Context, text []byte, method, key string) (Result, error) {
	return e.text(ctx, encryption.Encrypt, text, method, key)
}

// DecryptText decrypts inline text. Rotation negates the shift, xor is the same call.
func (e *Engine) DecryptText(ctx context.Context, text []byte, method, key string) (Result, error) {
	return e.text(ctx, encryption.Decrypt, text, method, key)
}

// EncryptFile encrypts inPath into outPath
func (e *Engine) EncryptFile(ctx context.Context, inPath, outPath, method, key string) (Result, error) {
	return e.file(ctx, encryption.Encrypt, inPath, outPath, method, key)
}

// DecryptFile decrypts inPath into outPath
func (e *Engine) DecryptFile(ctx context.Context, inPath, outPath, method, key string) (Result, error) {
	return e.file(ctx, encryption.Decrypt, inPath, outPath, method, key)
}

// Stream transforms src into dst chunk by chunk. The method and key are
// validated before anything is written to dst.
func (e *Engine) Stream(ctx context.Context, dir encryption.Direction, src io.Reader, dst io.Writer, method, key string) (Result, error) {
	r := e.begin(ctx, dir, ModeStream, method, key)
	if r.err != nil {
		return r.fail(r.err)
	}
	n, err := e.processor.Process(src, dst, r.flow)
	r.result.Bytes = n
	if err != nil {
		return r.fail(err)
	}
	return r.complete()
}

func (e *Engine) text(ctx context.Context, dir encryption.Direction, text []byte, method, key string) (Result, error) {
	r := e.begin(ctx, dir, ModeText, method, key)
	if r.err != nil {
		return r.fail(r.err)
	}
	r.result.Output = e.processor.ProcessBytes(text, r.flow)
	r.result.Bytes = int64(len(text))
	return r.complete()
}

func (e *Engine) file(ctx context.Context, dir encryption.Direction, inPath, outPath, method, key string) (Result, error) {
	r := e.begin(ctx, dir, ModeFile, method, key)
	r.entry.Source = inPath
	r.entry.Sink = outPath
	if r.err != nil {
		return r.fail(r.err)
	}
	n, err := e.processor.ProcessFile(inPath, outPath, r.flow)
	r.result.Bytes = n
	if err != nil {
		return r.fail(err)
	}
	return r.complete()
}

// request carries one call through Received -> Validated -> Processing -> Completed | Failed
type request struct {
	engine *Engine
	logger zerolog.Logger
	flow   *encryption.Flow
	result Result
	entry  dao.HistoryEntry
	err    error
}

func (e *Engine) begin(ctx context.Context, dir encryption.Direction, mode, method, key string) *request {
	ctx = trace.WithOpTag(trace.EnsureRequestID(ctx), trace.OpTag(dir.String(), mode))
	r := &request{
		engine: e,
		logger: trace.Logger(ctx),
		entry: dao.HistoryEntry{
			Operation: dir.String(),
			Mode:      mode,
		},
	}
	r.logger.Debug().Str("method", method).Msg("Request received")

	sel, err := encryption.Select(method, key)
	r.result.Method = sel.Method
	r.result.Fallback = sel.Fallback
	r.entry.Method = sel.Method.String()
	if err != nil {
		r.err = err
		return r
	}
	r.entry.KeyFingerprint = sel.Fingerprint()

	flow, err := encryption.NewFlow(sel, dir)
	if err != nil {
		r.err = err
		return r
	}
	r.flow = flow
	r.logger.Debug().Str("method", sel.Method.String()).Bool("fallback", sel.Fallback).Msg("Request validated")
	return r
}

func (r *request) fail(err error) (Result, error) {
	r.logger.Error().Err(err).Int64("bytes", r.result.Bytes).Msg("Request failed")
	r.entry.Status = dao.StatusFailed
	r.entry.Error = err.Error()
	r.entry.Bytes = r.result.Bytes
	r.record()
	return r.result, err
}

func (r *request) complete() (Result, error) {
	r.logger.Info().
		Str("method", r.result.Method.String()).
		Int64("bytes", r.result.Bytes).
		Msg("Request completed")
	r.entry.Status = dao.StatusCompleted
	r.entry.Bytes = r.result.Bytes
	r.record()
	return r.result, nil
}

func (r *request) record() {
	if r.engine.history == nil {
		return
	}
	if err := r.engine.history.Record(&r.entry); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to record history")
	}
}
