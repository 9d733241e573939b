package encryption

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/textcipher-go/internal/errors"
)

// DefaultChunkSize bounds the memory used per stream
const DefaultChunkSize = 1024

// Processor applies a transformer across a byte stream in fixed-size chunks.
// Output length always equals input length.
type Processor struct {
	// ChunkSize is the read size per step; values <= 0 use DefaultChunkSize
	ChunkSize int
	// Atomic writes file output to a temporary file and renames it on success
	Atomic bool
}

// NewProcessor creates a stream processor
func NewProcessor(chunkSize int, atomic bool) *Processor {
	return &Processor{ChunkSize: chunkSize, Atomic: atomic}
}

func (p *Processor) chunkSize() int {
	if p.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return p.ChunkSize
}

// Process reads src chunk by chunk, transforms each chunk in place and
// writes it to dst immediately. It returns the number of bytes written.
func (p *Processor) Process(src io.Reader, dst io.Writer, t CipherTransformer) (int64, error) {
	return p.process(src, dst, t, "stream", "stream")
}

func (p *Processor) process(src io.Reader, dst io.Writer, t CipherTransformer, srcName, dstName string) (int64, error) {
	bufPtr := GetCipherBuffer(p.chunkSize())
	defer PutCipherBuffer(bufPtr)
	buf := *bufPtr

	var total int64
	for {
		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			chunk := buf[:n]
			t.Transform(chunk)
			w, werr := dst.Write(chunk)
			total += int64(w)
			if werr != nil {
				return total, errors.NewSinkUnavailable(dstName, werr)
			}
			if w != n {
				return total, errors.NewSinkUnavailable(dstName, io.ErrShortWrite)
			}
		}
		switch rerr {
		case nil:
		case io.EOF, io.ErrUnexpectedEOF:
			return total, nil
		default:
			return total, errors.NewSourceUnavailable(srcName, rerr)
		}
	}
}

// ProcessBytes transforms a copy of data as a single chunk
func (p *Processor) ProcessBytes(data []byte, t CipherTransformer) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	t.Transform(out)
	return out
}

// ProcessFile streams inPath through t into outPath. The input is opened
// before the output is touched, and every file is closed on every path.
func (p *Processor) ProcessFile(inPath, outPath string, t CipherTransformer) (int64, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, errors.NewSourceUnavailable(inPath, err)
	}
	defer in.Close()

	inInfo, err := in.Stat()
	if err != nil {
		return 0, errors.NewSourceUnavailable(inPath, err)
	}
	if inInfo.IsDir() {
		return 0, errors.NewSourceUnavailable(inPath, fmt.Errorf("is a directory"))
	}

	if p.Atomic {
		return p.processAtomic(in, inPath, outPath, inInfo.Mode().Perm(), t)
	}

	if outInfo, err := os.Stat(outPath); err == nil && os.SameFile(inInfo, outInfo) {
		return 0, errors.NewSinkUnavailable(outPath, fmt.Errorf("output would truncate the input file"))
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, errors.NewSinkUnavailable(outPath, err)
	}
	n, err := p.process(in, out, t, inPath, outPath)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.NewSinkUnavailable(outPath, cerr)
	}
	return n, err
}

func (p *Processor) processAtomic(in io.Reader, inPath, outPath string, perm os.FileMode, t CipherTransformer) (int64, error) {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(outPath)+".*.tmp")
	if err != nil {
		return 0, errors.NewSinkUnavailable(outPath, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	n, err := p.process(in, tmp, t, inPath, outPath)
	if err != nil {
		return n, err
	}
	if err := tmp.Chmod(perm); err != nil {
		return n, errors.NewSinkUnavailable(outPath, err)
	}
	if err := tmp.Close(); err != nil {
		return n, errors.NewSinkUnavailable(outPath, err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		return n, errors.NewSinkUnavailable(outPath, err)
	}
	committed = true
	return n, nil
}
