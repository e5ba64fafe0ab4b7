package sinks

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corelogio/corelog/core"
	"github.com/corelogio/corelog/internal/formatters"
)

// FileTransport appends formatted lines to a single, non-rotating file.
// Use RollingFileTransport instead when size/time rotation is needed.
type FileTransport struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// NewFileTransport opens (creating if necessary) the file at path in
// append mode.
func NewFileTransport(path string) (*FileTransport, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("corelog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("corelog: open log file: %w", err)
	}
	return &FileTransport{file: f, writer: bufio.NewWriterSize(f, 64*1024)}, nil
}

// WriteLine implements Transport.
func (t *FileTransport) WriteLine(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.writer.WriteString(line); err != nil {
		return err
	}
	return t.writer.WriteByte('\n')
}

// Flush implements TransportFlusher.
func (t *FileTransport) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writer.Flush()
}

// Close implements TransportCloser.
func (t *FileTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.writer.Flush(); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}

// NewFile builds a plain append-only file sink with the default
// human-readable formatter.
func NewFile(path string) (*TextSink, error) {
	return NewFileWithFormatter(path, formatters.NewHuman())
}

// NewFileWithFormatter builds a plain append-only file sink rendering
// entries through formatter.
func NewFileWithFormatter(path string, formatter core.Formatter) (*TextSink, error) {
	transport, err := NewFileTransport(path)
	if err != nil {
		return nil, err
	}
	return NewTextSink("file", formatter, transport), nil
}
