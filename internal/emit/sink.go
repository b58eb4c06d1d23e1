package emit

import (
	"bufio"
	"io"
	"os"
)

// sink is one buffered output stream with a running byte offset. The offset
// is what source-view mode records per node, so it must count exactly the
// bytes handed to the underlying file.
type sink struct {
	bw  *bufio.Writer
	f   *os.File // nil when the sink wraps stdout or an in-memory buffer
	off int64
	err error
}

func newSink(w io.Writer) *sink {
	return &sink{bw: bufio.NewWriter(w)}
}

// openSink opens path for writing, or wraps stdout when path is empty.
// Файлы всегда открываются в «бинарном» смысле: Go никогда не переводит
// перевод строки, поэтому смещения стабильны и в source-view режиме.
func openSink(path string) (*sink, error) {
	if path == "" {
		return newSink(os.Stdout), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := newSink(f)
	s.f = f
	return s, nil
}

func (s *sink) WriteString(str string) {
	if s.err != nil {
		return
	}
	n, err := s.bw.WriteString(str)
	s.off += int64(n)
	if err != nil {
		s.err = err
	}
}

// Close flushes and closes the sink. Wrapped stdout is flushed but left
// open.
func (s *sink) Close() error {
	flushErr := s.bw.Flush()
	if s.err == nil {
		s.err = flushErr
	}
	if s.f != nil {
		if err := s.f.Close(); err != nil && s.err == nil {
			s.err = err
		}
	}
	return s.err
}
