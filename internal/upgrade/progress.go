package upgrade

import "io"

// ProgressFunc observes transfer progress. Callbacks run on the engine's
// goroutine and must not block.
type ProgressFunc func(ProgressEvent)

// ProgressEvent reports incremental progress for a long-running phase.
type ProgressEvent struct {
	Phase      Phase
	BytesDone  int64
	BytesTotal int64 // -1 when unknown
}

// progressReader wraps r to emit progress events as bytes flow through.
// It is a pass-through when progress display is off or no callback is set.
func (e *Engine) progressReader(r io.Reader, phase Phase, total int64) io.Reader {
	if !e.cfg.ShowProgress || e.progress == nil {
		return r
	}
	return &countingReader{r: r, phase: phase, total: total, emit: e.progress}
}

type countingReader struct {
	r     io.Reader
	phase Phase
	total int64
	done  int64
	emit  ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.done += int64(n)
		c.emit(ProgressEvent{Phase: c.phase, BytesDone: c.done, BytesTotal: c.total})
	}
	return n, err
}
