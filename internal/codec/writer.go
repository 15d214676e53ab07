package codec

import (
	"encoding/binary"
	"io"
	"net"
	"sync"
)

// Writer serializes frame writes onto a shared stream so that no two frames
// ever interleave. One Writer is shared by the connection's deframer and
// every flow's reader task.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w for exclusive, whole-frame writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame atomically writes one complete data frame. It uses net.Buffers
// so that, when the underlying writer supports it, the header and body reach
// the wire in a single writev syscall without an intermediate copy.
func (fw *Writer) WriteFrame(e Endpoint, payload []byte) error {
	body, err := EncodeBody(e, payload)
	if err != nil {
		return err
	}
	var header [HeaderLen]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(body)))

	fw.mu.Lock()
	defer fw.mu.Unlock()
	bufs := net.Buffers{header[:], body}
	_, err = bufs.WriteTo(fw.w)
	return err
}

// WriteControl atomically writes a one-byte control frame (Ping or Pong).
func (fw *Writer) WriteControl(b byte) error {
	var frame [HeaderLen + controlBodyLen]byte
	binary.BigEndian.PutUint32(frame[:HeaderLen], controlBodyLen)
	frame[HeaderLen] = b

	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, err := fw.w.Write(frame[:])
	return err
}
