package codec

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrFrameTooLarge is returned by StreamReader.Run when a peer declares a
// body length exceeding the configured maximum. The stream is considered
// corrupted at that point and the read loop terminates.
var ErrFrameTooLarge = errors.New("codec: frame body exceeds configured maximum")

// defaultMaxBody bounds memory when a caller does not configure one.
const defaultMaxBody = HeaderLen + 1 + 16 + 2 + MaxUDPPayload

// BodyHandler processes one decoded frame body. It is called synchronously
// from StreamReader.Run; handlers that need to do slow work should hand the
// body off to another goroutine rather than blocking here, since blocking
// delays framing of the next frame. body aliases the reader's internal
// accumulator and is only valid until the handler returns;
// copy it to retain the data past the call, as with bufio.Scanner.Bytes.
type BodyHandler func(body []byte) error

// StreamReader implements a rolling-accumulator framing state machine: it
// tolerates arbitrary fragmentation and coalescing of the underlying reads,
// reassembling exactly the frames that were written.
type StreamReader struct {
	r       io.Reader
	maxBody int
	acc     []byte
	expect  int // 0 means "awaiting header"
	buf     []byte
}

// NewStreamReader creates a StreamReader over r. maxBody bounds the body
// length accepted from the header; 0 selects a generous default.
func NewStreamReader(r io.Reader, maxBody int) *StreamReader {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &StreamReader{r: r, maxBody: maxBody, buf: make([]byte, 64*1024)}
}

// Run reads from the underlying reader until EOF, an I/O error, or a frame
// exceeding maxBody is observed, calling handle once per fully reassembled
// frame body in the order frames were written. A clean EOF returns nil; any
// other termination returns the triggering error.
func (s *StreamReader) Run(handle BodyHandler) error {
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.acc = append(s.acc, s.buf[:n]...)
			if herr := s.drain(handle); herr != nil {
				return herr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// drain extracts every complete frame currently available in the
// accumulator, in order, calling handle for each.
func (s *StreamReader) drain(handle BodyHandler) error {
	for {
		if s.expect == 0 {
			if len(s.acc) < HeaderLen {
				return nil
			}
			length := binary.BigEndian.Uint32(s.acc[:HeaderLen])
			if int(length) > s.maxBody {
				return ErrFrameTooLarge
			}
			s.acc = s.acc[HeaderLen:]
			s.expect = int(length)
		}
		if len(s.acc) < s.expect {
			return nil
		}
		body := s.acc[:s.expect]
		s.acc = s.acc[s.expect:]
		s.expect = 0
		if err := handle(body); err != nil {
			return err
		}
	}
}
