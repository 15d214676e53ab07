package codec

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"
)

func buildFrames(t *testing.T, n int) ([]byte, [][]byte) {
	t.Helper()
	var wire bytes.Buffer
	var bodies [][]byte
	for i := 0; i < n; i++ {
		e := mustEndpoint(t, "127.0.0.1:40000")
		payload := []byte{byte(i), byte(i + 1)}
		frame, err := Encode(e, payload)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		wire.Write(frame)
		bodies = append(bodies, frame[HeaderLen:])
	}
	return wire.Bytes(), bodies
}

func TestStreamReaderSingleRead(t *testing.T) {
	wire, want := buildFrames(t, 3)
	var got [][]byte
	sr := NewStreamReader(bytes.NewReader(wire), 0)
	if err := sr.Run(func(body []byte) error {
		got = append(got, append([]byte(nil), body...))
		return nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("frame %d mismatch: got % X want % X", i, got[i], want[i])
		}
	}
}

// TestStreamReaderOneByteAtATime exercises the chunked-delivery boundary
// behavior: a byte-at-a-time reader must reconstruct identical frames to a
// single bulk read.
func TestStreamReaderOneByteAtATime(t *testing.T) {
	wire, want := buildFrames(t, 2)
	var got [][]byte
	sr := NewStreamReader(iotest.OneByteReader(bytes.NewReader(wire)), 0)
	if err := sr.Run(func(body []byte) error {
		got = append(got, append([]byte(nil), body...))
		return nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("frame %d mismatch: got % X want % X", i, got[i], want[i])
		}
	}
}

// TestStreamReaderSplitAtEveryOffset checks that a frame split across two
// reads at every offset 1..body_length reconstructs identically.
func TestStreamReaderSplitAtEveryOffset(t *testing.T) {
	e := mustEndpoint(t, "127.0.0.1:9000")
	frame, err := Encode(e, []byte{0xAA, 0xBB})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for split := 1; split < len(frame); split++ {
		r := io.MultiReader(bytes.NewReader(frame[:split]), bytes.NewReader(frame[split:]))
		var got []byte
		sr := NewStreamReader(r, 0)
		if err := sr.Run(func(body []byte) error {
			got = append([]byte(nil), body...)
			return nil
		}); err != nil {
			t.Fatalf("split %d: run: %v", split, err)
		}
		if !bytes.Equal(got, frame[HeaderLen:]) {
			t.Fatalf("split %d: mismatch: got % X want % X", split, got, frame[HeaderLen:])
		}
	}
}

func TestStreamReaderCoalescedFrames(t *testing.T) {
	wire, want := buildFrames(t, 5)
	// Deliver all five frames back to back in a single read.
	r := bytes.NewReader(wire)
	var got [][]byte
	sr := NewStreamReader(r, 0)
	if err := sr.Run(func(body []byte) error {
		got = append(got, append([]byte(nil), body...))
		return nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames in order, got %d", len(want), len(got))
	}
}

func TestStreamReaderFrameTooLarge(t *testing.T) {
	e := mustEndpoint(t, "127.0.0.1:1")
	frame, err := Encode(e, make([]byte, 100))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	sr := NewStreamReader(bytes.NewReader(frame), 10)
	err = sr.Run(func(body []byte) error { return nil })
	if err != ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestStreamReaderCleanEOF(t *testing.T) {
	sr := NewStreamReader(bytes.NewReader(nil), 0)
	if err := sr.Run(func(body []byte) error { return nil }); err != nil {
		t.Fatalf("expected nil on clean EOF, got %v", err)
	}
}

func TestStreamReaderPropagatesReadError(t *testing.T) {
	sr := NewStreamReader(iotest.ErrReader(io.ErrClosedPipe), 0)
	err := sr.Run(func(body []byte) error { return nil })
	if err != io.ErrClosedPipe {
		t.Fatalf("expected io.ErrClosedPipe, got %v", err)
	}
}

func TestStreamReaderHandlerErrorStopsReading(t *testing.T) {
	wire, _ := buildFrames(t, 2)
	calls := 0
	wantErr := io.ErrUnexpectedEOF
	sr := NewStreamReader(bytes.NewReader(wire), 0)
	err := sr.Run(func(body []byte) error {
		calls++
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("expected handler error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one handler call before stopping, got %d", calls)
	}
}
