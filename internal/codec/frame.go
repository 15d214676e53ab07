// Package codec implements the length-prefixed wire frame used between the
// client and server forwarders: a 4-byte big-endian body length followed by
// an IP-tagged socket endpoint and an opaque UDP payload.
package codec

import (
	"encoding/binary"
	"errors"
	"net"
)

// IP version tags, as they appear on the wire.
const (
	IPv4 byte = 4
	IPv6 byte = 6
)

// HeaderLen is the size of the frame length prefix.
const HeaderLen = 4

// MaxUDPPayload is the IPv4 UDP maximum payload size; implementations SHOULD
// support frames up to this size.
const MaxUDPPayload = 65507

// controlBodyLen is the wire length of a Ping/Pong control frame. No valid
// data frame body can ever be this short (minimum data body is 1+4+2=7 for
// IPv4), so control frames never collide with data frames.
const controlBodyLen = 1

// Control frame bytes. These are never passed to DecodeBody; callers check
// IsControlFrame first.
const (
	ControlPing byte = 0x00
	ControlPong byte = 0x01
)

var (
	// ErrBadVersion reports an IP version byte that is neither 4 nor 6.
	ErrBadVersion = errors.New("codec: invalid ip version byte")
	// ErrShortBody reports a body too short to contain a version tag, an IP
	// address of the declared length, and a port.
	ErrShortBody = errors.New("codec: body shorter than minimum frame size")
	// ErrPayloadTooLarge reports a payload exceeding MaxUDPPayload.
	ErrPayloadTooLarge = errors.New("codec: payload exceeds maximum udp payload size")
)

// Endpoint is the wire-tagged socket address carried by every data frame: an
// IP version, the raw IP bytes (4 or 16), and a port. It also serves as the
// server's flow-table key via its String method.
type Endpoint struct {
	Version byte
	IP      net.IP
	Port    uint16
}

// NewEndpoint builds an Endpoint from a resolved UDP address, choosing the
// wire version tag from the address family actually in use.
func NewEndpoint(addr *net.UDPAddr) Endpoint {
	ip4 := addr.IP.To4()
	if ip4 != nil {
		return Endpoint{Version: IPv4, IP: ip4, Port: uint16(addr.Port)}
	}
	return Endpoint{Version: IPv6, IP: addr.IP.To16(), Port: uint16(addr.Port)}
}

// UDPAddr converts the endpoint back to a *net.UDPAddr.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: e.IP, Port: int(e.Port)}
}

// String renders a stable textual form used as the server's flow-map key.
func (e Endpoint) String() string {
	return e.UDPAddr().String()
}

// ipLen returns the number of IP address bytes this version tag carries on
// the wire, or 0 if the version is not recognized.
func ipLen(version byte) int {
	switch version {
	case IPv4:
		return 4
	case IPv6:
		return 16
	default:
		return 0
	}
}

// bodyLen returns the wire body length that Encode would produce for the
// given endpoint and payload size.
func bodyLen(e Endpoint, payloadLen int) int {
	return 1 + ipLen(e.Version) + 2 + payloadLen
}

// EncodeBody renders the frame body (version, IP, port, payload) without the
// 4-byte length header. Most callers should prefer Encode or WriteFrame,
// which assemble the full wire frame; EncodeBody is exposed for tests and for
// callers that need to compute the length before writing the header.
func EncodeBody(e Endpoint, payload []byte) ([]byte, error) {
	if len(payload) > MaxUDPPayload {
		return nil, ErrPayloadTooLarge
	}
	n := ipLen(e.Version)
	if n == 0 {
		return nil, ErrBadVersion
	}
	body := make([]byte, 1+n+2+len(payload))
	body[0] = e.Version
	copy(body[1:1+n], e.IP)
	binary.BigEndian.PutUint16(body[1+n:1+n+2], e.Port)
	copy(body[1+n+2:], payload)
	return body, nil
}

// Encode renders a complete frame (4-byte header + body) ready to write to
// the wire.
func Encode(e Endpoint, payload []byte) ([]byte, error) {
	body, err := EncodeBody(e, payload)
	if err != nil {
		return nil, err
	}
	frame := make([]byte, HeaderLen+len(body))
	binary.BigEndian.PutUint32(frame[:HeaderLen], uint32(len(body)))
	copy(frame[HeaderLen:], body)
	return frame, nil
}

// IsControlFrame reports whether body is a Ping/Pong liveness frame rather
// than a UDP data frame.
func IsControlFrame(body []byte) bool {
	return len(body) == controlBodyLen && (body[0] == ControlPing || body[0] == ControlPong)
}

// DecodeBody parses a frame body into its endpoint and payload. Callers must
// check IsControlFrame first; DecodeBody assumes body is a data frame.
func DecodeBody(body []byte) (Endpoint, []byte, error) {
	if len(body) < 1 {
		return Endpoint{}, nil, ErrShortBody
	}
	version := body[0]
	n := ipLen(version)
	if n == 0 {
		return Endpoint{}, nil, ErrBadVersion
	}
	if len(body) < 1+n+2 {
		return Endpoint{}, nil, ErrShortBody
	}
	ip := make(net.IP, n)
	copy(ip, body[1:1+n])
	port := binary.BigEndian.Uint16(body[1+n : 1+n+2])
	payload := body[1+n+2:]
	return Endpoint{Version: version, IP: ip, Port: port}, payload, nil
}
