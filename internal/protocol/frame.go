// Package protocol implements the hub's wire framing: a 4-byte big-endian
// length prefix, a 1-byte message type, and a JSON or raw-binary payload.
package protocol

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// DefaultMaxFrameSize bounds a single frame's length field (type byte +
// payload, not counting the 4-byte header) when no explicit cap is configured.
const DefaultMaxFrameSize = 16 << 20

// Frame is one decoded message: a fixed type code plus its payload. Payload
// is the raw JSON object bytes for every type except UploadData and
// DownloadData, which carry an opaque binary blob.
type Frame struct {
	Type    Type
	Payload []byte
}

// ReadFrame reads one frame from r, enforcing maxSize on the frame's length
// field (type byte + payload; the 4-byte header is not counted). A maxSize of
// zero disables the cap. A length of zero, a length beyond
// maxSize, or EOF mid-frame all return an error; callers must close the
// connection on any such error, per the protocol error policy.
func ReadFrame(r io.Reader, maxSize uint32) (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return Frame{}, fmt.Errorf("reading frame length: %w", err)
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length == 0 {
		return Frame{}, fmt.Errorf("invalid frame length 0")
	}
	if maxSize > 0 && length > maxSize {
		return Frame{}, fmt.Errorf("frame length %d exceeds cap %d", length, maxSize)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return Frame{}, fmt.Errorf("reading frame body: %w", err)
	}

	return Frame{Type: Type(body[0]), Payload: body[1:]}, nil
}

// WriteFrame writes a frame with a JSON-encodable payload.
func WriteFrame(w io.Writer, t Type, payload any) error {
	var body []byte
	switch v := payload.(type) {
	case nil:
		body = nil
	case []byte:
		body = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding payload for type %d: %w", t, err)
		}
		body = encoded
	}
	return writeRaw(w, t, body)
}

// WriteBinaryFrame writes a frame carrying an opaque byte payload (used for
// UploadData/DownloadData chunks).
func WriteBinaryFrame(w io.Writer, t Type, data []byte) error {
	return writeRaw(w, t, data)
}

func writeRaw(w io.Writer, t Type, body []byte) error {
	total := 1 + len(body)
	header := make([]byte, 4+total)
	binary.BigEndian.PutUint32(header[:4], uint32(total))
	header[4] = byte(t)
	copy(header[5:], body)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing frame type %d: %w", t, err)
	}
	return nil
}

// Decode unmarshals a frame's payload into out. It is a thin wrapper so
// handlers get a consistent wrapped error on malformed JSON.
func Decode(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
