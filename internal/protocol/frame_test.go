package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadFrame_JSONPayload(t *testing.T) {
	var buf bytes.Buffer
	req := LoginReqPayload{Username: "alice", Password: "hunter2", Role: "player"}

	require.NoError(t, WriteFrame(&buf, LoginReq, req))

	frame, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, LoginReq, frame.Type)

	var got LoginReqPayload
	require.NoError(t, Decode(frame.Payload, &got))
	assert.Equal(t, req, got)
}

func TestWriteReadFrame_BinaryPayload(t *testing.T) {
	var buf bytes.Buffer
	data := []byte{0x00, 0x01, 0xFF, 0x10}

	require.NoError(t, WriteBinaryFrame(&buf, UploadData, data))

	frame, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, UploadData, frame.Type)
	assert.Equal(t, data, frame.Payload)
}

func TestReadFrame_RejectsOversizedFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBinaryFrame(&buf, UploadData, []byte{0x01, 0x02, 0x03}))

	_, err := ReadFrame(&buf, 1)
	assert.Error(t, err)
}

func TestReadFrame_RejectsZeroLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})
	_, err := ReadFrame(buf, 0)
	assert.Error(t, err)
}

func TestReadFrame_TruncatedStream(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 5, byte(LoginReq)})
	_, err := ReadFrame(buf, 0)
	assert.Error(t, err)
}

func TestMultipleFramesInSequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, GameListReq, nil))
	require.NoError(t, WriteFrame(&buf, RoomListReq, nil))

	f1, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, GameListReq, f1.Type)

	f2, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, RoomListReq, f2.Type)
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "LOGIN_REQ", LoginReq.String())
	assert.Equal(t, "ROOM_CHAT", RoomChat.String())
	assert.Equal(t, "UNKNOWN", Type(255).String())
}
