package ihex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_SmallImage(t *testing.T) {
	data := []byte{0x00, 0x00, 0x11, 0x55, 0x81, 0x00}
	text := Encode(data, 0x0000)
	got, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRoundTrip_SpansMultipleRecords(t *testing.T) {
	data := make([]byte, 40) // needs three 16-byte data records
	for i := range data {
		data[i] = byte(i)
	}
	text := Encode(data, 0x0000)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 4) // 3 data records + EOF

	got, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEncode_EofRecord(t *testing.T) {
	text := Encode([]byte{0x01}, 0)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, ":00000001FF", lines[len(lines)-1])
}

func TestEncode_KnownRecordBytes(t *testing.T) {
	text := Encode([]byte{0x00, 0x00}, 0x0000)
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, ":020000000000FE", lines[0])
}

func TestDecode_BadChecksumRejected(t *testing.T) {
	_, err := Decode(":020000000000FF\n")
	assert.Error(t, err)
}

func TestDecode_MalformedRecordRejected(t *testing.T) {
	_, err := Decode("garbage\n")
	assert.ErrorContains(t, err, "does not start with")
}
