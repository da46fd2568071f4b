// Package ihex frames raw bytes as Intel HEX text, the §6 output format
// selected by an output path ending in ".hex". Only the two record types
// this toolchain ever emits or reads are supported: 00 (data) and 01 (EOF).
package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/TheCodeCurrents/atlas-toolchain/pkg/atlaserr"
)

const (
	recordData = 0x00
	recordEOF  = 0x01

	maxRecordBytes = 16
)

func checksum(bytes ...byte) byte {
	var sum byte
	for _, b := range bytes {
		sum += b
	}
	return byte(-int8(sum))
}

func writeRecord(sb *strings.Builder, addr uint16, recType byte, data []byte) {
	sb.WriteByte(':')
	fmt.Fprintf(sb, "%02X%04X%02X", len(data), addr, recType)
	sb.WriteString(strings.ToUpper(hex.EncodeToString(data)))

	sum := checksum(append([]byte{byte(len(data)), byte(addr >> 8), byte(addr), recType}, data...)...)
	fmt.Fprintf(sb, "%02X\n", sum)
}

// Encode frames data as Intel HEX text, starting at the given base address.
func Encode(data []byte, base uint16) string {
	var sb strings.Builder
	addr := base
	for offset := 0; offset < len(data); offset += maxRecordBytes {
		end := offset + maxRecordBytes
		if end > len(data) {
			end = len(data)
		}
		writeRecord(&sb, addr, recordData, data[offset:end])
		addr += uint16(end - offset)
	}
	writeRecord(&sb, 0, recordEOF, nil)
	return sb.String()
}

// Decode parses Intel HEX text back into its data bytes, starting at
// record type 00's addresses and ignoring gaps (this toolchain always
// emits a single contiguous image with no holes).
func Decode(text string) ([]byte, error) {
	var out []byte
	var base uint16
	haveBase := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, ":") {
			return nil, fmt.Errorf("%w: record does not start with ':'", atlaserr.ErrIo)
		}
		raw, err := hex.DecodeString(line[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex in record: %s", atlaserr.ErrIo, err)
		}
		if len(raw) < 5 {
			return nil, fmt.Errorf("%w: record too short", atlaserr.ErrIo)
		}

		length := int(raw[0])
		addr := uint16(raw[1])<<8 | uint16(raw[2])
		recType := raw[3]
		data := raw[4 : 4+length]
		gotSum := raw[4+length]

		wantSum := checksum(append([]byte{raw[0], raw[1], raw[2], recType}, data...)...)
		if gotSum != wantSum {
			return nil, fmt.Errorf("%w: bad checksum in record", atlaserr.ErrIo)
		}

		switch recType {
		case recordEOF:
			return out, nil
		case recordData:
			if !haveBase {
				base = addr
				haveBase = true
			}
			relative := int(addr - base)
			for relative+length > len(out) {
				out = append(out, 0)
			}
			copy(out[relative:relative+length], data)
		default:
			return nil, fmt.Errorf("%w: unsupported record type %#x", atlaserr.ErrIo, recType)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s", atlaserr.ErrIo, err)
	}
	return out, nil
}
