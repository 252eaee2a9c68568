package cache

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf8"
)

// This file contains the primitive encoders the cache file format is built
// from. Integers are fixed-width 8-byte big-endian; strings are
// rune-counted UTF-8.

func encBinaryBool(b bool) []byte {
	enc := make([]byte, 1)

	if b {
		enc[0] = 1
	}

	return enc
}

func encBinaryString(s string) []byte {
	enc := make([]byte, 0)

	chCount := 0
	for _, ch := range s {
		chBuf := make([]byte, utf8.UTFMax)
		byteLen := utf8.EncodeRune(chBuf, ch)
		enc = append(enc, chBuf[:byteLen]...)
		chCount++
	}

	countBytes := encBinaryInt(chCount)
	enc = append(countBytes, enc...)

	return enc
}

func encBinaryInt(i int) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, uint64(int64(i)))
	return enc
}

// always consumes 1 byte.
func decBinaryBool(data []byte) (bool, int, error) {
	if len(data) < 1 {
		return false, 0, fmt.Errorf("unexpected end of data")
	}

	switch data[0] {
	case 0:
		return false, 1, nil
	case 1:
		return true, 1, nil
	default:
		return false, 0, fmt.Errorf("unknown non-bool value")
	}
}

// returns the string followed by bytes consumed.
func decBinaryString(data []byte) (string, int, error) {
	runeCount, readBytes, err := decBinaryInt(data)
	if err != nil {
		return "", 0, fmt.Errorf("decoding string rune count: %w", err)
	}
	data = data[readBytes:]

	if runeCount < 0 {
		return "", 0, fmt.Errorf("string rune count < 0")
	}

	var sb strings.Builder

	for i := 0; i < runeCount; i++ {
		ch, bytesRead := utf8.DecodeRune(data)
		if ch == utf8.RuneError {
			if bytesRead == 0 {
				return "", 0, fmt.Errorf("unexpected end of data in string")
			}
			return "", 0, fmt.Errorf("invalid UTF-8 encoding in string")
		}

		sb.WriteRune(ch)
		readBytes += bytesRead
		data = data[bytesRead:]
	}

	return sb.String(), readBytes, nil
}

// will always read 8 bytes but does return len.
func decBinaryInt(data []byte) (int, int, error) {
	if len(data) < 8 {
		return 0, 0, fmt.Errorf("data does not contain 8 bytes")
	}

	val := int64(binary.BigEndian.Uint64(data[:8]))
	return int(val), 8, nil
}

// reader tracks a decode position through a buffer so the field-by-field
// unmarshal functions stay flat.
type reader struct {
	data []byte
}

func (r *reader) readInt() (int, error) {
	v, n, err := decBinaryInt(r.data)
	if err != nil {
		return 0, err
	}
	r.data = r.data[n:]
	return v, nil
}

func (r *reader) readString() (string, error) {
	v, n, err := decBinaryString(r.data)
	if err != nil {
		return "", err
	}
	r.data = r.data[n:]
	return v, nil
}

func (r *reader) readBool() (bool, error) {
	v, n, err := decBinaryBool(r.data)
	if err != nil {
		return false, err
	}
	r.data = r.data[n:]
	return v, nil
}
