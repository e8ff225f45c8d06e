package walletdevice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Hardened is the flag bit marking a hardened derivation path segment.
const Hardened uint32 = 0x80000000

// Path is an ordered sequence of derivation indices walked from the master
// key down to a child key. Order is significant; reordering the segments
// yields an unrelated key.
type Path []uint32

var (
	ErrPathEmpty   = errors.New("derivation path is empty")
	ErrPathTooLong = errors.New("derivation path exceeds maximum length")
)

// ParsePath parses a human readable path such as "m/44'/535348'/0'/0/0".
// An apostrophe or "h" suffix marks a hardened segment.
func ParsePath(s string) (Path, error) {

	segments := strings.Split(s, "/")

	if len(segments) > 0 && (segments[0] == "m" || segments[0] == "M") {
		segments = segments[1:]
	}

	if len(segments) == 0 {
		return nil, ErrPathEmpty
	}

	if len(segments) > MaxPathLen {
		return nil, ErrPathTooLong
	}

	path := make(Path, 0, len(segments))

	for _, segment := range segments {

		hardened := false

		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			hardened = true
			segment = segment[:len(segment)-1]
		}

		index, err := strconv.ParseUint(segment, 10, 32)

		if err != nil {
			return nil, fmt.Errorf("invalid path segment %q: %w", segment, err)
		}

		if uint32(index)&Hardened != 0 {
			return nil, fmt.Errorf("path segment %d out of range", index)
		}

		if hardened {
			index |= uint64(Hardened)
		}

		path = append(path, uint32(index))

	}

	return path, nil

}

// Encode serializes the path as its wire operand: one count byte followed by
// one 4-byte big-endian index per segment.
func (path Path) Encode() ([]byte, error) {

	if len(path) == 0 {
		return nil, ErrPathEmpty
	}

	if len(path) > MaxPathLen {
		return nil, ErrPathTooLong
	}

	encoded := make([]byte, 1+4*len(path))
	encoded[0] = byte(len(path))

	for i, index := range path {
		binary.BigEndian.PutUint32(encoded[1+4*i:], index)
	}

	return encoded, nil

}

// DecodePath reads a path operand from the front of operands and returns the
// path together with the remaining bytes. A zero count, a count over the
// maximum or a partial trailing index is an error.
func DecodePath(operands []byte) (Path, []byte, error) {

	if len(operands) == 0 {
		return nil, nil, errors.New("missing path operand")
	}

	count := int(operands[0])

	if count == 0 {
		return nil, nil, ErrPathEmpty
	}

	if count > MaxPathLen {
		return nil, nil, ErrPathTooLong
	}

	if len(operands) < 1+4*count {
		return nil, nil, errors.New("truncated path operand")
	}

	path := make(Path, count)

	for i := 0; i < count; i++ {
		path[i] = binary.BigEndian.Uint32(operands[1+4*i:])
	}

	return path, operands[1+4*count:], nil

}

func (path Path) String() string {

	var builder strings.Builder
	builder.WriteString("m")

	for _, index := range path {

		builder.WriteString("/")
		builder.WriteString(strconv.FormatUint(uint64(index&^Hardened), 10))

		if index&Hardened != 0 {
			builder.WriteString("'")
		}

	}

	return builder.String()

}
