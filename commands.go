package walletdevice

import "fmt"

// INSTRUCTION CATALOG

// Every request frame carries the fixed instruction class followed by one of
// the instruction codes below. Adding a command means adding a code here and
// a case to the decoder on the device side.
const (
	Cla byte = 0x80

	InsGetVersion    byte = 0x01
	InsSign          byte = 0x02
	InsGetCommitment byte = 0x03
	InsGetPublicKey  byte = 0x04
)

// P1Display asks the device to show the public key on screen and wait for
// confirmation before exporting it.
const P1Display byte = 0x01

// Protocol limits. These are fixed at compile time; the device sizes its
// buffers from them.
const (
	// MaxPathLen is the maximum number of derivation path segments.
	MaxPathLen = 10

	// ChallengeLen is the exact length of a signing challenge.
	ChallengeLen = 32

	// MaxPayload is the maximum request or response payload length.
	MaxPayload = 255
)

// Status words returned in the trailing two bytes of every response.
const (
	SwOK                 uint16 = 0x9000
	SwClassNotSupported  uint16 = 0x6e00
	SwUnknownInstruction uint16 = 0x6d00
	SwWrongLength        uint16 = 0x69f0
	SwInvalidPath        uint16 = 0x6a88
	SwInvalidChallenge   uint16 = 0x9210
	SwUserRejected       uint16 = 0x6985
	SwInternalError      uint16 = 0x6f00
)

// StatusError is a non-success status word reported by the device.
type StatusError struct {
	Sw uint16
}

func (e StatusError) Error() string {

	switch e.Sw {
	case SwClassNotSupported:
		return "device: instruction class not supported"
	case SwUnknownInstruction:
		return "device: unknown instruction"
	case SwWrongLength:
		return "device: wrong data length"
	case SwInvalidPath:
		return "device: invalid derivation path"
	case SwInvalidChallenge:
		return "device: invalid challenge"
	case SwUserRejected:
		return "device: rejected by user or timed out"
	case SwInternalError:
		return "device: internal error"
	default:
		return fmt.Sprintf("device: status word %04x", e.Sw)
	}

}
