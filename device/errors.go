package device

import (
	"errors"

	walletdevice "github.com/kvernberg/wallet-device-go"
)

// Error is a device-side failure that maps onto a response status word.
// Every error leaving the decoder, derivation engine, crypto engine or
// approval gate is one of these (possibly wrapped); anything else is reported
// as an internal error.
type Error struct {
	Sw      uint16
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusWord returns the status word encoded into the response frame.
func (e *Error) StatusWord() uint16 {
	return e.Sw
}

var (
	errClassNotSupported  = &Error{Sw: walletdevice.SwClassNotSupported, Message: "instruction class not supported"}
	errUnknownInstruction = &Error{Sw: walletdevice.SwUnknownInstruction, Message: "unknown instruction"}
	errWrongLength        = &Error{Sw: walletdevice.SwWrongLength, Message: "wrong data length"}
	errInvalidPath        = &Error{Sw: walletdevice.SwInvalidPath, Message: "invalid derivation path"}
	errInvalidChallenge   = &Error{Sw: walletdevice.SwInvalidChallenge, Message: "invalid challenge"}
	errUserRejected       = &Error{Sw: walletdevice.SwUserRejected, Message: "rejected by user"}
	errApprovalTimeout    = &Error{Sw: walletdevice.SwUserRejected, Message: "approval timed out"}
	errInternal           = &Error{Sw: walletdevice.SwInternalError, Message: "internal error"}
)

// statusWordFor maps an error to the status word of the response that
// reports it.
func statusWordFor(err error) uint16 {

	var deviceError *Error

	if errors.As(err, &deviceError) {
		return deviceError.StatusWord()
	}

	return walletdevice.SwInternalError

}
