package walletdevice

import (
	"fmt"

	"github.com/skythen/apdu"
)

// apduWrap builds a request frame for the given instruction and operand
// bytes. It returns the byte representation of the APDU command or an error
// if the operands exceed the frame limit.
func apduWrap(ins, p1, p2 byte, data []byte) ([]byte, error) {

	if len(data) > MaxPayload {
		return nil, fmt.Errorf("operand length %d exceeds frame limit %d", len(data), MaxPayload)
	}

	capdu := apdu.Capdu{Cla: Cla, Ins: ins, P1: p1, P2: p2, Data: data}

	return capdu.Bytes()

}

// apduUnwrap parses a response frame and returns its payload. A non-success
// status word is returned as a StatusError.
func apduUnwrap(value []byte) ([]byte, error) {

	rapdu, err := apdu.ParseRapdu(value)

	if err != nil {
		return nil, err
	}

	sw := uint16(rapdu.SW1)<<8 | uint16(rapdu.SW2)

	if sw != SwOK {
		return nil, StatusError{Sw: sw}
	}

	return rapdu.Data, nil

}
