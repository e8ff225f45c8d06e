package device

import (
	"encoding/binary"

	walletdevice "github.com/kvernberg/wallet-device-go"
	"github.com/skythen/apdu"
)

// Kind enumerates the command catalog. The decoder switches over it
// exhaustively; adding an instruction means adding a Kind and a decode case.
type Kind uint8

const (
	KindGetVersion Kind = iota
	KindSign
	KindGetCommitment
	KindGetPublicKey
)

// Command is a decoded, validated request. Exactly the fields required by
// its Kind are populated; operand bounds have already been checked, so the
// engines never see out-of-range input.
type Command struct {
	Kind      Kind
	Path      walletdevice.Path
	Challenge [32]byte
	Value     uint64
	Display   bool
}

// sensitive reports whether the command must pass the approval gate before
// it completes.
func (command *Command) sensitive() bool {

	switch command.Kind {
	case KindSign, KindGetCommitment:
		return true
	case KindGetPublicKey:
		return command.Display
	default:
		return false
	}

}

// decodeCommand validates the frame header and operand shape and produces a
// typed command. It performs no cryptographic work and touches no secret
// state.
func decodeCommand(capdu apdu.Capdu) (*Command, error) {

	if capdu.Cla != walletdevice.Cla {
		return nil, errClassNotSupported
	}

	if len(capdu.Data) > walletdevice.MaxPayload {
		return nil, errWrongLength
	}

	switch capdu.Ins {

	case walletdevice.InsGetVersion:

		if len(capdu.Data) != 0 {
			return nil, errWrongLength
		}

		return &Command{Kind: KindGetVersion}, nil

	case walletdevice.InsSign:

		path, rest, err := walletdevice.DecodePath(capdu.Data)

		if err != nil {
			return nil, pathDecodeError(err)
		}

		if len(rest) != walletdevice.ChallengeLen {
			return nil, errWrongLength
		}

		command := &Command{Kind: KindSign, Path: path}
		copy(command.Challenge[:], rest)

		if command.Challenge == [32]byte{} {
			return nil, errInvalidChallenge
		}

		return command, nil

	case walletdevice.InsGetCommitment:

		path, rest, err := walletdevice.DecodePath(capdu.Data)

		if err != nil {
			return nil, pathDecodeError(err)
		}

		if len(rest) != 8 {
			return nil, errWrongLength
		}

		return &Command{
			Kind:  KindGetCommitment,
			Path:  path,
			Value: binary.LittleEndian.Uint64(rest),
		}, nil

	case walletdevice.InsGetPublicKey:

		path, rest, err := walletdevice.DecodePath(capdu.Data)

		if err != nil {
			return nil, pathDecodeError(err)
		}

		if len(rest) != 0 {
			return nil, errWrongLength
		}

		return &Command{
			Kind:    KindGetPublicKey,
			Path:    path,
			Display: capdu.P1 == walletdevice.P1Display,
		}, nil

	default:

		return nil, errUnknownInstruction

	}

}

// pathDecodeError distinguishes a structurally broken operand (length fault)
// from a path the protocol does not allow.
func pathDecodeError(err error) error {

	switch err {
	case walletdevice.ErrPathEmpty, walletdevice.ErrPathTooLong:
		return errInvalidPath
	default:
		return errWrongLength
	}

}
