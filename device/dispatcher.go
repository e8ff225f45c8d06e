// Package device implements the firmware core of the wallet: a single
// threaded command dispatcher that decodes request frames, derives key
// material along a path, performs the requested curve operation, gates
// sensitive operations behind physical user confirmation and encodes the
// response. One request is processed to completion (including any approval
// wait) before the next frame is read; all secret scratch is zeroed between
// requests.
package device

import (
	"fmt"
	"log/slog"
	"time"

	walletdevice "github.com/kvernberg/wallet-device-go"
	"github.com/skythen/apdu"
)

// Transport is the byte-exchange collaborator carrying frames between host
// and device. Receive blocks; a receive error means the host disconnected
// and ends the session.
type Transport interface {
	Receive() ([]byte, error)
	Send(frame []byte) error
}

// Device wires the session, transport and user console together.
type Device struct {
	session   *Session
	transport Transport
	console   UserConsole
	gate      approvalGate
}

type Option func(*Device)

// WithApprovalTimeout overrides how long the approval gate waits for a user
// decision.
func WithApprovalTimeout(timeout time.Duration) Option {
	return func(device *Device) {
		device.gate.timeout = timeout
	}
}

func New(session *Session, transport Transport, console UserConsole, options ...Option) *Device {

	device := &Device{
		session:   session,
		transport: transport,
		console:   console,
		gate:      approvalGate{timeout: DefaultApprovalTimeout},
	}

	for _, option := range options {
		option(device)
	}

	return device

}

// Run processes requests until the transport fails. A transport error is
// returned to the caller (the emulator logs it and waits for the next
// connection); it cancels nothing that has not already been zeroed, because
// every request cleans up before Run reads the next frame.
func (device *Device) Run() error {

	for {

		frame, err := device.transport.Receive()

		if err != nil {
			return err
		}

		if err := device.transport.Send(device.Handle(frame)); err != nil {
			return err
		}

	}

}

// Handle processes one raw request frame and returns the response frame. No
// partial response is ever produced: any failure short-circuits to a
// status-only error frame.
func (device *Device) Handle(frame []byte) []byte {

	device.session.counters.Requests++

	capdu, err := apdu.ParseCapdu(frame)

	if err != nil {
		device.session.counters.ProtocolErrors++
		return errorResponse(walletdevice.SwWrongLength)
	}

	command, err := decodeCommand(*capdu)

	if err != nil {
		device.session.counters.ProtocolErrors++
		return errorResponse(statusWordFor(err))
	}

	payload, err := device.execute(command)

	if err != nil {
		slog.Debug("Command failed", "Sw", fmt.Sprintf("%04x", statusWordFor(err)), "Error", err)
		return errorResponse(statusWordFor(err))
	}

	return successResponse(payload)

}

// execute routes a decoded command through derivation, the approval gate and
// the operation engine.
func (device *Device) execute(command *Command) ([]byte, error) {

	switch command.Kind {

	case KindGetVersion:

		return device.versionPayload()

	case KindGetPublicKey:

		privateKey, err := deriveKey(device.session, command.Path)

		if err != nil {
			return nil, err
		}

		defer privateKey.Zero()

		if command.sensitive() {
			if err := device.approve(fmt.Sprintf("Export public key %s", command.Path)); err != nil {
				return nil, err
			}
		}

		return exportPublicKey(device.session, privateKey), nil

	case KindGetCommitment:

		privateKey, err := deriveKey(device.session, command.Path)

		if err != nil {
			return nil, err
		}

		defer privateKey.Zero()

		if err := device.approve(fmt.Sprintf("Commit to value %d with %s", command.Value, command.Path)); err != nil {
			return nil, err
		}

		return commit(device.session, privateKey, command.Value), nil

	case KindSign:

		privateKey, err := deriveKey(device.session, command.Path)

		if err != nil {
			return nil, err
		}

		defer privateKey.Zero()

		summary := fmt.Sprintf("Sign %x... with %s", command.Challenge[:4], command.Path)

		if err := device.approve(summary); err != nil {
			return nil, err
		}

		return sign(device.session, privateKey, command.Challenge)

	default:

		return nil, errUnknownInstruction

	}

}

// approve blocks on the approval gate and keeps the grant/deny counters.
func (device *Device) approve(summary string) error {

	if err := device.gate.await(device.console, summary); err != nil {
		device.session.counters.ApprovalsDenied++
		return err
	}

	device.session.counters.ApprovalsGranted++

	return nil

}

func (device *Device) versionPayload() ([]byte, error) {

	publicKey, err := masterPublicKey(device.session)

	if err != nil {
		return nil, err
	}

	identity, err := walletdevice.Identity(publicKey.SerializeCompressed())

	if err != nil {
		return nil, errInternal
	}

	payload := make([]byte, 0, 4+len(appName)+len(appVersion)+len(identity))
	payload = append(payload, payloadFormat)
	payload = append(payload, byte(len(appName)))
	payload = append(payload, appName...)
	payload = append(payload, byte(len(appVersion)))
	payload = append(payload, appVersion...)
	payload = append(payload, byte(len(identity)))
	payload = append(payload, identity...)
	payload = append(payload, 0x00) // no flags

	return payload, nil

}

// successResponse appends the success status word. A payload over the frame
// limit is a firmware bug; it is reported as an internal error rather than
// truncated.
func successResponse(payload []byte) []byte {

	if len(payload) > walletdevice.MaxPayload {
		return errorResponse(walletdevice.SwInternalError)
	}

	rapdu := apdu.Rapdu{Data: payload, SW1: 0x90, SW2: 0x00}

	frame, err := rapdu.Bytes()

	if err != nil {
		return errorResponse(walletdevice.SwInternalError)
	}

	return frame

}

func errorResponse(sw uint16) []byte {

	rapdu := apdu.Rapdu{SW1: byte(sw >> 8), SW2: byte(sw)}

	frame, err := rapdu.Bytes()

	if err != nil {
		// A status-only response cannot fail to serialize.
		return []byte{byte(walletdevice.SwInternalError >> 8), byte(walletdevice.SwInternalError & 0xff)}
	}

	return frame

}
