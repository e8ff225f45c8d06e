// Package walletdevice implements the host side of a hardware wallet command
// protocol: request building, response parsing and verification for the
// GetVersion, GetPublicKey, GetCommitment and Sign instructions, plus the
// wire-level pieces (instruction catalog, status words, derivation path
// codec) shared with the device core in the device package.
package walletdevice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// payloadFormat is the leading format byte of every response payload.
const payloadFormat byte = 0x01

// Client issues requests to a wallet device and decodes its responses. The
// zero value is not usable; create one with NewClient.
//
// The request builders return raw frames so a caller owning its own transport
// can pair them with ParseResponse; the convenience methods (Version,
// PublicKey, Commitment, Sign) do the exchange in one call.
type Client struct {
	transport Transport

	pendingChallenge [32]byte

	queue

	// Results of the most recent successfully parsed responses.
	VersionInfo *VersionData
	PublicKeys  map[string]PublicKeyData
	Commitments map[string]CommitmentData
	Signatures  []SignatureData
}

func NewClient(transport Transport) *Client {
	return &Client{
		transport:   transport,
		PublicKeys:  make(map[string]PublicKeyData),
		Commitments: make(map[string]CommitmentData),
	}
}

// EnableDebugLogging turns on debug output for the protocol exchange.
func (client *Client) EnableDebugLogging() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))
}

// VersionRequest builds a GetVersion frame.
func (client *Client) VersionRequest() ([]byte, error) {

	slog.Debug("Request version")

	client.queue.enqueue("version")

	return apduWrap(InsGetVersion, 0x00, 0x00, nil)

}

// PublicKeyRequest builds a GetPublicKey frame for the given path. With
// display set, the device shows the key and waits for user confirmation
// before answering.
func (client *Client) PublicKeyRequest(path Path, display bool) ([]byte, error) {

	slog.Debug("Request public key", "Path", path.String(), "Display", display)

	operands, err := path.Encode()

	if err != nil {
		return nil, err
	}

	var p1 byte

	if display {
		p1 = P1Display
	}

	client.queue.enqueue("pubkey:" + path.String())

	return apduWrap(InsGetPublicKey, p1, 0x00, operands)

}

// CommitmentRequest builds a GetCommitment frame. The blinding factor is the
// secret scalar the device derives for the path; only the value travels in
// the clear.
func (client *Client) CommitmentRequest(path Path, value uint64) ([]byte, error) {

	slog.Debug("Request commitment", "Path", path.String(), "Value", value)

	operands, err := path.Encode()

	if err != nil {
		return nil, err
	}

	valueBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(valueBytes, value)

	client.queue.enqueue("commit:" + path.String())

	return apduWrap(InsGetCommitment, 0x00, 0x00, append(operands, valueBytes...))

}

// SignRequest builds a Sign frame over a 32-byte challenge.
func (client *Client) SignRequest(path Path, challenge [32]byte) ([]byte, error) {

	slog.Debug("Request sign", "Path", path.String(), "Challenge", fmt.Sprintf("%x", challenge))

	operands, err := path.Encode()

	if err != nil {
		return nil, err
	}

	client.pendingChallenge = challenge
	client.queue.enqueue("sign")

	return apduWrap(InsSign, 0x00, 0x00, append(operands, challenge[:]...))

}

// ParseResponse unwraps a response frame and decodes it according to the
// oldest outstanding request. Signatures are verified against the returned
// public key before they are accepted.
func (client *Client) ParseResponse(response []byte) error {

	payload, err := apduUnwrap(response)

	command := client.queue.dequeue()

	if command == "" {
		return errors.New("no outstanding request")
	}

	if err != nil {
		return err
	}

	switch {

	case command == "version":

		versionData, err := parseVersionData(payload)

		if err != nil {
			return err
		}

		client.VersionInfo = versionData

	case len(command) > 7 && command[:7] == "pubkey:":

		publicKeyData, err := parsePublicKeyData(payload)

		if err != nil {
			return err
		}

		client.PublicKeys[command[7:]] = *publicKeyData

	case len(command) > 7 && command[:7] == "commit:":

		commitmentData, err := parseCommitmentData(payload)

		if err != nil {
			return err
		}

		client.Commitments[command[7:]] = *commitmentData

	case command == "sign":

		signatureData, err := parseSignatureData(payload)

		if err != nil {
			return err
		}

		if err := VerifySignature(*signatureData, client.pendingChallenge[:]); err != nil {
			return fmt.Errorf("device returned a bad signature: %w", err)
		}

		client.Signatures = append(client.Signatures, *signatureData)

	default:

		return errors.New("incorrect command found in queue")

	}

	return nil

}

// Version asks the device for its version and identity.
func (client *Client) Version() (*VersionData, error) {

	request, err := client.VersionRequest()

	if err != nil {
		return nil, err
	}

	if err := client.exchange(request); err != nil {
		return nil, err
	}

	return client.VersionInfo, nil

}

// PublicKey exports the public key for a path.
func (client *Client) PublicKey(path Path, display bool) (*PublicKeyData, error) {

	request, err := client.PublicKeyRequest(path, display)

	if err != nil {
		return nil, err
	}

	if err := client.exchange(request); err != nil {
		return nil, err
	}

	publicKeyData := client.PublicKeys[path.String()]

	return &publicKeyData, nil

}

// Commitment asks the device to commit to value under the path's blinding
// key.
func (client *Client) Commitment(path Path, value uint64) (*CommitmentData, error) {

	request, err := client.CommitmentRequest(path, value)

	if err != nil {
		return nil, err
	}

	if err := client.exchange(request); err != nil {
		return nil, err
	}

	commitmentData := client.Commitments[path.String()]

	return &commitmentData, nil

}

// Sign asks the device to sign a 32-byte challenge with the path's key. The
// returned signature has already been verified against the returned public
// key.
func (client *Client) Sign(path Path, challenge [32]byte) (*SignatureData, error) {

	request, err := client.SignRequest(path, challenge)

	if err != nil {
		return nil, err
	}

	if err := client.exchange(request); err != nil {
		return nil, err
	}

	return &client.Signatures[len(client.Signatures)-1], nil

}

func (client *Client) exchange(request []byte) error {

	response, err := client.transport.Exchange(request)

	if err != nil {
		return err
	}

	return client.ParseResponse(response)

}

func parseVersionData(payload []byte) (*VersionData, error) {

	if len(payload) < 2 || payload[0] != payloadFormat {
		return nil, errors.New("malformed version payload")
	}

	rest := payload[1:]

	name, rest, err := readLengthPrefixed(rest)

	if err != nil {
		return nil, err
	}

	version, rest, err := readLengthPrefixed(rest)

	if err != nil {
		return nil, err
	}

	identity, rest, err := readLengthPrefixed(rest)

	if err != nil {
		return nil, err
	}

	if len(rest) != 1 {
		return nil, errors.New("malformed version payload")
	}

	return &VersionData{
		Name:     string(name),
		Version:  string(version),
		Identity: string(identity),
		Flags:    rest[0],
	}, nil

}

func parsePublicKeyData(payload []byte) (*PublicKeyData, error) {

	if len(payload) != 1+33 || payload[0] != payloadFormat {
		return nil, errors.New("malformed public key payload")
	}

	var publicKeyData PublicKeyData
	copy(publicKeyData.PublicKey[:], payload[1:])

	return &publicKeyData, nil

}

func parseCommitmentData(payload []byte) (*CommitmentData, error) {

	if len(payload) != 1+33 || payload[0] != payloadFormat {
		return nil, errors.New("malformed commitment payload")
	}

	var commitmentData CommitmentData
	copy(commitmentData.Commitment[:], payload[1:])

	return &commitmentData, nil

}

func parseSignatureData(payload []byte) (*SignatureData, error) {

	if len(payload) != 1+33+33+32 || payload[0] != payloadFormat {
		return nil, errors.New("malformed signature payload")
	}

	var signatureData SignatureData
	copy(signatureData.PublicKey[:], payload[1:34])
	copy(signatureData.PublicNonce[:], payload[34:67])
	copy(signatureData.S[:], payload[67:])

	return &signatureData, nil

}

func readLengthPrefixed(b []byte) ([]byte, []byte, error) {

	if len(b) == 0 {
		return nil, nil, errors.New("truncated payload")
	}

	length := int(b[0])

	if len(b) < 1+length {
		return nil, nil, errors.New("truncated payload")
	}

	return b[1 : 1+length], b[1+length:], nil

}
