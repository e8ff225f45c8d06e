package walletdevice

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// Transport carries one request frame to the device and returns the response
// frame. Exchange blocks until the device answers or the connection fails.
type Transport interface {
	Exchange(request []byte) ([]byte, error)
	Close() error
}

// UnixTransport speaks the protocol over a unix domain socket, the transport
// the emulator listens on. Frames are length-prefixed with two big-endian
// bytes in both directions.
type UnixTransport struct {
	connection net.Conn
}

// DialUnix connects to a device emulator socket.
func DialUnix(socketPath string) (*UnixTransport, error) {

	connection, err := net.Dial("unix", socketPath)

	if err != nil {
		return nil, err
	}

	return &UnixTransport{connection: connection}, nil

}

func (transport *UnixTransport) Exchange(request []byte) ([]byte, error) {

	if err := WriteFrame(transport.connection, request); err != nil {
		return nil, err
	}

	return ReadFrame(transport.connection)

}

func (transport *UnixTransport) Close() error {
	return transport.connection.Close()
}

// WriteFrame writes one length-prefixed frame to the stream.
func WriteFrame(w io.Writer, frame []byte) error {

	if len(frame) > 0xffff {
		return fmt.Errorf("frame length %d exceeds stream limit", len(frame))
	}

	var prefix [2]byte
	binary.BigEndian.PutUint16(prefix[:], uint16(len(frame)))

	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}

	_, err := w.Write(frame)

	return err

}

// ReadFrame reads one length-prefixed frame from the stream.
func ReadFrame(r io.Reader) ([]byte, error) {

	var prefix [2]byte

	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	frame := make([]byte, binary.BigEndian.Uint16(prefix[:]))

	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}

	return frame, nil

}
