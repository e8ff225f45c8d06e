package main

import (
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/kvernberg/wallet-device-go/device"
)

// transcriptRecord is one frame of a session transcript. Records are
// CBOR-encoded back to back, so a transcript can be replayed or inspected
// with any CBOR tool.
type transcriptRecord struct {
	Time      time.Time `cbor:"time"`
	Direction string    `cbor:"dir"` // "host>" or ">host"
	Frame     []byte    `cbor:"frame"`
}

type transcript struct {
	file    *os.File
	encoder *cbor.Encoder
}

func openTranscript(path string) (*transcript, error) {

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)

	if err != nil {
		return nil, err
	}

	return &transcript{file: file, encoder: cbor.NewEncoder(file)}, nil

}

func (t *transcript) record(direction string, frame []byte) {

	if t == nil {
		return
	}

	_ = t.encoder.Encode(transcriptRecord{
		Time:      time.Now().UTC(),
		Direction: direction,
		Frame:     frame,
	})

}

func (t *transcript) Close() error {

	if t == nil {
		return nil
	}

	return t.file.Close()

}

// recordingTransport mirrors every frame into the transcript.
type recordingTransport struct {
	inner      device.Transport
	transcript *transcript
}

func (transport *recordingTransport) Receive() ([]byte, error) {

	frame, err := transport.inner.Receive()

	if err == nil {
		transport.transcript.record("host>", frame)
	}

	return frame, err

}

func (transport *recordingTransport) Send(frame []byte) error {

	transport.transcript.record(">host", frame)

	return transport.inner.Send(frame)

}
