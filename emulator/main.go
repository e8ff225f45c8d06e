// The emulator runs the device core on a unix socket, standing in for real
// hardware: the host CLI (or any protocol client) connects and exchanges
// frames exactly as it would over a physical transport, while approvals are
// answered by the configured policy instead of physical buttons.
package main

import (
	"errors"
	"flag"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	walletdevice "github.com/kvernberg/wallet-device-go"
	"github.com/kvernberg/wallet-device-go/device"
)

// connTransport adapts one accepted connection to the device transport
// contract using the stream framing the client dials with.
type connTransport struct {
	conn net.Conn
}

func (transport *connTransport) Receive() ([]byte, error) {
	return walletdevice.ReadFrame(transport.conn)
}

func (transport *connTransport) Send(frame []byte) error {
	return walletdevice.WriteFrame(transport.conn, frame)
}

func main() {

	configPath := flag.String("config", "", "path to emulator TOML config")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)

	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}

	seed, err := cfg.seedBytes()

	if err != nil {
		log.Fatal().Err(err).Msg("seed is not valid hex")
	}

	session, err := device.NewSession(seed)

	if err != nil {
		log.Fatal().Err(err).Msg("session")
	}

	defer session.Close()

	var sessionTranscript *transcript

	if cfg.Transcript != "" {

		sessionTranscript, err = openTranscript(cfg.Transcript)

		if err != nil {
			log.Fatal().Err(err).Msg("transcript")
		}

		defer sessionTranscript.Close()

	}

	// A stale socket file from a previous run blocks the listener.
	_ = os.Remove(cfg.Socket)

	listener, err := net.Listen("unix", cfg.Socket)

	if err != nil {
		log.Fatal().Err(err).Msg("listen")
	}

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-interrupts
		log.Info().Msg("shutting down")
		listener.Close()
		os.Remove(cfg.Socket)
	}()

	log.Info().Str("socket", cfg.Socket).Str("policy", cfg.Approval.Policy).Msg("device ready")

	console := consoleForPolicy(cfg.Approval, log)
	timeout := time.Duration(cfg.Approval.TimeoutSeconds) * time.Second

	for {

		conn, err := listener.Accept()

		if err != nil {
			// Closed listener means shutdown.
			return
		}

		log.Info().Msg("host connected")

		var transport device.Transport = &connTransport{conn: conn}

		if sessionTranscript != nil {
			transport = &recordingTransport{inner: transport, transcript: sessionTranscript}
		}

		dev := device.New(session, transport, console, device.WithApprovalTimeout(timeout))

		if err := dev.Run(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			log.Warn().Err(err).Msg("session ended")
		} else {
			log.Info().Msg("host disconnected")
		}

		conn.Close()

		counters := session.Counters()
		log.Info().
			Uint64("requests", counters.Requests).
			Uint64("protocol_errors", counters.ProtocolErrors).
			Uint64("signatures", counters.Signatures).
			Uint64("approvals_denied", counters.ApprovalsDenied).
			Msg("session counters")

	}

}
