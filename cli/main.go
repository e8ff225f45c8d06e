// Command line host driver: issues requests to a wallet device (or the
// emulator) over its socket and prints the results. Signatures are verified
// client-side before being shown.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/blake2b"

	walletdevice "github.com/kvernberg/wallet-device-go"
)

func main() {

	app := &cli.Command{
		Name:  "wallet-device",
		Usage: "talk to a wallet device",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "socket",
				Value: "/tmp/wallet-device.sock",
				Usage: "device socket path",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log the protocol exchange",
			},
		},
		Commands: []*cli.Command{
			versionCommand(),
			pubkeyCommand(),
			commitCommand(),
			signCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}

}

func dial(cmd *cli.Command) (*walletdevice.Client, func(), error) {

	transport, err := walletdevice.DialUnix(cmd.String("socket"))

	if err != nil {
		return nil, nil, fmt.Errorf("connect to device: %w", err)
	}

	client := walletdevice.NewClient(transport)

	if cmd.Bool("debug") {
		client.EnableDebugLogging()
	}

	return client, func() { transport.Close() }, nil

}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "show the device app name, version and identity",
		Action: func(ctx context.Context, cmd *cli.Command) error {

			client, done, err := dial(cmd)

			if err != nil {
				return err
			}

			defer done()

			version, err := client.Version()

			if err != nil {
				return err
			}

			fmt.Println("Name:    ", version.Name)
			fmt.Println("Version: ", version.Version)
			fmt.Println("Identity:", version.Identity)

			return nil

		},
	}
}

func pubkeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "pubkey",
		Usage: "export the public key for a derivation path",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "derivation path, e.g. m/44'/535348'/0'/0/0"},
			&cli.BoolFlag{Name: "display", Usage: "ask the device to confirm on screen"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			path, err := walletdevice.ParsePath(cmd.String("path"))

			if err != nil {
				return err
			}

			client, done, err := dial(cmd)

			if err != nil {
				return err
			}

			defer done()

			publicKey, err := client.PublicKey(path, cmd.Bool("display"))

			if err != nil {
				return err
			}

			fmt.Printf("Public key (%s): %x\n", path, publicKey.PublicKey)

			return nil

		},
	}
}

func commitCommand() *cli.Command {
	return &cli.Command{
		Name:  "commit",
		Usage: "compute a Pedersen commitment to a value",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "derivation path of the blinding key"},
			&cli.UintFlag{Name: "value", Required: true, Usage: "value to commit to"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			path, err := walletdevice.ParsePath(cmd.String("path"))

			if err != nil {
				return err
			}

			client, done, err := dial(cmd)

			if err != nil {
				return err
			}

			defer done()

			commitment, err := client.Commitment(path, uint64(cmd.Uint("value")))

			if err != nil {
				return err
			}

			fmt.Printf("Commitment: %x\n", commitment.Commitment)

			return nil

		},
	}
}

func signCommand() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "sign a 32-byte challenge",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "derivation path of the signing key"},
			&cli.StringFlag{Name: "challenge", Usage: "32-byte challenge, hex"},
			&cli.StringFlag{Name: "message", Usage: "message to hash into a challenge"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {

			path, err := walletdevice.ParsePath(cmd.String("path"))

			if err != nil {
				return err
			}

			challenge, err := resolveChallenge(cmd.String("challenge"), cmd.String("message"))

			if err != nil {
				return err
			}

			client, done, err := dial(cmd)

			if err != nil {
				return err
			}

			defer done()

			signature, err := client.Sign(path, challenge)

			if err != nil {
				return err
			}

			fmt.Printf("Public key:   %x\n", signature.PublicKey)
			fmt.Printf("Public nonce: %x\n", signature.PublicNonce)
			fmt.Printf("Signature:    %x\n", signature.S)
			fmt.Println("Verified against the returned public key.")

			return nil

		},
	}
}

func resolveChallenge(challengeHex, message string) ([32]byte, error) {

	var challenge [32]byte

	switch {

	case challengeHex != "":

		decoded, err := hex.DecodeString(challengeHex)

		if err != nil {
			return challenge, fmt.Errorf("challenge is not valid hex: %w", err)
		}

		if len(decoded) != len(challenge) {
			return challenge, fmt.Errorf("challenge must be %d bytes, got %d", len(challenge), len(decoded))
		}

		copy(challenge[:], decoded)

		return challenge, nil

	case message != "":

		return blake2b.Sum256([]byte(message)), nil

	default:

		return challenge, errors.New("provide --challenge or --message")

	}

}
