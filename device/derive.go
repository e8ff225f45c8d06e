package device

import (
	"log/slog"

	walletdevice "github.com/kvernberg/wallet-device-go"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// deriveKey walks the path from the session's master seed and returns the
// child private key. Derivation is BIP32: each step folds the parent chain
// code and the segment index into a keyed hash, hardened segments (index with
// the top bit set) additionally fold in the parent private scalar so that
// hardened children cannot be reached from the parent public point.
//
// Segments are applied strictly in order. Every intermediate extended key is
// zeroed before the function returns, on the error paths too; the caller
// owns zeroing the returned private key.
func deriveKey(session *Session, path walletdevice.Path) (*btcec.PrivateKey, error) {

	if len(path) == 0 {
		return nil, errInvalidPath
	}

	if len(path) > walletdevice.MaxPathLen {
		return nil, errInvalidPath
	}

	seed, err := session.masterSeed()

	if err != nil {
		return nil, errInternal
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)

	if err != nil {
		return nil, errInternal
	}

	for _, index := range path {

		child, err := key.Derive(index)

		key.Zero()

		if err != nil {
			// hdkeychain rejects the rare indices that produce no
			// usable child on this curve.
			return nil, errInvalidPath
		}

		key = child

	}

	privateKey, err := key.ECPrivKey()

	key.Zero()

	if err != nil {
		return nil, errInvalidPath
	}

	session.counters.Derivations++

	slog.Debug("Derived key", "Path", path.String())

	return privateKey, nil

}

// masterPublicKey returns the public point of the master key. It identifies
// the device without exposing any child key.
func masterPublicKey(session *Session) (*btcec.PublicKey, error) {

	seed, err := session.masterSeed()

	if err != nil {
		return nil, errInternal
	}

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)

	if err != nil {
		return nil, errInternal
	}

	publicKey, err := key.ECPubKey()

	key.Zero()

	if err != nil {
		return nil, errInternal
	}

	return publicKey, nil

}
