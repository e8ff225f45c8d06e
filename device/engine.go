package device

import (
	"log/slog"

	walletdevice "github.com/kvernberg/wallet-device-go"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/blake2b"
)

// The cryptographic operation engine. Every operation takes an already
// derived key, returns either a complete payload or an error, and leaves no
// secret material behind: scalars are zeroed on all exits, and no payload is
// built until the operation has fully succeeded.

const payloadFormat byte = 0x01

// exportPublicKey encodes the curve point for the derived scalar.
func exportPublicKey(session *Session, privateKey *btcec.PrivateKey) []byte {

	session.counters.PublicKeyExports++

	payload := make([]byte, 0, 1+33)
	payload = append(payload, payloadFormat)
	payload = append(payload, privateKey.PubKey().SerializeCompressed()...)

	return payload

}

// commit computes the Pedersen commitment C = value*G + blinding*H, with the
// derived scalar as blinding factor. Deterministic for identical inputs.
func commit(session *Session, privateKey *btcec.PrivateKey, value uint64) []byte {

	commitment := walletdevice.ComputeCommitment(value, &privateKey.Key)

	session.counters.Commitments++

	payload := make([]byte, 0, 1+33)
	payload = append(payload, payloadFormat)
	payload = append(payload, commitment.SerializeCompressed()...)

	return payload

}

// sign produces a Schnorr signature s = r + e*k over the challenge, where r
// is derived deterministically from the secret key and the challenge and
// e binds the public nonce and public key. The same (key, challenge) pair
// always yields the same nonce; distinct challenges yield distinct nonces,
// so nonces are never reused across messages.
func sign(session *Session, privateKey *btcec.PrivateKey, challenge [32]byte) ([]byte, error) {

	publicKey := privateKey.PubKey()

	nonce, err := deriveNonce(privateKey, publicKey, challenge)

	if err != nil {
		return nil, errInternal
	}

	defer nonce.Zero()

	var noncePoint secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(nonce, &noncePoint)
	noncePoint.ToAffine()

	publicNonce := secp256k1.NewPublicKey(&noncePoint.X, &noncePoint.Y)

	e := walletdevice.ChallengeScalar(publicNonce, publicKey, challenge[:])

	// s = r + e*k
	s := new(secp256k1.ModNScalar).Set(&privateKey.Key)
	s.Mul(e).Add(nonce)

	signatureBytes := s.Bytes()
	s.Zero()

	session.counters.Signatures++

	slog.Debug("Signed challenge", "PublicNonce", publicNonce.SerializeCompressed())

	payload := make([]byte, 0, 1+33+33+32)
	payload = append(payload, payloadFormat)
	payload = append(payload, publicKey.SerializeCompressed()...)
	payload = append(payload, publicNonce.SerializeCompressed()...)
	payload = append(payload, signatureBytes[:]...)

	return payload, nil

}

// deriveNonce computes the signing nonce with a keyed hash over the secret
// key, the challenge and the public key, reduced mod n. A counter byte
// covers the negligible case of the reduction hitting zero.
func deriveNonce(privateKey *btcec.PrivateKey, publicKey *btcec.PublicKey, challenge [32]byte) (*secp256k1.ModNScalar, error) {

	secret := privateKey.Key.Bytes()
	defer zeroize(secret[:])

	for counter := byte(0); ; counter++ {

		hasher, err := blake2b.New256(secret[:])

		if err != nil {
			return nil, err
		}

		hasher.Write([]byte(nonceDomain))
		hasher.Write(challenge[:])
		hasher.Write(publicKey.SerializeCompressed())
		hasher.Write([]byte{counter})

		digest := hasher.Sum(nil)

		nonce := new(secp256k1.ModNScalar)
		nonce.SetByteSlice(digest)
		zeroize(digest)

		if !nonce.IsZero() {
			return nonce, nil
		}

	}

}
