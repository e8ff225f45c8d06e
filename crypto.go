package walletdevice

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"strings"
	"sync"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/blake2b"
)

// challengeDomain separates signature challenge hashes from any other use of
// the hash function.
const challengeDomain = "wallet-device.schnorr.challenge.v1"

// generatorHSeed seeds the search for the second commitment generator.
const generatorHSeed = "wallet-device.pedersen.generator-h.v1"

var (
	generatorHOnce sync.Once
	generatorH     *secp256k1.PublicKey
)

// GeneratorH returns the second Pedersen generator H. It is derived by
// try-and-increment hashing of the base point encoding, so nobody knows its
// discrete log with respect to G.
func GeneratorH() *secp256k1.PublicKey {

	generatorHOnce.Do(func() {

		var one secp256k1.ModNScalar
		one.SetInt(1)

		var base secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(&one, &base)
		base.ToAffine()

		g := secp256k1.NewPublicKey(&base.X, &base.Y)

		hasher, _ := blake2b.New256(nil)
		hasher.Write([]byte(generatorHSeed))
		hasher.Write(g.SerializeCompressed())

		candidate := hasher.Sum(nil)

		for {

			point, err := secp256k1.ParsePubKey(append([]byte{0x02}, candidate...))

			if err == nil {
				generatorH = point
				return
			}

			next := blake2b.Sum256(candidate)
			candidate = next[:]

		}

	})

	return generatorH

}

// ChallengeScalar computes the signature challenge e = H(R || P || message)
// reduced mod n. The public nonce and public key are bound into the
// challenge, so the device never trusts the host to have committed to them.
func ChallengeScalar(publicNonce, publicKey *secp256k1.PublicKey, message []byte) *secp256k1.ModNScalar {

	hasher, _ := blake2b.New256(nil)
	hasher.Write([]byte(challengeDomain))
	hasher.Write(publicNonce.SerializeCompressed())
	hasher.Write(publicKey.SerializeCompressed())
	hasher.Write(message)

	e := new(secp256k1.ModNScalar)
	e.SetByteSlice(hasher.Sum(nil))

	return e

}

// ComputeCommitment computes the Pedersen commitment
// C = value*G + blinding*H.
func ComputeCommitment(value uint64, blinding *secp256k1.ModNScalar) *secp256k1.PublicKey {

	var valueBytes [32]byte
	binary.BigEndian.PutUint64(valueBytes[24:], value)

	var valueScalar secp256k1.ModNScalar
	valueScalar.SetBytes(&valueBytes)

	var valueTerm, hPoint, blindingTerm, commitment secp256k1.JacobianPoint

	secp256k1.ScalarBaseMultNonConst(&valueScalar, &valueTerm)

	GeneratorH().AsJacobian(&hPoint)
	secp256k1.ScalarMultNonConst(blinding, &hPoint, &blindingTerm)

	secp256k1.AddNonConst(&valueTerm, &blindingTerm, &commitment)
	commitment.ToAffine()

	return secp256k1.NewPublicKey(&commitment.X, &commitment.Y)

}

// VerifySignature checks s*G == R + e*P for the challenge construction used
// by the device.
func VerifySignature(signature SignatureData, challenge []byte) error {

	publicKey, err := secp256k1.ParsePubKey(signature.PublicKey[:])

	if err != nil {
		return err
	}

	publicNonce, err := secp256k1.ParsePubKey(signature.PublicNonce[:])

	if err != nil {
		return err
	}

	var s secp256k1.ModNScalar

	if overflow := s.SetByteSlice(signature.S[:]); overflow {
		return errors.New("signature scalar not canonical")
	}

	e := ChallengeScalar(publicNonce, publicKey, challenge)

	var left secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s, &left)
	left.ToAffine()

	var keyPoint, keyTerm, noncePoint, right secp256k1.JacobianPoint
	publicKey.AsJacobian(&keyPoint)
	secp256k1.ScalarMultNonConst(e, &keyPoint, &keyTerm)
	publicNonce.AsJacobian(&noncePoint)
	secp256k1.AddNonConst(&noncePoint, &keyTerm, &right)
	right.ToAffine()

	leftEncoded := secp256k1.NewPublicKey(&left.X, &left.Y).SerializeCompressed()
	rightEncoded := secp256k1.NewPublicKey(&right.X, &right.Y).SerializeCompressed()

	if !bytes.Equal(leftEncoded, rightEncoded) {
		return errors.New("invalid signature")
	}

	return nil

}

// Identity converts a device public key into a hash formatted for humans:
// sha256 of the compressed key, base32, first 20 characters in 4 groups of
// five joined with dashes.
func Identity(publicKey []byte) (string, error) {

	if len(publicKey) != 33 {
		return "", errors.New("expecting compressed public key")
	}

	checksum := sha256.Sum256(publicKey)

	base32String := base32.StdEncoding.EncodeToString(checksum[8:])

	s := base32String[:20]

	var groups []string
	for i := 0; i < len(s); i += 5 {
		groups = append(groups, s[i:i+5])
	}

	return strings.Join(groups, "-"), nil

}
