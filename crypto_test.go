package walletdevice

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScalar(t *testing.T, b byte) *secp256k1.ModNScalar {
	t.Helper()

	var buf [32]byte
	buf[31] = b

	scalar := new(secp256k1.ModNScalar)
	require.Zero(t, scalar.SetBytes(&buf))

	return scalar
}

func TestGeneratorH(t *testing.T) {

	h := GeneratorH()
	require.NotNil(t, h)

	// Stable across calls.
	assert.Equal(t, h.SerializeCompressed(), GeneratorH().SerializeCompressed())

	// Independent of the base point.
	var one secp256k1.ModNScalar
	one.SetInt(1)

	var base secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&one, &base)
	base.ToAffine()

	g := secp256k1.NewPublicKey(&base.X, &base.Y)

	assert.NotEqual(t, g.SerializeCompressed(), h.SerializeCompressed())

}

func TestComputeCommitment(t *testing.T) {

	blinding := testScalar(t, 7)

	t.Run("deterministic", func(t *testing.T) {

		first := ComputeCommitment(60, blinding)
		second := ComputeCommitment(60, blinding)

		assert.Equal(t, first.SerializeCompressed(), second.SerializeCompressed())

	})

	t.Run("differs when the value changes", func(t *testing.T) {

		assert.NotEqual(t,
			ComputeCommitment(60, blinding).SerializeCompressed(),
			ComputeCommitment(61, blinding).SerializeCompressed())

	})

	t.Run("differs when the blinding changes", func(t *testing.T) {

		assert.NotEqual(t,
			ComputeCommitment(60, blinding).SerializeCompressed(),
			ComputeCommitment(60, testScalar(t, 8)).SerializeCompressed())

	})

	t.Run("zero value commits to the blinding term", func(t *testing.T) {

		commitment := ComputeCommitment(0, blinding)

		var hPoint, expected secp256k1.JacobianPoint
		GeneratorH().AsJacobian(&hPoint)
		secp256k1.ScalarMultNonConst(blinding, &hPoint, &expected)
		expected.ToAffine()

		assert.Equal(t,
			secp256k1.NewPublicKey(&expected.X, &expected.Y).SerializeCompressed(),
			commitment.SerializeCompressed())

	})

}

// buildSignature signs the way the device does: r fixed here, s = r + e*k.
func buildSignature(t *testing.T, key, nonce *secp256k1.ModNScalar, challenge []byte) SignatureData {
	t.Helper()

	publicKey := secp256k1.NewPrivateKey(key).PubKey()
	publicNonce := secp256k1.NewPrivateKey(nonce).PubKey()

	e := ChallengeScalar(publicNonce, publicKey, challenge)

	s := new(secp256k1.ModNScalar).Set(key)
	s.Mul(e).Add(nonce)

	var signature SignatureData
	copy(signature.PublicKey[:], publicKey.SerializeCompressed())
	copy(signature.PublicNonce[:], publicNonce.SerializeCompressed())

	sBytes := s.Bytes()
	copy(signature.S[:], sBytes[:])

	return signature
}

func TestVerifySignature(t *testing.T) {

	key := testScalar(t, 11)
	nonce := testScalar(t, 23)
	challenge := make([]byte, 32)
	challenge[0] = 0x42

	signature := buildSignature(t, key, nonce, challenge)

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, VerifySignature(signature, challenge))
	})

	t.Run("wrong challenge", func(t *testing.T) {

		other := make([]byte, 32)
		other[0] = 0x43

		assert.Error(t, VerifySignature(signature, other))

	})

	t.Run("tampered scalar", func(t *testing.T) {

		tampered := signature
		tampered.S[31] ^= 0x01

		assert.Error(t, VerifySignature(tampered, challenge))

	})

	t.Run("wrong key", func(t *testing.T) {

		tampered := signature
		otherKey := secp256k1.NewPrivateKey(testScalar(t, 12)).PubKey()
		copy(tampered.PublicKey[:], otherKey.SerializeCompressed())

		assert.Error(t, VerifySignature(tampered, challenge))

	})

	t.Run("garbage point", func(t *testing.T) {

		tampered := signature
		tampered.PublicNonce[0] = 0x07

		assert.Error(t, VerifySignature(tampered, challenge))

	})

}

func TestIdentity(t *testing.T) {

	publicKey := secp256k1.NewPrivateKey(testScalar(t, 3)).PubKey().SerializeCompressed()

	identity, err := Identity(publicKey)
	require.NoError(t, err)

	// 4 groups of 5 characters joined by dashes.
	assert.Len(t, identity, 23)
	assert.Equal(t, byte('-'), identity[5])
	assert.Equal(t, byte('-'), identity[11])
	assert.Equal(t, byte('-'), identity[17])

	again, err := Identity(publicKey)
	require.NoError(t, err)
	assert.Equal(t, identity, again)

	_, err = Identity(publicKey[:32])
	assert.Error(t, err)

}
