package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletdevice "github.com/kvernberg/wallet-device-go"
)

func parseSignPayload(t *testing.T, payload []byte) walletdevice.SignatureData {
	t.Helper()

	require.Len(t, payload, 1+33+33+32)
	require.Equal(t, payloadFormat, payload[0])

	var signature walletdevice.SignatureData
	copy(signature.PublicKey[:], payload[1:34])
	copy(signature.PublicNonce[:], payload[34:67])
	copy(signature.S[:], payload[67:])

	return signature
}

func TestSign(t *testing.T) {

	session := testSession(t)

	key, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/0"))
	require.NoError(t, err)
	defer key.Zero()

	var challenge [32]byte
	challenge[0] = 0x42

	payload, err := sign(session, key, challenge)
	require.NoError(t, err)

	signature := parseSignPayload(t, payload)

	t.Run("verifies against the exported public key", func(t *testing.T) {

		assert.Equal(t,
			key.PubKey().SerializeCompressed(),
			signature.PublicKey[:])

		assert.NoError(t, walletdevice.VerifySignature(signature, challenge[:]))

	})

	t.Run("deterministic for the same key and challenge", func(t *testing.T) {

		again, err := sign(session, key, challenge)
		require.NoError(t, err)

		assert.Equal(t, payload, again)

	})

	t.Run("nonce differs across challenges", func(t *testing.T) {

		var other [32]byte
		other[0] = 0x43

		otherPayload, err := sign(session, key, other)
		require.NoError(t, err)

		otherSignature := parseSignPayload(t, otherPayload)

		assert.NotEqual(t, signature.PublicNonce, otherSignature.PublicNonce)
		assert.NoError(t, walletdevice.VerifySignature(otherSignature, other[:]))

	})

	t.Run("does not verify for another path's key", func(t *testing.T) {

		otherKey, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/1"))
		require.NoError(t, err)
		defer otherKey.Zero()

		tampered := signature
		copy(tampered.PublicKey[:], otherKey.PubKey().SerializeCompressed())

		assert.Error(t, walletdevice.VerifySignature(tampered, challenge[:]))

	})

}

func TestDeriveNonce(t *testing.T) {

	session := testSession(t)

	key, err := deriveKey(session, testPath(t, "m/0"))
	require.NoError(t, err)
	defer key.Zero()

	var challenge [32]byte
	challenge[0] = 0x01

	first, err := deriveNonce(key, key.PubKey(), challenge)
	require.NoError(t, err)
	defer first.Zero()

	second, err := deriveNonce(key, key.PubKey(), challenge)
	require.NoError(t, err)
	defer second.Zero()

	assert.True(t, first.Equals(second), "same inputs must give the same nonce")

	challenge[0] = 0x02

	third, err := deriveNonce(key, key.PubKey(), challenge)
	require.NoError(t, err)
	defer third.Zero()

	assert.False(t, first.Equals(third), "distinct challenges must give distinct nonces")
	assert.False(t, third.IsZero())

}

func TestCommit(t *testing.T) {

	session := testSession(t)

	key, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/0"))
	require.NoError(t, err)
	defer key.Zero()

	first := commit(session, key, 60)

	require.Len(t, first, 1+33)
	assert.Equal(t, payloadFormat, first[0])

	t.Run("stable across calls", func(t *testing.T) {
		assert.Equal(t, first, commit(session, key, 60))
	})

	t.Run("sensitive to the value", func(t *testing.T) {
		assert.NotEqual(t, first, commit(session, key, 61))
	})

	t.Run("sensitive to the blinding key", func(t *testing.T) {

		otherKey, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/1"))
		require.NoError(t, err)
		defer otherKey.Zero()

		assert.NotEqual(t, first, commit(session, otherKey, 60))

	})

	t.Run("matches the shared construction", func(t *testing.T) {

		expected := walletdevice.ComputeCommitment(60, &key.Key)
		assert.Equal(t, expected.SerializeCompressed(), first[1:])

	})

}

func TestExportPublicKey(t *testing.T) {

	session := testSession(t)

	key, err := deriveKey(session, testPath(t, "m/0"))
	require.NoError(t, err)
	defer key.Zero()

	payload := exportPublicKey(session, key)

	require.Len(t, payload, 1+33)
	assert.Equal(t, payloadFormat, payload[0])
	assert.Equal(t, key.PubKey().SerializeCompressed(), payload[1:])
	assert.Equal(t, uint64(1), session.Counters().PublicKeyExports)

}
