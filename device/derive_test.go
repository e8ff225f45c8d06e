package device

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walletdevice "github.com/kvernberg/wallet-device-go"
)

// Fixed test seed (never used outside tests).
const testSeedHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testSession(t *testing.T) *Session {
	t.Helper()

	seed, err := hex.DecodeString(testSeedHex)
	require.NoError(t, err)

	session, err := NewSession(seed)
	require.NoError(t, err)

	return session
}

func testPath(t *testing.T, s string) walletdevice.Path {
	t.Helper()

	path, err := walletdevice.ParsePath(s)
	require.NoError(t, err)

	return path
}

func TestNewSession(t *testing.T) {

	t.Run("rejects short seed", func(t *testing.T) {
		_, err := NewSession(make([]byte, 8))
		assert.Error(t, err)
	})

	t.Run("rejects oversized seed", func(t *testing.T) {
		_, err := NewSession(make([]byte, 65))
		assert.Error(t, err)
	})

	t.Run("copies the seed", func(t *testing.T) {

		seed, _ := hex.DecodeString(testSeedHex)

		session, err := NewSession(seed)
		require.NoError(t, err)

		seed[0] ^= 0xff

		first, err := deriveKey(session, testPath(t, "m/0"))
		require.NoError(t, err)
		defer first.Zero()

		fresh := testSession(t)

		second, err := deriveKey(fresh, testPath(t, "m/0"))
		require.NoError(t, err)
		defer second.Zero()

		assert.Equal(t,
			first.PubKey().SerializeCompressed(),
			second.PubKey().SerializeCompressed())

	})

}

func TestDeriveKey(t *testing.T) {

	session := testSession(t)
	accountPath := testPath(t, "m/44'/535348'/0'/0/0")

	t.Run("deterministic", func(t *testing.T) {

		first, err := deriveKey(session, accountPath)
		require.NoError(t, err)
		defer first.Zero()

		second, err := deriveKey(session, accountPath)
		require.NoError(t, err)
		defer second.Zero()

		assert.Equal(t,
			first.PubKey().SerializeCompressed(),
			second.PubKey().SerializeCompressed())

	})

	t.Run("hardening changes the child", func(t *testing.T) {

		hardened, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/1'"))
		require.NoError(t, err)
		defer hardened.Zero()

		plain, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/1"))
		require.NoError(t, err)
		defer plain.Zero()

		assert.NotEqual(t,
			hardened.PubKey().SerializeCompressed(),
			plain.PubKey().SerializeCompressed())

	})

	t.Run("sibling paths differ", func(t *testing.T) {

		first, err := deriveKey(session, accountPath)
		require.NoError(t, err)
		defer first.Zero()

		second, err := deriveKey(session, testPath(t, "m/44'/535348'/0'/0/1"))
		require.NoError(t, err)
		defer second.Zero()

		assert.NotEqual(t,
			first.PubKey().SerializeCompressed(),
			second.PubKey().SerializeCompressed())

	})

	t.Run("segment order matters", func(t *testing.T) {

		first, err := deriveKey(session, testPath(t, "m/1/2"))
		require.NoError(t, err)
		defer first.Zero()

		second, err := deriveKey(session, testPath(t, "m/2/1"))
		require.NoError(t, err)
		defer second.Zero()

		assert.NotEqual(t,
			first.PubKey().SerializeCompressed(),
			second.PubKey().SerializeCompressed())

	})

	t.Run("empty path rejected", func(t *testing.T) {

		_, err := deriveKey(session, walletdevice.Path{})
		assert.ErrorIs(t, err, errInvalidPath)

	})

	t.Run("overlong path rejected", func(t *testing.T) {

		path := make(walletdevice.Path, walletdevice.MaxPathLen+1)

		_, err := deriveKey(session, path)
		assert.ErrorIs(t, err, errInvalidPath)

	})

	t.Run("closed session rejected", func(t *testing.T) {

		closed := testSession(t)
		closed.Close()

		_, err := deriveKey(closed, accountPath)
		assert.Error(t, err)

	})

	t.Run("counts derivations", func(t *testing.T) {

		fresh := testSession(t)

		key, err := deriveKey(fresh, accountPath)
		require.NoError(t, err)
		key.Zero()

		assert.Equal(t, uint64(1), fresh.Counters().Derivations)

	})

}

func TestMasterPublicKey(t *testing.T) {

	session := testSession(t)

	first, err := masterPublicKey(session)
	require.NoError(t, err)

	second, err := masterPublicKey(session)
	require.NoError(t, err)

	assert.Equal(t, first.SerializeCompressed(), second.SerializeCompressed())

	child, err := deriveKey(session, testPath(t, "m/0"))
	require.NoError(t, err)
	defer child.Zero()

	assert.NotEqual(t,
		first.SerializeCompressed(),
		child.PubKey().SerializeCompressed())

}
