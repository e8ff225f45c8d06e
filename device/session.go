package device

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// Counters tracks what the device has done since the session started. Tests
// and the emulator status log read them; nothing inside the core branches on
// them.
type Counters struct {
	Requests         uint64
	ProtocolErrors   uint64
	Derivations      uint64
	PublicKeyExports uint64
	Commitments      uint64
	Signatures       uint64
	ApprovalsGranted uint64
	ApprovalsDenied  uint64
}

// Session is the device state for one power cycle: the master seed handle
// and the operation counters. It is owned by exactly one Device and is never
// shared between requests in flight (request processing is strictly
// sequential).
type Session struct {
	seed     []byte
	counters Counters
}

// NewSession copies the master seed into the session. The seed length bounds
// are those of the derivation engine.
func NewSession(seed []byte) (*Session, error) {

	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, fmt.Errorf("seed must be between %d and %d bytes", hdkeychain.MinSeedBytes, hdkeychain.MaxSeedBytes)
	}

	session := &Session{seed: make([]byte, len(seed))}
	copy(session.seed, seed)

	return session, nil

}

// Counters returns a snapshot of the session counters.
func (session *Session) Counters() Counters {
	return session.counters
}

// Close zeroes the seed. The session is unusable afterwards.
func (session *Session) Close() {
	zeroize(session.seed)
	session.seed = nil
}

func (session *Session) masterSeed() ([]byte, error) {

	if session.seed == nil {
		return nil, errors.New("session closed")
	}

	return session.seed, nil

}

// zeroize clears key material from a buffer that is about to be reused or
// released.
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
