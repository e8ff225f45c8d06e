package device

import "time"

// Application identifiers reported by GetVersion.
const (
	appName    = "wallet-device"
	appVersion = "0.4.0"
)

// Approval gate timing. The timeout is overridable per device (the emulator
// exposes it in its config file); the poll interval is fixed.
const (
	DefaultApprovalTimeout = 30 * time.Second
	approvalPollInterval   = 50 * time.Millisecond
)

// nonceDomain separates nonce derivation from every other use of the keyed
// hash.
const nonceDomain = "wallet-device.schnorr.nonce.v1"
