package walletdevice

// DATA

// VersionData is the decoded GetVersion payload.
type VersionData struct {
	Name     string
	Version  string
	Identity string
	Flags    byte
}

// PublicKeyData is the decoded GetPublicKey payload.
type PublicKeyData struct {
	PublicKey [33]byte // compressed point for the requested path
}

// CommitmentData is the decoded GetCommitment payload.
type CommitmentData struct {
	Commitment [33]byte // compressed commitment point
}

// SignatureData is the decoded Sign payload.
type SignatureData struct {
	PublicKey   [33]byte // compressed public key for the signing path
	PublicNonce [33]byte // compressed public nonce R
	S           [32]byte // signature scalar
}
