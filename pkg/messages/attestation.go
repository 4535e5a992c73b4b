package messages

// Verifier is the attestation gate. Given a message digest and the set
// of signer identities recovered by the transport layer, it answers
// whether the message is genuinely attested. The engine treats it as an
// opaque boolean; signature internals never leak into auction logic.
type Verifier interface {
	Verify(digest Digest, signers []UniversalAddress) bool
}

// AcceptAll passes every message. Devnet and test use only.
type AcceptAll struct{}

func (AcceptAll) Verify(Digest, []UniversalAddress) bool { return true }

var _ Verifier = AcceptAll{}
