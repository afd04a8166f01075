package auth

import "crypto/ed25519"

// Swap authorization is off-band: the counterparty signs the canonical
// swap message with their registered Ed25519 key before the initiator
// submits the swap. Verification happens inside the swap transaction.

// VerifySwapSignature reports whether sig is a valid Ed25519 signature
// over message by the holder of pub. Malformed keys or signatures
// verify as false, never panic.
func VerifySwapSignature(pub, message, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}

// SignSwapMessage signs the canonical swap message with an Ed25519
// private key. Used by clients and tests; the server only verifies.
func SignSwapMessage(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}
