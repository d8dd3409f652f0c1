package core

// Verifier checks that message was signed by the holder of pubKeyHex.
// A nil error means the signature is valid.
type Verifier interface {
	Verify(pubKeyHex, signatureHex, message string) error
}
