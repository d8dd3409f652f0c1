// Package verify checks wallet signatures presented on join.
package verify

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ChainSafe/go-schnorrkel"

	"github.com/dkeye/Classroom/internal/core"
)

const (
	SchemeSr25519 = "sr25519"
	SchemeEd25519 = "ed25519"
)

// substrateContext is the signing context polkadot wallets use for sr25519.
var substrateContext = []byte("substrate")

// New returns the verifier for scheme.
func New(scheme string) (core.Verifier, error) {
	switch strings.ToLower(scheme) {
	case SchemeSr25519, "":
		return Sr25519{}, nil
	case SchemeEd25519:
		return Ed25519{}, nil
	default:
		return nil, fmt.Errorf("unknown signature scheme %q", scheme)
	}
}

// candidates are the byte strings a wallet may have signed for message:
// the raw message, and the <Bytes>-wrapped form browser extensions produce.
func candidates(message string) [][]byte {
	return [][]byte{
		[]byte(message),
		[]byte("<Bytes>" + message + "</Bytes>"),
	}
}

func decodeHex(s string, size int, what string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not hex: %w", core.ErrSignatureInvalid, what, err)
	}
	if len(b) != size {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d", core.ErrSignatureInvalid, what, len(b), size)
	}
	return b, nil
}

type Sr25519 struct{}

func (Sr25519) Verify(pubKeyHex, signatureHex, message string) error {
	pubBytes, err := decodeHex(pubKeyHex, 32, "public key")
	if err != nil {
		return err
	}
	sigBytes, err := decodeHex(signatureHex, 64, "signature")
	if err != nil {
		return err
	}

	var pubArr [32]byte
	copy(pubArr[:], pubBytes)
	pub := &schnorrkel.PublicKey{}
	if err := pub.Decode(pubArr); err != nil {
		return fmt.Errorf("%w: public key: %w", core.ErrSignatureInvalid, err)
	}
	var sigArr [64]byte
	copy(sigArr[:], sigBytes)
	sig := &schnorrkel.Signature{}
	if err := sig.Decode(sigArr); err != nil {
		return fmt.Errorf("%w: signature: %w", core.ErrSignatureInvalid, err)
	}

	for _, msg := range candidates(message) {
		ok, err := pub.Verify(sig, schnorrkel.NewSigningContext(substrateContext, msg))
		if err == nil && ok {
			return nil
		}
	}
	return core.ErrSignatureInvalid
}

type Ed25519 struct{}

func (Ed25519) Verify(pubKeyHex, signatureHex, message string) error {
	pub, err := decodeHex(pubKeyHex, ed25519.PublicKeySize, "public key")
	if err != nil {
		return err
	}
	sig, err := decodeHex(signatureHex, ed25519.SignatureSize, "signature")
	if err != nil {
		return err
	}
	for _, msg := range candidates(message) {
		if ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
			return nil
		}
	}
	return core.ErrSignatureInvalid
}
