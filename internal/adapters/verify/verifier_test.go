package verify

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Classroom/internal/core"
)

func TestNew(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Sr25519{}, v)

	v, err = New("ED25519")
	require.NoError(t, err)
	assert.IsType(t, Ed25519{}, v)

	_, err = New("rsa")
	assert.Error(t, err)
}

func TestEd25519_Verify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	msg := "join course 5"
	pubHex := hex.EncodeToString(pub)

	sig := ed25519.Sign(priv, []byte(msg))
	assert.NoError(t, Ed25519{}.Verify(pubHex, hex.EncodeToString(sig), msg))
	assert.NoError(t, Ed25519{}.Verify("0x"+pubHex, "0x"+hex.EncodeToString(sig), msg))

	wrapped := ed25519.Sign(priv, []byte("<Bytes>"+msg+"</Bytes>"))
	assert.NoError(t, Ed25519{}.Verify(pubHex, hex.EncodeToString(wrapped), msg))

	assert.ErrorIs(t, Ed25519{}.Verify(pubHex, hex.EncodeToString(sig), "other"), core.ErrSignatureInvalid)
	assert.ErrorIs(t, Ed25519{}.Verify("zz", hex.EncodeToString(sig), msg), core.ErrSignatureInvalid)
	assert.ErrorIs(t, Ed25519{}.Verify(pubHex, "abcd", msg), core.ErrSignatureInvalid)
}

func TestSr25519_Verify(t *testing.T) {
	sk, pk, err := schnorrkel.GenerateKeypair()
	require.NoError(t, err)
	msg := "join course 5"

	sig, err := sk.Sign(schnorrkel.NewSigningContext(substrateContext, []byte(msg)))
	require.NoError(t, err)
	pubArr := pk.Encode()
	sigArr := sig.Encode()
	pubHex := hex.EncodeToString(pubArr[:])
	sigHex := hex.EncodeToString(sigArr[:])

	assert.NoError(t, Sr25519{}.Verify(pubHex, sigHex, msg))
	assert.ErrorIs(t, Sr25519{}.Verify(pubHex, sigHex, "tampered"), core.ErrSignatureInvalid)

	_, other, err := schnorrkel.GenerateKeypair()
	require.NoError(t, err)
	otherArr := other.Encode()
	assert.ErrorIs(t, Sr25519{}.Verify(hex.EncodeToString(otherArr[:]), sigHex, msg), core.ErrSignatureInvalid)

	assert.ErrorIs(t, Sr25519{}.Verify("nothex", sigHex, msg), core.ErrSignatureInvalid)
}
