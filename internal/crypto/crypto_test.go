package crypto_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autonym/internal/crypto"
	"autonym/internal/domain"
)

func TestEd25519_SignVerify(t *testing.T) {
	priv, pub, err := crypto.NewEd25519FromSeed(bytes.Repeat([]byte{3}, 32))
	require.NoError(t, err)
	assert.Equal(t, pub, priv.Public())

	msg := []byte("event content")
	sig := crypto.SignEd25519(priv, msg)
	assert.True(t, crypto.VerifyEd25519(pub, msg, sig))
	assert.False(t, crypto.VerifyEd25519(pub, []byte("other"), sig))
	assert.False(t, crypto.VerifyEd25519(pub, msg, sig[:63]))

	_, _, err = crypto.NewEd25519FromSeed([]byte("short"))
	require.Error(t, err)
}

func TestGenerateEd25519_ReaderDeterminesKey(t *testing.T) {
	_, a, err := crypto.GenerateEd25519(bytes.NewReader(bytes.Repeat([]byte{9}, 32)))
	require.NoError(t, err)
	_, b, err := crypto.NewEd25519FromSeed(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	assert.Equal(t, b, a)

	_, _, err = crypto.GenerateEd25519(bytes.NewReader([]byte{1}))
	require.Error(t, err)
}

func TestKeySigner_Close(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519(nil)
	require.NoError(t, err)

	s := crypto.NewKeySigner(priv)
	assert.Equal(t, pub, s.PublicKey())
	sig, err := s.Sign([]byte("m"))
	require.NoError(t, err)
	assert.True(t, crypto.VerifyEd25519(pub, []byte("m"), sig))

	s.Close()
	_, err = s.Sign([]byte("m"))
	require.Error(t, err)

	var nilSigner *crypto.KeySigner
	assert.Equal(t, domain.Ed25519Public{}, nilSigner.PublicKey())
	nilSigner.Close()
	_, err = nilSigner.Sign([]byte("m"))
	require.Error(t, err)
}

func TestX25519_DHAgrees(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519(nil)
	require.NoError(t, err)
	bPriv, bPub, err := crypto.GenerateX25519(nil)
	require.NoError(t, err)

	ab, err := crypto.DH(aPriv, bPub)
	require.NoError(t, err)
	ba, err := crypto.DH(bPriv, aPub)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	// The all-zero point has low order.
	_, err = crypto.DH(aPriv, domain.X25519Public{})
	require.Error(t, err)
}

func TestClamp(t *testing.T) {
	var k domain.X25519Private
	for i := range k {
		k[i] = 0xff
	}
	crypto.Clamp(&k)
	assert.Equal(t, byte(0xf8), k[0])
	assert.Equal(t, byte(0x7f), k[31])

	k = domain.X25519Private{}
	crypto.Clamp(&k)
	assert.Equal(t, byte(0x40), k[31])
}

func TestFingerprint(t *testing.T) {
	fp := crypto.Fingerprint([]byte("key"))
	assert.Len(t, fp.String(), 20)
	assert.Equal(t, fp, crypto.Fingerprint([]byte("key")))
	assert.NotEqual(t, fp, crypto.Fingerprint([]byte("other")))
}

func TestB64(t *testing.T) {
	raw := []byte{0, 1, 2, 0xfe}
	back, err := crypto.FromB64(crypto.B64(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, back)

	_, err = crypto.FromB64("not base64!")
	require.Error(t, err)
}
