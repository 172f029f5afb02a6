package web3

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signMessage produces a wallet-style personal-sign signature (V as 27/28)
// and returns it with the signer's checksummed address.
func signMessage(t *testing.T, message string) (address, signature string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27

	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestVerifyValidSignature(t *testing.T) {
	message := "Sign this message to authenticate with Sailor Swift: abc123"
	address, signature := signMessage(t, message)
	v := NewVerifier()

	assert.True(t, v.Verify(address, message, signature))
	// Lower-cased addresses must verify too.
	assert.True(t, v.Verify(strings.ToLower(address), message, signature))
}

func TestVerifyWrongAddress(t *testing.T) {
	message := "hello"
	_, signature := signMessage(t, message)
	other, _ := signMessage(t, message)
	v := NewVerifier()

	assert.False(t, v.Verify(other, message, signature))
}

func TestVerifyWrongMessage(t *testing.T) {
	address, signature := signMessage(t, "original")
	v := NewVerifier()

	assert.False(t, v.Verify(address, "tampered", signature))
}

func TestVerifyMalformedSignature(t *testing.T) {
	v := NewVerifier()
	for _, sig := range []string{"", "0x", "0xdeadbeef", "not-hex"} {
		assert.False(t, v.Verify("0xabc", "message", sig), "signature %q", sig)
	}
}
