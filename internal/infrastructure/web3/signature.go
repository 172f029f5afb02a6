package web3

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sailorswift/sailor-swift-api/internal/application"
)

// Verifier recovers the signing address from an EIP-191 personal-sign
// signature and compares it, case-insensitively, against the claimed
// address. Any decode or recovery failure is simply "not valid".
type Verifier struct{}

func NewVerifier() Verifier { return Verifier{} }

func (Verifier) Verify(address, message, signature string) bool {
	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return false
	}
	// Wallets produce V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}
	hash := accounts.TextHash([]byte(message))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false
	}
	recovered := crypto.PubkeyToAddress(*pub)
	return strings.EqualFold(recovered.Hex(), address)
}

var _ application.WalletVerifier = Verifier{}
