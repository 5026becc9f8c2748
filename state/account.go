package state

import (
	"fmt"

	"github.com/calehh/hac-dao/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
)

// AddressOf derives the account address of an ed25519 public key.
func AddressOf(pubKey []byte) (string, error) {
	if len(pubKey) != ed25519.PubKeySize {
		return "", fmt.Errorf("%w: public key has %d bytes", ErrTxSigInvalid, len(pubKey))
	}
	return ed25519.PubKey(pubKey).Address().String(), nil
}

func (s *State) Nonce(addr string) (nonce uint64, err error) {
	_, err = s.getRLP(fmt.Sprintf(KeyNonce, addr), &nonce)
	return
}

// IncNonce consumes the nonce of the tx sender whether or not the call succeeds.
func (s *State) IncNonce(addr string) error {
	nonce, err := s.Nonce(addr)
	if err != nil {
		return err
	}
	if nonce, err = checkedAdd(nonce, 1); err != nil {
		return err
	}
	return s.setRLP(fmt.Sprintf(KeyNonce, addr), nonce)
}

// Verify checks the nonce and signature of btx and returns its sender.
func (s *State) Verify(btx *tx.DAOTx, allowNonceGap bool) (sender string, err error) {
	sender, err = AddressOf(btx.PubKey)
	if err != nil {
		return "", err
	}
	nonce, err := s.Nonce(sender)
	if err != nil {
		return "", err
	}
	if !(nonce == btx.Nonce || (allowNonceGap && nonce < btx.Nonce)) {
		return "", ErrTxNonceInvalid
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return "", err
	}
	if len(btx.Sig) != 1 || !ed25519.PubKey(btx.PubKey).VerifySignature(dat, btx.Sig[0]) {
		return "", ErrTxSigInvalid
	}
	return sender, nil
}
