package state

import (
	"testing"

	"github.com/calehh/hac-dao/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/stretchr/testify/require"
)

func signedTx(t *testing.T, key ed25519.PrivKey, nonce uint64, chainId string) *tx.DAOTx {
	btx := tx.NewDAOTx(&tx.DonateTx{Value: 1}, nonce, key.PubKey().Bytes())
	dat, err := btx.SigData([]byte(chainId))
	require.NoError(t, err)
	sig, err := key.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	return btx
}

func TestVerify(t *testing.T) {
	st := newTestState(t)
	key := ed25519.GenPrivKey()
	addr, err := AddressOf(key.PubKey().Bytes())
	require.NoError(t, err)

	sender, err := st.Verify(signedTx(t, key, 0, "dao-test"), false)
	require.NoError(t, err)
	require.Equal(t, addr, sender)

	_, err = st.Verify(signedTx(t, key, 0, "other-chain"), false)
	require.ErrorIs(t, err, ErrTxSigInvalid)

	_, err = st.Verify(signedTx(t, key, 2, "dao-test"), false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)
	_, err = st.Verify(signedTx(t, key, 2, "dao-test"), true)
	require.NoError(t, err)

	require.NoError(t, st.IncNonce(addr))
	nonce, err := st.Nonce(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(1), nonce)
	_, err = st.Verify(signedTx(t, key, 0, "dao-test"), false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)

	_, err = AddressOf([]byte{1, 2})
	require.ErrorIs(t, err, ErrTxSigInvalid)
}
