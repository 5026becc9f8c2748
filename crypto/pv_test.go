package crypto

import (
	"path/filepath"
	"testing"

	"github.com/calehh/hac-dao/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cometbft/cometbft/privval"
	"github.com/stretchr/testify/require"
)

func TestSignTx(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key.json")
	filePV := privval.GenFilePV(keyFile, filepath.Join(dir, "state.json"))
	filePV.Save()

	pv, err := LoadFilePV(keyFile)
	require.NoError(t, err)
	require.Equal(t, filePV.Key.Address.String(), pv.Address())

	btx := tx.NewDAOTx(&tx.DonateTx{Value: 3}, 4, nil)
	require.NoError(t, pv.SignTx(btx, "chain"))
	require.Len(t, btx.Sig, 1)

	dat, err := btx.SigData([]byte("chain"))
	require.NoError(t, err)
	require.True(t, ed25519.PubKey(btx.PubKey).VerifySignature(dat, btx.Sig[0]))

	_, err = LoadFilePV(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
