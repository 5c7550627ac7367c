package keymanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/blsthreshold"
)

func TestSimpleKeyManagerSignWithChildKeyVerifiesAgainstDerivedKey(t *testing.T) {
	pks, shares, err := blsthreshold.GenerateKeySet(1, 3)
	require.NoError(t, err)

	kms := make([]*SimpleKeyManager, 3)
	for i, s := range shares {
		kms[i] = NewSimpleKeyManager(pks, s)
	}

	index := []byte{0x00, 0x00, 0x00, 0x05, 0x00}
	msg := []byte("reissue transaction digest")

	var sigShares []blsthreshold.SignatureShare
	for _, km := range kms[:2] {
		share, err := km.SignWithChildKey(index, msg)
		require.NoError(t, err)
		sigShares = append(sigShares, share)
	}

	childPKS, err := pks.DeriveChild(index)
	require.NoError(t, err)
	combined, err := blsthreshold.CombineSignatures(childPKS.Threshold(), sigShares)
	require.NoError(t, err)

	require.True(t, kms[0].Verify(msg, childPKS.PublicKey(), combined))
}

func TestSimpleKeyManagerSaveAndLoadRoundTrip(t *testing.T) {
	pks, shares, err := blsthreshold.GenerateKeySet(1, 3)
	require.NoError(t, err)

	store := NewMemoryShareStore()
	km := NewSimpleKeyManager(pks, shares[0])
	require.NoError(t, km.Save(store, "node-1"))

	recovered, err := LoadSimpleKeyManager(store, "node-1", pks)
	require.NoError(t, err)

	msg := []byte("round trip message")
	a, err := km.SignWithChildKey([]byte{0x01}, msg)
	require.NoError(t, err)
	b, err := recovered.SignWithChildKey([]byte{0x01}, msg)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestMemoryShareStoreRejectsDuplicateName(t *testing.T) {
	store := NewMemoryShareStore()
	require.NoError(t, store.Store("a", StoredShare{Name: "a", Data: []byte{1, 2, 3}}))
	err := store.Store("a", StoredShare{Name: "a", Data: []byte{4, 5, 6}})
	require.ErrorIs(t, err, ErrShareExists)
}

func TestMemoryShareStoreLoadMissingReturnsNotFound(t *testing.T) {
	store := NewMemoryShareStore()
	_, err := store.Load("missing")
	require.ErrorIs(t, err, ErrShareNotFound)
}

func TestMemoryShareStoreDeleteAndList(t *testing.T) {
	store := NewMemoryShareStore()
	require.NoError(t, store.Store("a", StoredShare{Name: "a", Data: []byte{1}}))
	require.NoError(t, store.Store("b", StoredShare{Name: "b", Data: []byte{2}}))

	names, err := store.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, names)

	require.NoError(t, store.Delete("a"))
	names, err = store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, names)
}
