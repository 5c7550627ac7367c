package blsthreshold

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombineSignaturesRecoversValidSignature(t *testing.T) {
	pks, shares, err := GenerateKeySet(2, 5)
	require.NoError(t, err)

	msg := []byte("reissue transaction digest")
	var sigShares []SignatureShare
	for _, s := range shares[:3] {
		sigShares = append(sigShares, s.Sign(msg))
	}

	combined, err := CombineSignatures(pks.Threshold(), sigShares)
	require.NoError(t, err)
	require.True(t, pks.Verify(msg, combined))
}

func TestCombineSignaturesInsufficientShares(t *testing.T) {
	pks, shares, err := GenerateKeySet(2, 5)
	require.NoError(t, err)

	msg := []byte("reissue transaction digest")
	var sigShares []SignatureShare
	for _, s := range shares[:2] {
		sigShares = append(sigShares, s.Sign(msg))
	}

	_, err = CombineSignatures(pks.Threshold(), sigShares)
	require.ErrorIs(t, err, ErrInsufficientShares)
}

func TestDeriveChildPreservesThresholdStructure(t *testing.T) {
	pks, shares, err := GenerateKeySet(1, 3)
	require.NoError(t, err)

	index := []byte{0x00, 0x00, 0x00, 0x05, 0x00}

	childPKS, err := pks.DeriveChild(index)
	require.NoError(t, err)

	msg := []byte("child-key message")
	var sigShares []SignatureShare
	for _, s := range shares[:2] {
		childShare, err := s.DeriveChild(index)
		require.NoError(t, err)
		sigShares = append(sigShares, childShare.Sign(msg))
	}

	combined, err := CombineSignatures(childPKS.Threshold(), sigShares)
	require.NoError(t, err)
	require.True(t, childPKS.Verify(msg, combined))
}

func TestSecretKeyShareBytesRoundTrip(t *testing.T) {
	_, shares, err := GenerateKeySet(1, 3)
	require.NoError(t, err)

	recovered, err := SecretKeyShareFromBytes(shares[0].Bytes())
	require.NoError(t, err)
	require.Equal(t, shares[0].ID, recovered.ID)

	msg := []byte("round trip message")
	require.Equal(t, shares[0].Sign(msg), recovered.Sign(msg))
}

func TestDeriveChildIsDeterministic(t *testing.T) {
	pks, _, err := GenerateKeySet(1, 3)
	require.NoError(t, err)

	index := []byte{0x00, 0x00, 0x00, 0x0a, 0x00}
	a, err := pks.DeriveChild(index)
	require.NoError(t, err)
	b, err := pks.DeriveChild(index)
	require.NoError(t, err)
	require.Equal(t, a.PublicKey().Serialize(), b.PublicKey().Serialize())
}
