package spendbook

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/safenetwork-community/sn-dbc/store"
)

func testName(b byte) Name {
	var n Name
	n[0] = b
	return n
}

func TestMemorySpendBookInsertAndContains(t *testing.T) {
	sb := NewMemorySpendBook()
	name := testName(1)

	ok, err := sb.Contains(name)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, sb.Insert(name))

	ok, err = sb.Contains(name)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemorySpendBookSnapshotReset(t *testing.T) {
	sb := NewMemorySpendBook()
	name := testName(1)
	require.NoError(t, sb.Insert(name))

	snap, err := sb.Snapshot()
	require.NoError(t, err)

	require.NoError(t, sb.Insert(testName(2)))
	ok, err := sb.Contains(testName(2))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, sb.Reset(snap))
	ok, err = sb.Contains(testName(2))
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = sb.Contains(name)
	require.NoError(t, err)
	require.True(t, ok)
}

func newTestIAVLSpendBook(t *testing.T) *IAVLSpendBook {
	t.Helper()
	sb, err := NewIAVLSpendBook(store.NewMemDB(), 100)
	require.NoError(t, err)
	return sb
}

func TestIAVLSpendBookInsertAndContains(t *testing.T) {
	sb := newTestIAVLSpendBook(t)
	name := testName(7)

	ok, err := sb.Contains(name)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, sb.Insert(name))

	ok, err = sb.Contains(name)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIAVLSpendBookSnapshotReset(t *testing.T) {
	sb := newTestIAVLSpendBook(t)
	require.NoError(t, sb.Insert(testName(1)))

	snap, err := sb.Snapshot()
	require.NoError(t, err)

	require.NoError(t, sb.Insert(testName(2)))
	ok, err := sb.Contains(testName(2))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, sb.Reset(snap))

	ok, err = sb.Contains(testName(1))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIAVLSpendBookProveUnspent(t *testing.T) {
	sb := newTestIAVLSpendBook(t)
	require.NoError(t, sb.Insert(testName(1)))

	proof, err := sb.ProveUnspent(testName(1))
	require.NoError(t, err)
	require.NotNil(t, proof)
}
