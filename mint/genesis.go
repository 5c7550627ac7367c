package mint

import (
	"bytes"
	"fmt"

	"github.com/safenetwork-community/sn-dbc/amount"
	"github.com/safenetwork-community/sn-dbc/blsthreshold"
	"github.com/safenetwork-community/sn-dbc/dbc"
	"github.com/safenetwork-community/sn-dbc/denom"
	"github.com/safenetwork-community/sn-dbc/envelope"
)

// IssueGenesisDbc bootstraps the very first certificate: one with no
// predecessor input, self-signed with the mint's full threshold signature
// rather than combined from a reissue's per-input verification. It is the
// only place a Dbc is minted without a prior spend-book check, since there
// is nothing yet to double-spend.
//
// nodes must hold at least threshold+1 distinct shares of the same master
// key set; in a single-node test harness pass a slice of one Node whose
// key manager was built by reconstituting a full key from one share.
func IssueGenesisDbc(nodes []*Node, ownerPublicKey []byte, amt amount.Amount) (dbc.Dbc, error) {
	if len(nodes) == 0 {
		return dbc.Dbc{}, fmt.Errorf("mint: issuing genesis dbc requires at least one node")
	}

	d, err := denom.New(amt)
	if err != nil {
		return dbc.Dbc{}, fmt.Errorf("mint: genesis amount is not a legal denomination: %w", err)
	}

	content, err := dbc.NewContent(ownerPublicKey, d)
	if err != nil {
		return dbc.Dbc{}, fmt.Errorf("mint: building genesis content: %w", err)
	}

	env, bf, err := envelope.NewEnvelope(content.Slip())
	if err != nil {
		return dbc.Dbc{}, fmt.Errorf("mint: sealing genesis envelope: %w", err)
	}

	masterPKS := nodes[0].PublicKeySet()
	childPKS, err := masterPKS.DeriveChild(d.Bytes())
	if err != nil {
		return dbc.Dbc{}, fmt.Errorf("mint: deriving genesis denomination key: %w", err)
	}

	sigShares := make([]blsthreshold.SignatureShare, 0, len(nodes))
	for i, node := range nodes {
		pks := node.PublicKeySet()
		if !bytes.Equal(pks.PublicKey().Serialize(), masterPKS.PublicKey().Serialize()) {
			return dbc.Dbc{}, fmt.Errorf("mint: node %d carries a different master key set", i)
		}
		share, err := node.keys.SignWithChildKey(d.Bytes(), env.Hash[:])
		if err != nil {
			return dbc.Dbc{}, fmt.Errorf("mint: node %d signing genesis envelope: %w", i, err)
		}
		sigShares = append(sigShares, share)
	}

	combined, err := blsthreshold.CombineSignatures(childPKS.Threshold(), sigShares)
	if err != nil {
		return dbc.Dbc{}, fmt.Errorf("mint: combining genesis signature shares: %w", err)
	}

	return dbc.Dbc{
		Content:        content,
		Envelope:       env,
		BlindingFactor: bf,
		MintPublicKey:  childPKS.PublicKey(),
		MintSignature:  combined,
	}, nil
}
