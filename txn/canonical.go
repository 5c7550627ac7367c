package txn

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"golang.org/x/text/unicode/norm"

	"github.com/safenetwork-community/sn-dbc/denom"
)

// MaxBlindedInputs and MaxBlindedOutputs bound a transaction's shape before
// any signature work is attempted, the same DoS-prevention role the
// teacher's MaxMessagesPerSignDoc plays for a SignDoc.
const (
	MaxBlindedInputs  = 4096
	MaxBlindedOutputs = 4096
)

// BlindedOutput is one output slot of a BlindedTransaction: an envelope's
// identity and the denomination a mint node must derive its child key from
// to sign it. The envelope itself hides everything else about the output.
type BlindedOutput struct {
	EnvelopeHash [32]byte
	Denomination denom.Denomination
}

// BlindedTransaction is the projection of a ReissueTransaction that mint
// nodes actually verify and sign over: input names and output envelopes,
// with nothing that would let a mint learn an output's owner or link
// inputs to outputs beyond what the denominations already reveal.
//
// NetworkID (ADDED, absent from the original single-mint-deployment design)
// scopes a transaction to one mint deployment, the same role chain_id plays
// in the teacher's SignDoc: without it, a reissue signed for a test
// deployment would also be valid on a production one sharing the same
// threshold key material.
type BlindedTransaction struct {
	NetworkID  string
	InputNames []Hash
	Outputs    []BlindedOutput
}

// Hash is a 32-byte content identifier, used both for Dbc names (blake2b
// elsewhere) and for the sorted, order-independent encoding below.
type Hash [32]byte

// newBlindedTransaction sorts inputs and outputs into a canonical order so
// that two transactions carrying the same sets, built in any order, encode
// identically.
func newBlindedTransaction(networkID string, inputNames []Hash, outputs []BlindedOutput) BlindedTransaction {
	names := append([]Hash(nil), inputNames...)
	sort.Slice(names, func(i, j int) bool { return bytes.Compare(names[i][:], names[j][:]) < 0 })

	outs := append([]BlindedOutput(nil), outputs...)
	sort.Slice(outs, func(i, j int) bool {
		return bytes.Compare(outs[i].EnvelopeHash[:], outs[j].EnvelopeHash[:]) < 0
	})

	return BlindedTransaction{NetworkID: networkID, InputNames: names, Outputs: outs}
}

// ToJSON renders the canonical encoding: field order follows struct
// declaration order, every binary field is base64-encoded through
// cramberry, and no part of this relies on encoding/json.Marshal's
// unspecified map/field ordering.
func (bt BlindedTransaction) ToJSON() ([]byte, error) {
	if len(bt.InputNames) == 0 {
		return nil, ErrEmptyTransaction
	}
	if len(bt.InputNames) > MaxBlindedInputs {
		return nil, fmt.Errorf("txn: %d inputs exceeds maximum of %d", len(bt.InputNames), MaxBlindedInputs)
	}
	if len(bt.Outputs) > MaxBlindedOutputs {
		return nil, fmt.Errorf("txn: %d outputs exceeds maximum of %d", len(bt.Outputs), MaxBlindedOutputs)
	}
	if !isNFCNormalized(bt.NetworkID) {
		return nil, fmt.Errorf("txn: network_id is not Unicode NFC-normalized")
	}

	var b bytes.Buffer
	b.Grow(128 + 64*(len(bt.InputNames)+len(bt.Outputs)))

	b.WriteString(`{"network_id":`)
	b.WriteString(cramberry.EscapeJSONString(bt.NetworkID))
	b.WriteString(`,"inputs":[`)
	for i, name := range bt.InputNames {
		if i > 0 {
			b.WriteString(`,`)
		}
		b.WriteString(cramberry.EscapeJSONString(cramberry.EncodeBase64(name[:])))
	}
	b.WriteString(`],"outputs":[`)
	for i, out := range bt.Outputs {
		if i > 0 {
			b.WriteString(`,`)
		}
		b.WriteString(`{"envelope_hash":`)
		b.WriteString(cramberry.EscapeJSONString(cramberry.EncodeBase64(out.EnvelopeHash[:])))
		b.WriteString(`,"denomination":`)
		b.WriteString(cramberry.EscapeJSONString(cramberry.EncodeBase64(out.Denomination.Bytes())))
		b.WriteString(`}`)
	}
	b.WriteString(`]}`)

	if !isCompactJSON(b.Bytes()) {
		return nil, fmt.Errorf("txn: internal encoding produced non-compact JSON")
	}
	return b.Bytes(), nil
}

// Hash returns SHA-256 of the canonical JSON encoding: the digest an
// ownership signature signs over and a ReissueShare's dbc_transaction is
// checked against.
func (bt BlindedTransaction) Hash() ([32]byte, error) {
	j, err := bt.ToJSON()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(j), nil
}

// Equal reports whether two BlindedTransactions encode identically.
func (bt BlindedTransaction) Equal(other BlindedTransaction) bool {
	a, errA := bt.ToJSON()
	b, errB := other.ToJSON()
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// isCompactJSON reports whether data contains no whitespace outside of
// string literals, guarding against accidental non-canonical encodings
// slipping past review.
func isCompactJSON(data []byte) bool {
	inString := false
	escaped := false
	for _, c := range data {
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case ' ', '\t', '\n', '\r':
			return false
		}
	}
	return true
}

// isNFCNormalized reports whether s is already in Unicode NFC form.
func isNFCNormalized(s string) bool {
	return norm.NFC.IsNormalString(s)
}
