package envelope

import "github.com/safenetwork-community/sn-dbc/blsthreshold"

// SignedEnvelopeShare is one mint node's partial threshold signature over an
// Envelope's Hash, together with the envelope it signed, so a client
// assembling output certificates can match shares back to outputs without
// re-deriving which envelope produced which hash.
type SignedEnvelopeShare struct {
	Envelope Envelope
	Share    blsthreshold.SignatureShare
}
