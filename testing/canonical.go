// Package testing provides test helpers for the canonical encodings this
// module signs and hashes over.
package testing

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// CanonicalEncoder is anything that renders itself to a canonical byte
// encoding, the way txn.BlindedTransaction.ToJSON does. Non-deterministic
// encoders are a correctness hazard for this module specifically: two mint
// nodes computing different bytes for what should be the same blinded
// transaction would disagree on ReissueShare.DbcTransaction and every
// reissue would fail to combine.
type CanonicalEncoder interface {
	ToJSON() ([]byte, error)
}

// AssertCanonicalEncodingDeterminism validates that enc.ToJSON() produces
// byte-identical output across repeated calls.
//
// SECURITY: non-deterministic canonical encodings break signature
// verification across nodes, since a mint that hashes different bytes for
// the same logical transaction will never agree with its peers on what was
// signed.
func AssertCanonicalEncodingDeterminism(t *testing.T, enc CanonicalEncoder, iterations int) {
	t.Helper()

	if iterations < 2 {
		t.Fatal("AssertCanonicalEncodingDeterminism requires at least 2 iterations")
	}

	first, err := enc.ToJSON()
	require.NoError(t, err, "ToJSON() failed on first call")
	require.NotNil(t, first, "ToJSON() returned nil on first call")

	for i := 1; i < iterations; i++ {
		result, err := enc.ToJSON()
		require.NoError(t, err, "ToJSON() failed on iteration %d", i)
		if !bytes.Equal(first, result) {
			t.Fatalf("ToJSON() returned different bytes on iteration %d.\n"+
				"First:  %s\n"+
				"Got:    %s\n"+
				"This indicates non-deterministic encoding, likely due to "+
				"map iteration order or unsorted slices.",
				i, string(first), string(result))
		}
	}
}

// AssertCanonicalEncodingValid validates that enc.ToJSON() returns
// non-empty, syntactically valid, and deterministic JSON.
func AssertCanonicalEncodingValid(t *testing.T, enc CanonicalEncoder) {
	t.Helper()

	data, err := enc.ToJSON()
	require.NoError(t, err, "ToJSON() returned error")
	require.NotNil(t, data, "ToJSON() returned nil")
	require.True(t, len(data) > 0, "ToJSON() returned empty bytes")
	require.True(t, json.Valid(data), "ToJSON() returned invalid JSON: %s", string(data))

	AssertCanonicalEncodingDeterminism(t, enc, 100)
}

// AssertCanonicalEncodingDeterminismConcurrent validates that enc.ToJSON()
// produces deterministic output even when called concurrently from
// multiple goroutines.
//
// WARNING: a passing run only means no race was observed this time. Run
// with -race for real coverage: go test -race ./...
func AssertCanonicalEncodingDeterminismConcurrent(t *testing.T, enc CanonicalEncoder, goroutines, iterationsPerGoroutine int) {
	t.Helper()

	if goroutines < 1 {
		t.Fatal("AssertCanonicalEncodingDeterminismConcurrent requires at least 1 goroutine")
	}
	if iterationsPerGoroutine < 1 {
		t.Fatal("AssertCanonicalEncodingDeterminismConcurrent requires at least 1 iteration per goroutine")
	}

	reference, err := enc.ToJSON()
	require.NoError(t, err, "ToJSON() failed on initial reference call")
	require.NotNil(t, reference, "ToJSON() returned nil on initial reference call")

	totalResults := goroutines * iterationsPerGoroutine
	results := make(chan concurrentResult, totalResults)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for i := 0; i < iterationsPerGoroutine; i++ {
				data, err := enc.ToJSON()
				results <- concurrentResult{
					data:        data,
					err:         err,
					goroutineID: goroutineID,
					iteration:   i,
				}
			}
		}(g)
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			t.Fatalf("ToJSON() failed in goroutine %d, iteration %d: %v",
				r.goroutineID, r.iteration, r.err)
		}
		if r.data == nil {
			t.Fatalf("ToJSON() returned nil in goroutine %d, iteration %d",
				r.goroutineID, r.iteration)
		}
		if !bytes.Equal(reference, r.data) {
			t.Fatalf("ToJSON() returned different bytes in goroutine %d, iteration %d.\n"+
				"Reference: %s\n"+
				"Got:       %s\n"+
				"This indicates a race condition or non-thread-safe encoder.\n"+
				"Run with -race for more detail: go test -race ./...",
				r.goroutineID, r.iteration, string(reference), string(r.data))
		}
	}
}

type concurrentResult struct {
	data        []byte
	err         error
	goroutineID int
	iteration   int
}
