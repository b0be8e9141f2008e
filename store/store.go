// Package store persists serialized fold models and the manifest that
// describes the split they were trained under.
//
// The model bytes are opaque: the external toolkit's ModelCodec produces
// and consumes them. The store only keys blobs by method and fold and
// keeps one manifest per method so that a later application phase can
// verify it is using the exact split configuration the models were
// trained with.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("store: key not found")

// ModelStore is an opaque blob store for per-fold models and manifests.
//
// Implementations must be safe for concurrent use; Evaluate writes fold
// models from parallel goroutines.
type ModelStore interface {
	// Put stores data under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the data stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Keys lists all stored keys.
	Keys(ctx context.Context) ([]string, error)
}

// Manifest records the configuration a method's fold models were trained
// under. It is stored next to the models and checked on reload.
type Manifest struct {
	// Method is the booked method name.
	Method string `json:"method"`

	// NumFolds is the fold count of the training run.
	NumFolds int `json:"numFolds"`

	// SplitFingerprint is the FoldSplitter fingerprint of the training
	// run. Applying the models with a splitter whose fingerprint differs
	// is rejected.
	SplitFingerprint uint64 `json:"splitFingerprint"`

	// Variables are the input-variable names the models were trained on.
	Variables []string `json:"variables"`

	// AnalysisType is the option-string spelling of the analysis type.
	AnalysisType string `json:"analysisType"`
}

// ModelKey returns the store key of one fold's model.
func ModelKey(method string, fold int) string {
	return method + "/fold-" + strconv.Itoa(fold)
}

// ManifestKey returns the store key of a method's manifest.
func ManifestKey(method string) string {
	return method + "/manifest"
}

// validateKey rejects empty keys early with a uniform error.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: empty key")
	}

	return nil
}
