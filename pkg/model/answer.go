package model

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrInvalidProvenance = goerr.New("invalid provenance")
)

// Provenance tells which branch produced a resolved answer
type Provenance string

const (
	ProvenanceMemory   Provenance = "memory"
	ProvenanceRAG      Provenance = "rag"
	ProvenanceDirect   Provenance = "direct"
	ProvenanceWelcome  Provenance = "welcome"
	ProvenanceFallback Provenance = "fallback"
)

// Validate checks if the provenance is valid
func (p Provenance) Validate() error {
	switch p {
	case ProvenanceMemory, ProvenanceRAG, ProvenanceDirect, ProvenanceWelcome, ProvenanceFallback:
		return nil
	default:
		return goerr.Wrap(ErrInvalidProvenance, "unknown provenance", goerr.V("provenance", p))
	}
}

// ResolvedAnswer is the outcome of one resolution: the text shown to the
// student plus where it came from and how much the engine trusts it.
type ResolvedAnswer struct {
	Content    string
	Sources    []*Source
	Provenance Provenance
	Confidence float64
}

// Validate checks if the answer is complete
func (r *ResolvedAnswer) Validate() error {
	if r.Content == "" {
		return goerr.New("resolved answer content is empty")
	}
	if err := r.Provenance.Validate(); err != nil {
		return err
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return goerr.New("confidence out of range", goerr.V("confidence", r.Confidence))
	}
	return nil
}
