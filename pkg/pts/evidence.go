package pts

import (
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Evidence is the snapshot of measurements collected on one connection,
// kept for audit trails and result persistence.
type Evidence struct {
	PlatformInfo string         `json:"platformInfo" cbor:"1,keyasint"`
	CollectedAt  time.Time      `json:"collectedAt" cbor:"2,keyasint"`
	Measurements []*Measurement `json:"measurements" cbor:"3,keyasint"`
}

// NewEvidence starts an evidence snapshot for the engine's platform.
func (e *Engine) NewEvidence() *Evidence {
	return &Evidence{
		PlatformInfo: e.platformInfo,
		CollectedAt:  time.Now().UTC(),
	}
}

// Add records a measurement in the snapshot.
func (ev *Evidence) Add(m *Measurement) {
	ev.Measurements = append(ev.Measurements, m)
}

// Encode serializes the snapshot to its CBOR storage form.
func (ev *Evidence) Encode() ([]byte, error) {
	data, err := cbor.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode evidence: %w", err)
	}
	return data, nil
}

// DecodeEvidence parses a stored evidence snapshot.
func DecodeEvidence(data []byte) (*Evidence, error) {
	var ev Evidence
	if err := cbor.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode evidence: %w", err)
	}
	return &ev, nil
}

// ComparisonResult records how one reference value compared to the
// live measurement of the same path.
type ComparisonResult struct {
	Path            string `json:"path"`
	ReferenceDigest string `json:"referenceDigest,omitempty"`
	LiveDigest      string `json:"liveDigest,omitempty"`
	Match           bool   `json:"match"`
	Status          string `json:"status"` // "match", "mismatch", "missing_live", "missing_reference"
}

// ComparisonSummary is the overall outcome of comparing live
// measurements against reference values.
type ComparisonSummary struct {
	Valid       bool               `json:"valid"`
	Matched     int                `json:"matched"`
	Mismatched  int                `json:"mismatched"`
	MissingLive int                `json:"missingLive"`
	MissingRef  int                `json:"missingReference"`
	Results     []ComparisonResult `json:"results"`
}

// Compare checks live measurements against reference values by path.
// Every reference value must have a matching live digest for the
// summary to be valid; live measurements without a reference are
// recorded as warnings, not failures.
func Compare(live, reference []*Measurement) *ComparisonSummary {
	summary := &ComparisonSummary{Valid: true}

	liveByPath := make(map[string]*Measurement, len(live))
	for _, m := range live {
		liveByPath[m.Path] = m
	}
	refByPath := make(map[string]*Measurement, len(reference))
	for _, m := range reference {
		refByPath[m.Path] = m
	}

	for _, ref := range reference {
		result := ComparisonResult{
			Path:            ref.Path,
			ReferenceDigest: ref.Digest,
		}
		if liveMeas, ok := liveByPath[ref.Path]; ok {
			result.LiveDigest = liveMeas.Digest
			if normalizeDigest(ref.Digest) == normalizeDigest(liveMeas.Digest) {
				result.Match = true
				result.Status = "match"
				summary.Matched++
			} else {
				result.Status = "mismatch"
				summary.Mismatched++
				summary.Valid = false
			}
		} else {
			result.Status = "missing_live"
			summary.MissingLive++
			summary.Valid = false
		}
		summary.Results = append(summary.Results, result)
	}

	for _, liveMeas := range live {
		if _, ok := refByPath[liveMeas.Path]; !ok {
			summary.Results = append(summary.Results, ComparisonResult{
				Path:       liveMeas.Path,
				LiveDigest: liveMeas.Digest,
				Status:     "missing_reference",
			})
			summary.MissingRef++
		}
	}

	return summary
}

// normalizeDigest normalizes a digest string for comparison.
func normalizeDigest(digest string) string {
	return strings.ToLower(strings.TrimSpace(digest))
}
