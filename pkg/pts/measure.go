package pts

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Algorithm identifies a measurement hash algorithm.
type Algorithm string

const (
	AlgSHA256 Algorithm = "SHA-256"
	AlgSHA384 Algorithm = "SHA-384"
	AlgSHA512 Algorithm = "SHA-512"
)

// hashSize returns the digest size in bytes, or 0 for an unsupported
// algorithm.
func (a Algorithm) hashSize() int {
	switch a {
	case AlgSHA256:
		return 32
	case AlgSHA384:
		return 48
	case AlgSHA512:
		return 64
	default:
		return 0
	}
}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case AlgSHA384:
		return sha512.New384()
	case AlgSHA512:
		return sha512.New()
	default:
		return sha256.New()
	}
}

// Measurement is one file hash computed by the engine.
type Measurement struct {
	Path      string    `json:"path" cbor:"1,keyasint"`
	Algorithm Algorithm `json:"algorithm" cbor:"2,keyasint"`
	Digest    string    `json:"digest" cbor:"3,keyasint"` // hex-encoded
	Size      int64     `json:"size" cbor:"4,keyasint"`
	Measured  time.Time `json:"measured" cbor:"5,keyasint"`
}

// MeasureFile hashes a single regular file with the engine's current
// algorithm.
func (e *Engine) MeasureFile(path string) (*Measurement, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}
	return e.measure(path, info.Size())
}

// MeasureDirectory hashes every regular file directly inside the given
// directory (non-recursive, matching one measurement request per
// directory level). Results are ordered by path so repeated runs over
// unchanged content are comparable.
func (e *Engine) MeasureDirectory(path string) ([]*Measurement, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	var measurements []*Measurement
	for _, entry := range dirEntries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		m, err := e.measure(filepath.Join(path, entry.Name()), info.Size())
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, m)
	}

	sort.Slice(measurements, func(i, j int) bool {
		return measurements[i].Path < measurements[j].Path
	})
	return measurements, nil
}

func (e *Engine) measure(path string, size int64) (*Measurement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := e.algorithm.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return &Measurement{
		Path:      path,
		Algorithm: e.algorithm,
		Digest:    hex.EncodeToString(h.Sum(nil)),
		Size:      size,
		Measured:  time.Now().UTC(),
	}, nil
}
