package fetch

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/exordium/internal/core/domain"
	"go.trai.ch/exordium/internal/core/ports"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier implements ports.Verifier by re-hashing store entries.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks that the receipt's store entry exists and still matches its
// recorded digest. A missing entry is a clean false, not an error.
func (v *Verifier) Verify(receipt domain.InstallReceipt) (bool, error) {
	if _, err := os.Stat(receipt.StorePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if receipt.Digest == "" {
		return true, nil
	}

	digest, err := FileDigest(receipt.StorePath)
	if err != nil {
		return false, err
	}
	return digest == receipt.Digest, nil
}
