package ports

import "go.trai.ch/exordium/internal/core/domain"

// Verifier defines the interface for verifying installed artifacts.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// Verify checks that the artifact recorded by the receipt still exists
	// and matches its digest.
	Verify(receipt domain.InstallReceipt) (bool, error)
}
