package antivirus

import (
	"context"
	"fmt"

	"go-recruitment-workflow/internal/domain"
	"go-recruitment-workflow/pkg/logger"
)

// ScanResult contains the result of a malware scan
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	Error       error
}

// Scanner is a pluggable antivirus engine. A scan that errors must report
// Infected=true.
type Scanner interface {
	Scan(ctx context.Context, filename string, data []byte) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every file clean. Used when no engine is configured.
type NoOpScanner struct{}

var _ Scanner = (*NoOpScanner)(nil)

func (n *NoOpScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult {
	return ScanResult{ScannerName: n.Name()}
}

func (n *NoOpScanner) Name() string {
	return "noop"
}

func (n *NoOpScanner) Available(ctx context.Context) bool {
	return true
}

// Guard adapts a Scanner to domain.ContentScanner
type Guard struct {
	scanner Scanner
}

var _ domain.ContentScanner = (*Guard)(nil)

// NewGuard wraps scanner, falling back to NoOpScanner when nil
func NewGuard(scanner Scanner) *Guard {
	if scanner == nil {
		scanner = &NoOpScanner{}
	}
	return &Guard{scanner: scanner}
}

func (g *Guard) Scan(ctx context.Context, fileName string, data []byte) error {
	res := g.scanner.Scan(ctx, fileName, data)
	if res.Error != nil {
		logger.Log.Error("Malware scan failed", "scanner", res.ScannerName, "file", fileName, "error", res.Error)
		return fmt.Errorf("%w: scanner unavailable", domain.ErrMalwareDetected)
	}
	if res.Infected {
		logger.Log.Warn("Malware detected in upload", "scanner", res.ScannerName, "file", fileName, "threat", res.ThreatName)
		return domain.ErrMalwareDetected
	}
	return nil
}
