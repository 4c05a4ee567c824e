package antivirus

import (
	"context"
	"errors"
	"testing"

	"go-recruitment-workflow/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	clean := parseReply(ScanResult{}, "stream: OK")
	assert.False(t, clean.Infected)
	assert.NoError(t, clean.Error)

	infected := parseReply(ScanResult{}, "stream: Eicar-Signature FOUND")
	assert.True(t, infected.Infected)
	assert.Equal(t, "Eicar-Signature", infected.ThreatName)

	failed := parseReply(ScanResult{}, "INSTREAM size limit exceeded. ERROR")
	assert.True(t, failed.Infected)
	assert.Error(t, failed.Error)
}

type fixedScanner struct{ res ScanResult }

func (f fixedScanner) Scan(ctx context.Context, filename string, data []byte) ScanResult { return f.res }
func (f fixedScanner) Name() string                                                     { return "fixed" }
func (f fixedScanner) Available(ctx context.Context) bool                               { return true }

func TestGuard(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewGuard(nil).Scan(ctx, "cv.pdf", []byte("%PDF")))

	infected := NewGuard(fixedScanner{ScanResult{Infected: true, ThreatName: "Eicar"}})
	assert.ErrorIs(t, infected.Scan(ctx, "cv.pdf", nil), domain.ErrMalwareDetected)

	broken := NewGuard(fixedScanner{ScanResult{Infected: true, Error: errors.New("dial tcp")}})
	assert.ErrorIs(t, broken.Scan(ctx, "cv.pdf", nil), domain.ErrMalwareDetected)
}
