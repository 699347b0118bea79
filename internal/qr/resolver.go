package qr

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/logger"
)

// Outcome is how a single anchor was resolved
type Outcome string

const (
	OutcomeLocal  Outcome = "local"
	OutcomeRemote Outcome = "remote"
	OutcomeEmpty  Outcome = "empty"
)

// Resolver renders one link with the primary renderer, retrying while it
// reports ErrUnavailable, then falls back to the secondary renderer
type Resolver struct {
	Primary  Renderer
	Fallback Renderer
	Retries  int
	Delay    time.Duration
	// OnResult, when set, is called once per resolved link
	OnResult func(id string, outcome Outcome)
}

// NewResolver creates the standard resolver: local encoding with up to five
// retries 300ms apart, then the remote image service
func NewResolver() *Resolver {
	return &Resolver{
		Primary:  NewLocalRenderer(),
		Fallback: NewRemoteRenderer(),
		Retries:  constants.QRMaxRetries,
		Delay:    constants.QRRetryDelay,
	}
}

// Resolve returns the image for link, or false when neither renderer
// produced one
func (r *Resolver) Resolve(ctx context.Context, link Link) (Image, bool) {
	img, outcome := r.resolve(ctx, link)
	if r.OnResult != nil {
		r.OnResult(link.ID, outcome)
	}
	return img, outcome != OutcomeEmpty
}

func (r *Resolver) resolve(ctx context.Context, link Link) (Image, Outcome) {
	lg := logger.With("component", "qr", "anchor", link.ID)

	if r.Primary != nil {
		for attempt := 0; attempt <= r.Retries; attempt++ {
			img, err := r.Primary.Render(ctx, link.URL, link.Size)
			if err == nil {
				return img, OutcomeLocal
			}
			if !errors.Is(err, ErrUnavailable) {
				lg.Warn("QR encoding failed", "err", err)
				break
			}
			if attempt == r.Retries {
				lg.Warn("QR renderer still unavailable, giving up", "attempts", attempt+1)
				break
			}
			if !sleep(ctx, r.Delay) {
				return Image{}, OutcomeEmpty
			}
		}
	}

	if r.Fallback == nil || ctx.Err() != nil {
		return Image{}, OutcomeEmpty
	}
	img, err := r.Fallback.Render(ctx, link.URL, link.Size)
	if err != nil {
		lg.Warn("QR fallback failed, leaving slot empty", "err", err)
		return Image{}, OutcomeEmpty
	}
	lg.Info("QR code rendered by fallback")
	return img, OutcomeRemote
}

// sleep waits for d, returning false if ctx ends first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
