// Package qr renders the chapter QR codes: a local encoder with a remote
// image service as fallback, a resolver with bounded retries, and a
// post-processor that fills the QR slots of a rendered journal.
package qr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/content"
)

// ErrUnavailable means a renderer cannot produce images right now and the
// attempt may succeed later
var ErrUnavailable = errors.New("QR renderer unavailable")

// Image is a rendered code: inline PNG data or a remote URL
type Image struct {
	PNG  []byte
	URL  string
	Size int
}

// Src is the value of the img src attribute
func (i Image) Src() string {
	if len(i.PNG) > 0 {
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(i.PNG)
	}
	return i.URL
}

// HTML renders the image as an <img> element
func (i Image) HTML(alt string) string {
	return fmt.Sprintf(`<img src="%s" alt="%s" width="%d" height="%d">`,
		html.EscapeString(i.Src()), html.EscapeString(alt), i.Size, i.Size)
}

// Renderer turns a link into a QR image of size×size pixels
type Renderer interface {
	Render(ctx context.Context, link string, size int) (Image, error)
}

// LocalRenderer encodes codes in-process
type LocalRenderer struct {
	Level qrcode.RecoveryLevel
}

// NewLocalRenderer creates an encoder using the highest error correction level
func NewLocalRenderer() *LocalRenderer {
	return &LocalRenderer{Level: qrcode.High}
}

func (r *LocalRenderer) Render(ctx context.Context, link string, size int) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	png, err := qrcode.Encode(link, r.Level, size)
	if err != nil {
		return Image{}, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return Image{PNG: png, Size: size}, nil
}

// RemoteRenderer points images at a hosted QR image service
type RemoteRenderer struct {
	Endpoint string
}

// NewRemoteRenderer creates a renderer for the public QR image service
func NewRemoteRenderer() *RemoteRenderer {
	return &RemoteRenderer{Endpoint: constants.QRRemoteEndpoint}
}

func (r *RemoteRenderer) Render(ctx context.Context, link string, size int) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	if r.Endpoint == "" {
		return Image{}, fmt.Errorf("%w: no remote endpoint configured", ErrUnavailable)
	}
	return Image{URL: RemoteURL(r.Endpoint, link, size), Size: size}, nil
}

// RemoteURL builds the image service URL for link
func RemoteURL(endpoint, link string, size int) string {
	return fmt.Sprintf("%s?size=%dx%d&data=%s&bgcolor=FFFFFF&color=000000",
		endpoint, size, size, url.QueryEscape(link))
}

// Link is a chapter QR anchor and the address it encodes
type Link struct {
	ID      string
	Chapter int
	URL     string
	Size    int
	Caption string
}

// ChapterLinks returns the QR link of every chapter under baseURL
func ChapterLinks(baseURL string) []Link {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = constants.DefaultBaseURL
	}
	chapters := content.Load().Chapters
	links := make([]Link, 0, len(chapters))
	for _, ch := range chapters {
		size := ch.QR.Size
		if size == 0 {
			size = constants.QRLargeSize
		}
		links = append(links, Link{
			ID:      ch.QR.ID,
			Chapter: ch.Number,
			URL:     base + ch.QR.Path,
			Size:    size,
			Caption: ch.QR.Caption,
		})
	}
	return links
}
