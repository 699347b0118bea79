package qr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// Slot is an empty QR placeholder found in a rendered document
type Slot struct {
	ID   string
	Size int
}

// Enhancer fills the QR slots of a rendered journal with images
type Enhancer struct {
	resolver *Resolver
	links    map[string]Link
}

// NewEnhancer creates an enhancer for the given chapter links
func NewEnhancer(resolver *Resolver, links []Link) *Enhancer {
	m := make(map[string]Link, len(links))
	for _, l := range links {
		m[l.ID] = l
	}
	return &Enhancer{resolver: resolver, links: m}
}

// Enhance resolves every slot in doc that has a link, concurrently, and
// returns the document with the resolved images injected. Slots without a
// link, or that neither renderer could fill, stay empty. The count is the
// number of slots filled.
func (e *Enhancer) Enhance(ctx context.Context, doc []byte) ([]byte, int, error) {
	slots, err := FindSlots(doc)
	if err != nil {
		return doc, 0, err
	}

	var (
		mu     sync.Mutex
		images = make(map[string]Image, len(slots))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, s := range slots {
		link, ok := e.links[s.ID]
		if !ok {
			continue
		}
		if s.Size > 0 {
			link.Size = s.Size
		}
		g.Go(func() error {
			img, ok := e.resolver.Resolve(gctx, link)
			if ok {
				mu.Lock()
				images[link.ID] = img
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return doc, 0, err
	}
	if len(images) == 0 {
		return doc, 0, nil
	}

	alts := make(map[string]string, len(images))
	for id := range images {
		alts[id] = e.links[id].Caption
	}
	out, n, err := rewrite(doc, func(s Slot) (string, bool) {
		img, ok := images[s.ID]
		if !ok {
			return "", false
		}
		return img.HTML(alts[s.ID]), true
	})
	if err != nil {
		return doc, 0, err
	}
	return out, n, nil
}

// FindSlots lists the QR placeholders of doc in document order
func FindSlots(doc []byte) ([]Slot, error) {
	var slots []Slot
	_, _, err := rewrite(doc, func(s Slot) (string, bool) {
		slots = append(slots, s)
		return "", false
	})
	return slots, err
}

// rewrite copies doc token by token and, after the start tag of every
// qr-slot div, inserts whatever fill returns
func rewrite(doc []byte, fill func(Slot) (string, bool)) ([]byte, int, error) {
	z := html.NewTokenizer(bytes.NewReader(doc))
	var out bytes.Buffer
	out.Grow(len(doc))
	filled := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, 0, z.Err()
		}
		// Raw is invalidated by TagName and TagAttr
		out.Write(z.Raw())

		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "div" || !hasAttr {
			continue
		}
		slot, ok := readSlot(z)
		if !ok {
			continue
		}
		if markup, ok := fill(slot); ok {
			out.WriteString(markup)
			filled++
		}
	}
	return out.Bytes(), filled, nil
}

func readSlot(z *html.Tokenizer) (Slot, bool) {
	var (
		s      Slot
		isSlot bool
	)
	for more := true; more; {
		var key, val []byte
		key, val, more = z.TagAttr()
		switch string(key) {
		case "id":
			s.ID = string(val)
		case "class":
			for _, c := range strings.Fields(string(val)) {
				if c == "qr-slot" {
					isSlot = true
				}
			}
		case "data-size":
			s.Size, _ = strconv.Atoi(string(val))
		}
	}
	return s, isSlot && s.ID != ""
}
