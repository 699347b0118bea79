// Package entries loads the data a journal is generated from: entry maps
// from files, inbound messages, a remote journal server or local storage.
package entries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// ErrIgnoredMessage is returned for well-formed messages of another type.
// Callers drop them silently.
var ErrIgnoredMessage = errors.New("message is not a journal entries message")

// Bundle is everything one generation run binds: entries keyed by program
// day and weekly review answers keyed by week
type Bundle struct {
	EntriesByDay  models.EntriesByDay   `json:"entriesByDay"`
	ReviewsByWeek models.ReviewsByWeek  `json:"reviewsByWeek"`
	Entries       []models.JournalEntry `json:"entries,omitempty"`
}

// Empty reports whether the bundle carries no data at all
func (b Bundle) Empty() bool {
	return len(b.EntriesByDay) == 0 && len(b.ReviewsByWeek) == 0
}

// Source provides a bundle
type Source interface {
	Load(ctx context.Context) (Bundle, error)
}

// Message is an inbound request to regenerate the journal
type Message struct {
	Type          string               `json:"type"`
	EntriesByDay  models.EntriesByDay  `json:"entriesByDay"`
	ReviewsByWeek models.ReviewsByWeek `json:"reviewsByWeek,omitempty"`
}

// NewMessage wraps a bundle in a JOURNAL_ENTRIES message
func NewMessage(b Bundle) Message {
	return Message{
		Type:          constants.MessageTypeJournalEntries,
		EntriesByDay:  b.EntriesByDay,
		ReviewsByWeek: b.ReviewsByWeek,
	}
}

// Bundle returns the message payload
func (m Message) Bundle() Bundle {
	b := Bundle{EntriesByDay: m.EntriesByDay, ReviewsByWeek: m.ReviewsByWeek}
	if b.EntriesByDay == nil {
		b.EntriesByDay = models.EntriesByDay{}
	}
	return b
}

// DecodeMessage parses an inbound message. Messages of any other type
// yield ErrIgnoredMessage.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}
	if m.Type != constants.MessageTypeJournalEntries {
		return Message{}, fmt.Errorf("%w: %q", ErrIgnoredMessage, m.Type)
	}
	if m.EntriesByDay == nil {
		m.EntriesByDay = models.EntriesByDay{}
	}
	return m, nil
}

// Decode reads any of the accepted payload shapes: a JOURNAL_ENTRIES
// message, the fetch envelope ({"entriesByDay": ...}), or a bare
// entriesByDay object
func Decode(data []byte) (Bundle, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return Bundle{}, fmt.Errorf("malformed entries payload: %w", err)
	}

	if _, ok := top["type"]; ok {
		m, err := DecodeMessage(data)
		if err != nil {
			return Bundle{}, err
		}
		return m.Bundle(), nil
	}

	if _, ok := top["entriesByDay"]; ok {
		var b Bundle
		if err := json.Unmarshal(data, &b); err != nil {
			return Bundle{}, fmt.Errorf("malformed entries envelope: %w", err)
		}
		if b.EntriesByDay == nil {
			b.EntriesByDay = models.EntriesByDay{}
		}
		return b, nil
	}

	var byDay models.EntriesByDay
	if err := json.Unmarshal(data, &byDay); err != nil {
		return Bundle{}, fmt.Errorf("malformed entriesByDay: %w", err)
	}
	return Bundle{EntriesByDay: byDay}, nil
}

// FileSource reads a bundle from a JSON file
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (Bundle, error) {
	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to read entries file: %w", err)
	}
	b, err := Decode(data)
	if err != nil {
		return Bundle{}, fmt.Errorf("%s: %w", s.Path, err)
	}
	return b, nil
}

// Static is a source that always returns the same bundle
type Static Bundle

func (s Static) Load(context.Context) (Bundle, error) {
	b := Bundle(s)
	if b.EntriesByDay == nil {
		b.EntriesByDay = models.EntriesByDay{}
	}
	return b, nil
}
