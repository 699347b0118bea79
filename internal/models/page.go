package models

import "fmt"

// PageKind identifies the layout family of a rendered page
type PageKind int

const (
	KindChapterDivider PageKind = iota
	KindPhilosophyEssay
	KindTimelineFramework
	KindDailyEntry
	KindWeeklyReview
	KindRewardCheckpoint
	KindCertificate
	KindIndex
	KindGlossary
	KindCredits
	KindBackCover
)

var pageKindNames = [...]string{
	KindChapterDivider:    "chapterDivider",
	KindPhilosophyEssay:   "philosophyEssay",
	KindTimelineFramework: "timelineFramework",
	KindDailyEntry:        "dailyEntry",
	KindWeeklyReview:      "weeklyReview",
	KindRewardCheckpoint:  "rewardCheckpoint",
	KindCertificate:       "certificate",
	KindIndex:             "index",
	KindGlossary:          "glossary",
	KindCredits:           "credits",
	KindBackCover:         "backCover",
}

func (k PageKind) String() string {
	if k < 0 || int(k) >= len(pageKindNames) {
		return fmt.Sprintf("PageKind(%d)", int(k))
	}
	return pageKindNames[k]
}

func (k PageKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(pageKindNames) {
		return nil, fmt.Errorf("unknown page kind %d", int(k))
	}
	return []byte(pageKindNames[k]), nil
}

func (k *PageKind) UnmarshalText(text []byte) error {
	for i, name := range pageKindNames {
		if name == string(text) {
			*k = PageKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown page kind %q", string(text))
}

// Page is one printed page of the journal. Number is unique and the pages of a
// document are contiguous from 1.
type Page struct {
	Number  int      `json:"page_number"`
	Kind    PageKind `json:"kind"`
	Chapter int      `json:"chapter,omitempty"` // 0 for front and back matter
	Anchor  string   `json:"anchor"`
	Title   string   `json:"title"`
	Markup  string   `json:"markup"`
}

// Label is the zero-padded printed page number
func (p Page) Label() string {
	return fmt.Sprintf("%03d", p.Number)
}
