package hymnal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/hymnal/internal/apperr"
	"github.com/mrlokans/hymnal/internal/entities"
)

const (
	MinChorusLength = 5
	MaxTagLength    = 32
	MaxNameLength   = 100
	MaxTitleLength  = 512
)

// VerseInput is one verse as supplied by a client.
type VerseInput struct {
	Order int    `json:"order" binding:"required,gt=0"`
	Tag   string `json:"tag,omitempty" binding:"max=32"`
	Name  string `json:"name,omitempty" binding:"max=100"`
	Text  string `json:"text" binding:"required"`
}

// HymnContent is the lyric body of a hymn: at least one verse and an
// optional chorus.
type HymnContent struct {
	Verses []VerseInput
	Chorus *string
}

// ValidateContent checks verse and chorus shape. It reports every failing
// field at once and never modifies the input.
func ValidateContent(c HymnContent) error {
	fields := map[string]string{}

	if len(c.Verses) == 0 {
		fields["verses"] = "at least one verse is required"
	}

	seen := make(map[int]int, len(c.Verses))
	for i, v := range c.Verses {
		key := fmt.Sprintf("verses[%d]", i)
		if v.Order <= 0 {
			fields[key+".order"] = "must be a positive integer"
		} else if prev, dup := seen[v.Order]; dup {
			fields[key+".order"] = fmt.Sprintf("duplicates the order of verses[%d]", prev)
		} else {
			seen[v.Order] = i
		}
		if strings.TrimSpace(v.Text) == "" {
			fields[key+".text"] = "must not be empty"
		}
		if utf8.RuneCountInString(v.Tag) > MaxTagLength {
			fields[key+".tag"] = fmt.Sprintf("must be at most %d characters", MaxTagLength)
		}
		if utf8.RuneCountInString(v.Name) > MaxNameLength {
			fields[key+".name"] = fmt.Sprintf("must be at most %d characters", MaxNameLength)
		}
	}

	if c.Chorus != nil && utf8.RuneCountInString(strings.TrimSpace(*c.Chorus)) < MinChorusLength {
		fields["chorus"] = fmt.Sprintf("must be at least %d characters", MinChorusLength)
	}

	if len(fields) > 0 {
		return apperr.Validation("invalid hymn content", fields)
	}
	return nil
}

// ValidateNumber requires a positive hymn number.
func ValidateNumber(n int) error {
	if n <= 0 {
		return apperr.ValidationField("number", "must be a positive integer")
	}
	return nil
}

// ValidateTitle requires a non-blank title within maxLen characters.
func ValidateTitle(title string, maxLen int) error {
	if strings.TrimSpace(title) == "" {
		return apperr.ValidationField("title", "must not be empty")
	}
	if utf8.RuneCountInString(title) > maxLen {
		return apperr.ValidationField("title", fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return nil
}

// ContentOf converts stored rows back into the validator's input shape.
func ContentOf(h *entities.Hymn) HymnContent {
	c := HymnContent{Verses: make([]VerseInput, 0, len(h.Verses))}
	for _, v := range h.Verses {
		c.Verses = append(c.Verses, VerseInput{Order: v.Order, Tag: v.Tag, Name: v.Name, Text: v.Text})
	}
	if h.Chorus != nil {
		text := h.Chorus.Text
		c.Chorus = &text
	}
	return c
}

func versesOf(in []VerseInput) []entities.Verse {
	verses := make([]entities.Verse, 0, len(in))
	for _, v := range in {
		verses = append(verses, entities.Verse{Order: v.Order, Tag: v.Tag, Name: v.Name, Text: v.Text})
	}
	return verses
}
