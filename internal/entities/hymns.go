package entities

import "time"

// DefaultRelationType is stored when a mapping is created without one.
const DefaultRelationType = "semantic"

type HymnBook struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"uniqueIndex;size:255;not null" json:"title"`
	ThumbnailPath *string   `gorm:"size:1024" json:"thumbnail_path"`
	Hymns         []Hymn    `gorm:"foreignKey:HymnBookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (HymnBook) TableName() string {
	return "hymn_books"
}

func (HymnBook) DeletePolicy() DeletePolicy { return HardDelete }

type Hymn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Number     int       `gorm:"not null;uniqueIndex:idx_hymn_number_book" json:"number"`
	Title      string    `gorm:"index;size:512;not null" json:"title"`
	HymnBookID uint      `gorm:"not null;uniqueIndex:idx_hymn_number_book;index" json:"hymn_book_id"`
	VariantKey *string   `gorm:"index;size:100" json:"variant_key"`
	Verses     []Verse   `gorm:"foreignKey:HymnID;constraint:OnDelete:CASCADE" json:"verses"`
	Chorus     *Chorus   `gorm:"foreignKey:HymnID;constraint:OnDelete:CASCADE" json:"chorus"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Hymn) TableName() string {
	return "hymns"
}

func (Hymn) DeletePolicy() DeletePolicy { return HardDelete }

// Verse is one stanza of a hymn. Order is unique within the hymn and drives
// presentation order. Tag and Name are optional labels ("v1", "Verse 1").
type Verse struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	HymnID uint   `gorm:"not null;uniqueIndex:idx_verse_hymn_order" json:"hymn_id"`
	Order  int    `gorm:"column:verse_order;not null;uniqueIndex:idx_verse_hymn_order" json:"order"`
	Tag    string `gorm:"size:32" json:"tag,omitempty"`
	Name   string `gorm:"size:100" json:"name,omitempty"`
	Text   string `gorm:"type:text;not null" json:"text"`
}

func (Verse) TableName() string {
	return "verses"
}

func (Verse) DeletePolicy() DeletePolicy { return HardDelete }

type Chorus struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	HymnID uint   `gorm:"uniqueIndex;not null" json:"hymn_id"`
	Text   string `gorm:"type:text;not null" json:"text"`
}

func (Chorus) TableName() string {
	return "choruses"
}

func (Chorus) DeletePolicy() DeletePolicy { return HardDelete }

// HymnMapping relates two hymns symmetrically. Rows are stored with
// SourceHymnID < TargetHymnID so one unique index covers both orderings.
type HymnMapping struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SourceHymnID uint      `gorm:"not null;uniqueIndex:idx_mapping_pair" json:"source_hymn_id"`
	TargetHymnID uint      `gorm:"not null;uniqueIndex:idx_mapping_pair;index" json:"target_hymn_id"`
	RelationType string    `gorm:"size:50;not null;default:semantic" json:"relation_type"`
	Note         *string   `gorm:"type:text" json:"note"`
	SourceHymn   *Hymn     `gorm:"foreignKey:SourceHymnID;constraint:OnDelete:CASCADE" json:"-"`
	TargetHymn   *Hymn     `gorm:"foreignKey:TargetHymnID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (HymnMapping) TableName() string {
	return "hymn_mappings"
}

func (HymnMapping) DeletePolicy() DeletePolicy { return HardDelete }

// Canonicalize swaps the pair so that SourceHymnID < TargetHymnID.
func (m *HymnMapping) Canonicalize() {
	if m.SourceHymnID > m.TargetHymnID {
		m.SourceHymnID, m.TargetHymnID = m.TargetHymnID, m.SourceHymnID
	}
}
