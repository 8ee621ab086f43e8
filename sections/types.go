package sections

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	SectionKindLink      = "link"
	SectionKindGroup     = "group"
	SectionKindSeparator = "separator"
)

// Menu represents a navigational container that groups ordered sections.
type Menu struct {
	bun.BaseModel `bun:"table:menus,alias:m"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Code        string     `bun:"code,notnull" json:"code"`
	Location    string     `bun:"location" json:"location,omitempty"`
	Description *string    `bun:"description" json:"description,omitempty"`
	CreatedBy   uuid.UUID  `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID  `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Sections    []*Section `bun:"rel:has-many,join:id=menu_id" json:"sections,omitempty"`
}

// Section describes a single navigable entry. Ref is the stable
// identifier owned by the upstream content backend; it is opaque and
// compared by exact string equality.
type Section struct {
	bun.BaseModel `bun:"table:sections,alias:s"`

	ID           uuid.UUID             `bun:",pk,type:uuid" json:"id"`
	MenuID       uuid.UUID             `bun:"menu_id,notnull,type:uuid" json:"menu_id"`
	ParentID     *uuid.UUID            `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	ParentRef    *string               `bun:"parent_ref" json:"parent_ref,omitempty"`
	Ref          string                `bun:"ref" json:"ref,omitempty"`
	Position     int                   `bun:"position,notnull,default:0" json:"position"`
	Kind         string                `bun:"kind,notnull,default:link" json:"kind,omitempty"`
	Title        string                `bun:"title,notnull" json:"title"`
	URL          string                `bun:"url" json:"url,omitempty"`
	Target       map[string]any        `bun:"target,type:jsonb,notnull" json:"target,omitempty"`
	Icon         string                `bun:"icon" json:"icon,omitempty"`
	Classes      []string              `bun:"classes,type:text[]" json:"classes,omitempty"`
	Summary      string                `bun:"summary" json:"summary,omitempty"`
	Hidden       bool                  `bun:"hidden,notnull,default:false" json:"hidden,omitempty"`
	CanonicalKey *string               `bun:"canonical_key" json:"canonical_key,omitempty"`
	Metadata     map[string]any        `bun:"metadata,type:jsonb,notnull" json:"metadata,omitempty"`
	CreatedBy    uuid.UUID             `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy    uuid.UUID             `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	DeletedAt    *time.Time            `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt    time.Time             `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time             `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Menu         *Menu                 `bun:"rel:belongs-to,join:menu_id=id" json:"menu,omitempty"`
	Parent       *Section              `bun:"rel:belongs-to,join:parent_id=id" json:"parent,omitempty"`
	Children     []*Section            `bun:"rel:has-many,join:id=parent_id" json:"children,omitempty"`
	Translations []*SectionTranslation `bun:"rel:has-many,join:id=section_id" json:"translations,omitempty"`
}

// SectionTranslation stores locale overrides for section display fields.
// Locales are plain codes validated against the runtime configuration.
type SectionTranslation struct {
	bun.BaseModel `bun:"table:section_translations,alias:st"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	SectionID   uuid.UUID  `bun:"section_id,notnull,type:uuid" json:"section_id"`
	LocaleCode  string     `bun:"locale_code,notnull" json:"locale_code"`
	Title       string     `bun:"title,notnull" json:"title"`
	TitleKey    string     `bun:"title_key" json:"title_key,omitempty"`
	URLOverride *string    `bun:"url_override" json:"url_override,omitempty"`
	Summary     string     `bun:"summary" json:"summary,omitempty"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Section     *Section   `bun:"rel:belongs-to,join:section_id=id" json:"section,omitempty"`
}
