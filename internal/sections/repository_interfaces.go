package sections

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MenuRepository exposes persistence operations for menu records.
type MenuRepository interface {
	Create(ctx context.Context, menu *Menu) (*Menu, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetByCode(ctx context.Context, code string) (*Menu, error)
	GetByLocation(ctx context.Context, location string) (*Menu, error)
	List(ctx context.Context) ([]*Menu, error)
	Update(ctx context.Context, menu *Menu) (*Menu, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SectionRepository exposes persistence operations for sections.
type SectionRepository interface {
	Create(ctx context.Context, section *Section) (*Section, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Section, error)
	GetByMenuAndCanonicalKey(ctx context.Context, menuID uuid.UUID, key string) (*Section, error)
	GetByMenuAndRef(ctx context.Context, menuID uuid.UUID, ref string) (*Section, error)
	ListByMenu(ctx context.Context, menuID uuid.UUID) ([]*Section, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Section, error)
	Update(ctx context.Context, section *Section) (*Section, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// BulkUpdateHierarchy persists parent/position updates for multiple sections atomically.
	BulkUpdateHierarchy(ctx context.Context, items []*Section) error
}

// SectionTranslationRepository exposes persistence operations for
// section translations.
type SectionTranslationRepository interface {
	Create(ctx context.Context, translation *SectionTranslation) (*SectionTranslation, error)
	GetBySectionAndLocale(ctx context.Context, sectionID uuid.UUID, localeCode string) (*SectionTranslation, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*SectionTranslation, error)
	Update(ctx context.Context, translation *SectionTranslation) (*SectionTranslation, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError is returned when a navigation resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
