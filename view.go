package navigation

import (
	"context"

	"github.com/google/uuid"

	"github.com/goliatone/go-navigation/internal/sections"
)

// MenuInfo is a stable public view of a menu record.
type MenuInfo struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Location    string    `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
}

// SectionInfo is a stable public view of a stored section addressed by
// its canonical dot-path.
type SectionInfo struct {
	ID         uuid.UUID `json:"id"`
	MenuID     uuid.UUID `json:"menu_id"`
	Path       string    `json:"path"`
	ParentPath string    `json:"parent_path,omitempty"`
	Position   int       `json:"position"`
	Kind       string    `json:"kind,omitempty"`
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	Hidden     bool      `json:"hidden,omitempty"`
}

// TranslationInput exports the locale override payload accepted by
// section upserts.
type TranslationInput = sections.SectionTranslationInput

func menuInfoFrom(record *sections.Menu) *MenuInfo {
	if record == nil {
		return nil
	}
	return &MenuInfo{
		ID:          record.ID,
		Code:        record.Code,
		Location:    record.Location,
		Description: record.Description,
	}
}

func sectionInfoFrom(record *sections.Section) *SectionInfo {
	if record == nil {
		return nil
	}
	info := &SectionInfo{
		ID:       record.ID,
		MenuID:   record.MenuID,
		Path:     record.Ref,
		Position: record.Position,
		Kind:     record.Kind,
		Title:    record.Title,
		URL:      record.URL,
		Hidden:   record.Hidden,
	}
	if record.ParentRef != nil {
		info.ParentPath = *record.ParentRef
	}
	return info
}

// GetOrCreateMenu returns a stable menu record, creating it when missing.
func (m *Module) GetOrCreateMenu(ctx context.Context, code string, description *string, actor uuid.UUID) (*MenuInfo, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	canonical := CanonicalMenuCode(code)
	if canonical == "" {
		return nil, ErrMenuCodeRequired
	}

	record, err := m.sections.GetOrCreateMenu(ctx, sections.CreateMenuInput{
		Code:        canonical,
		Description: description,
		CreatedBy:   actor,
		UpdatedBy:   actor,
	})
	if err != nil {
		return nil, err
	}
	return menuInfoFrom(record), nil
}

// UpsertMenu creates or updates a menu by code, binding it to the given
// render location.
func (m *Module) UpsertMenu(ctx context.Context, code, location string, description *string, actor uuid.UUID) (*MenuInfo, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	canonical := CanonicalMenuCode(code)
	if canonical == "" {
		return nil, ErrMenuCodeRequired
	}

	record, err := m.sections.UpsertMenu(ctx, sections.UpsertMenuInput{
		Code:        canonical,
		Location:    location,
		Description: description,
		Actor:       actor,
	})
	if err != nil {
		return nil, err
	}
	return menuInfoFrom(record), nil
}

// UpsertSectionAtInput describes a section addressed by dot-path.
// Path may be absolute ("docs.guides.install") or relative to Parent;
// when Path is empty a segment is derived from Label.
type UpsertSectionAtInput struct {
	MenuCode string
	Path     string
	Parent   string
	Label    string

	Title string
	URL   string
	Kind  string
	// Position below zero appends after the existing siblings.
	Position int
	Hidden   bool
	Target   map[string]any
	Icon     string
	Classes  []string
	Summary  string
	Metadata map[string]any

	Translations []TranslationInput

	Actor uuid.UUID
}

// UpsertSectionAt creates or updates the section at the derived
// canonical path. The path doubles as the section ref, so repeated
// calls converge on one record.
func (m *Module) UpsertSectionAt(ctx context.Context, input UpsertSectionAtInput) (*SectionInfo, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	code := CanonicalMenuCode(input.MenuCode)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}

	derived, err := DeriveSectionPaths(code, input.Path, input.Parent, input.Label)
	if err != nil {
		return nil, err
	}

	parentRef := derived.ParentPath
	if parentRef == code {
		parentRef = ""
	}

	record, err := m.sections.UpsertSection(ctx, sections.UpsertSectionInput{
		MenuCode:     code,
		Ref:          derived.Path,
		ParentRef:    parentRef,
		Position:     SeedPositionPtrForKind(input.Kind, input.Position),
		Kind:         input.Kind,
		Title:        input.Title,
		URL:          input.URL,
		Target:       input.Target,
		Icon:         input.Icon,
		Classes:      input.Classes,
		Summary:      input.Summary,
		Hidden:       input.Hidden,
		Metadata:     input.Metadata,
		Actor:        input.Actor,
		Translations: input.Translations,
	})
	if err != nil {
		return nil, err
	}
	return sectionInfoFrom(record), nil
}

// GetSectionAt fetches the section stored at the canonical path.
func (m *Module) GetSectionAt(ctx context.Context, menuCode, path string) (*SectionInfo, error) {
	if m == nil || m.sections == nil {
		return nil, errNilModule
	}

	code := CanonicalMenuCode(menuCode)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}

	canonical, err := CanonicalSectionPath(code, path)
	if err != nil {
		return nil, err
	}

	record, err := m.sections.GetSectionByRef(ctx, code, canonical)
	if err != nil {
		return nil, err
	}
	return sectionInfoFrom(record), nil
}

// DeleteSectionAt removes the section stored at the canonical path.
// Cascade extends the delete to the section's subtree.
func (m *Module) DeleteSectionAt(ctx context.Context, menuCode, path string, actor uuid.UUID, cascade bool) error {
	if m == nil || m.sections == nil {
		return errNilModule
	}

	code := CanonicalMenuCode(menuCode)
	if code == "" {
		return ErrMenuCodeRequired
	}

	canonical, err := CanonicalSectionPath(code, path)
	if err != nil {
		return err
	}

	record, err := m.sections.GetSectionByRef(ctx, code, canonical)
	if err != nil {
		return err
	}

	return m.sections.DeleteSection(ctx, sections.DeleteSectionRequest{
		SectionID:       record.ID,
		DeletedBy:       actor,
		CascadeChildren: cascade,
	})
}
