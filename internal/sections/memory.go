package sections

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memoryMenuRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Menu
	byCode map[string]uuid.UUID
}

// NewMemoryMenuRepository constructs an in-memory repository for menus.
func NewMemoryMenuRepository() MenuRepository {
	return &memoryMenuRepository{
		byID:   make(map[uuid.UUID]*Menu),
		byCode: make(map[string]uuid.UUID),
	}
}

func (m *memoryMenuRepository) Create(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneMenu(menu)
	m.byID[cloned.ID] = cloned
	if cloned.Code != "" {
		m.byCode[cloned.Code] = cloned.ID
	}
	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) GetByID(_ context.Context, id uuid.UUID) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: id.String()}
	}
	return cloneMenu(record), nil
}

func (m *memoryMenuRepository) GetByCode(_ context.Context, code string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byCode[code]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: code}
	}
	return cloneMenu(m.byID[id]), nil
}

func (m *memoryMenuRepository) GetByLocation(_ context.Context, location string) (*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.byID {
		if strings.EqualFold(record.Location, location) {
			return cloneMenu(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "menu", Key: location}
}

func (m *memoryMenuRepository) List(_ context.Context) ([]*Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Menu, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneMenu(record))
	}
	return records, nil
}

func (m *memoryMenuRepository) Update(_ context.Context, menu *Menu) (*Menu, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[menu.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "menu", Key: menu.ID.String()}
	}

	oldCode := existing.Code
	cloned := cloneMenu(menu)

	m.byID[cloned.ID] = cloned

	if oldCode != "" && oldCode != cloned.Code {
		delete(m.byCode, oldCode)
	}
	if cloned.Code != "" {
		m.byCode[cloned.Code] = cloned.ID
	}

	return cloneMenu(cloned), nil
}

func (m *memoryMenuRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "menu", Key: id.String()}
	}
	delete(m.byID, id)
	if existing.Code != "" {
		delete(m.byCode, existing.Code)
	}
	return nil
}

// NewMemorySectionRepository constructs an in-memory repository for sections.
func NewMemorySectionRepository() SectionRepository {
	return &memorySectionRepository{
		byID:     make(map[uuid.UUID]*Section),
		byMenuID: make(map[uuid.UUID][]uuid.UUID),
		byParent: make(map[uuid.UUID][]uuid.UUID),
	}
}

type memorySectionRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Section
	byMenuID map[uuid.UUID][]uuid.UUID
	byParent map[uuid.UUID][]uuid.UUID
}

func (m *memorySectionRepository) Create(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneSection(section)
	m.byID[cloned.ID] = cloned
	m.byMenuID[cloned.MenuID] = append(m.byMenuID[cloned.MenuID], cloned.ID)
	if cloned.ParentID != nil {
		parentID := *cloned.ParentID
		m.byParent[parentID] = append(m.byParent[parentID], cloned.ID)
	}
	return cloneSection(cloned), nil
}

func (m *memorySectionRepository) GetByID(_ context.Context, id uuid.UUID) (*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "section", Key: id.String()}
	}
	return cloneSection(record), nil
}

func (m *memorySectionRepository) GetByMenuAndCanonicalKey(_ context.Context, menuID uuid.UUID, key string) (*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.byMenuID[menuID] {
		record := m.byID[id]
		if record == nil || record.CanonicalKey == nil {
			continue
		}
		if *record.CanonicalKey == key {
			return cloneSection(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "section", Key: key}
}

func (m *memorySectionRepository) GetByMenuAndRef(_ context.Context, menuID uuid.UUID, ref string) (*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Refs are opaque upstream identifiers; matching is exact, never folded.
	for _, id := range m.byMenuID[menuID] {
		record := m.byID[id]
		if record != nil && record.Ref == ref {
			return cloneSection(record), nil
		}
	}
	return nil, &NotFoundError{Resource: "section", Key: ref}
}

func (m *memorySectionRepository) ListByMenu(_ context.Context, menuID uuid.UUID) ([]*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byMenuID[menuID]
	records := make([]*Section, 0, len(ids))
	for _, id := range ids {
		records = append(records, cloneSection(m.byID[id]))
	}
	return records, nil
}

func (m *memorySectionRepository) ListChildren(_ context.Context, parentID uuid.UUID) ([]*Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byParent[parentID]
	children := make([]*Section, 0, len(ids))
	for _, id := range ids {
		children = append(children, cloneSection(m.byID[id]))
	}
	return children, nil
}

func (m *memorySectionRepository) Update(_ context.Context, section *Section) (*Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[section.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "section", Key: section.ID.String()}
	}

	oldMenuID := existing.MenuID
	var oldParentID *uuid.UUID
	if existing.ParentID != nil {
		tmp := *existing.ParentID
		oldParentID = &tmp
	}

	cloned := cloneSection(section)
	m.byID[cloned.ID] = cloned

	if oldMenuID != cloned.MenuID {
		m.byMenuID[oldMenuID] = removeUUID(m.byMenuID[oldMenuID], cloned.ID)
		m.byMenuID[cloned.MenuID] = appendUniqueUUID(m.byMenuID[cloned.MenuID], cloned.ID)
	}

	if !uuidPtrEqual(oldParentID, cloned.ParentID) {
		if oldParentID != nil {
			m.byParent[*oldParentID] = removeUUID(m.byParent[*oldParentID], cloned.ID)
		}
		if cloned.ParentID != nil {
			m.byParent[*cloned.ParentID] = appendUniqueUUID(m.byParent[*cloned.ParentID], cloned.ID)
		}
	}

	return cloneSection(cloned), nil
}

func (m *memorySectionRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	section, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "section", Key: id.String()}
	}

	delete(m.byID, id)
	m.byMenuID[section.MenuID] = removeUUID(m.byMenuID[section.MenuID], id)
	if section.ParentID != nil {
		m.byParent[*section.ParentID] = removeUUID(m.byParent[*section.ParentID], id)
	}
	return nil
}

func (m *memorySectionRepository) BulkUpdateHierarchy(_ context.Context, items []*Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range items {
		existing, ok := m.byID[record.ID]
		if !ok {
			return &NotFoundError{Resource: "section", Key: record.ID.String()}
		}
		var oldParent *uuid.UUID
		if existing.ParentID != nil {
			tmp := *existing.ParentID
			oldParent = &tmp
		}

		cloned := cloneSection(record)
		m.byID[cloned.ID] = cloned

		if !uuidPtrEqual(oldParent, cloned.ParentID) {
			if oldParent != nil {
				m.byParent[*oldParent] = removeUUID(m.byParent[*oldParent], cloned.ID)
			}
			if cloned.ParentID != nil {
				m.byParent[*cloned.ParentID] = appendUniqueUUID(m.byParent[*cloned.ParentID], cloned.ID)
			}
		}
	}

	return nil
}

// NewMemorySectionTranslationRepository constructs an in-memory repository for section translations.
func NewMemorySectionTranslationRepository() SectionTranslationRepository {
	return &memorySectionTranslationRepository{
		byID:            make(map[uuid.UUID]*SectionTranslation),
		bySection:       make(map[uuid.UUID][]uuid.UUID),
		bySectionLocale: make(map[string]uuid.UUID),
	}
}

type memorySectionTranslationRepository struct {
	mu              sync.RWMutex
	byID            map[uuid.UUID]*SectionTranslation
	bySection       map[uuid.UUID][]uuid.UUID
	bySectionLocale map[string]uuid.UUID
}

func (m *memorySectionTranslationRepository) Create(_ context.Context, translation *SectionTranslation) (*SectionTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneSectionTranslation(translation)
	m.byID[cloned.ID] = cloned
	m.bySection[cloned.SectionID] = append(m.bySection[cloned.SectionID], cloned.ID)
	m.bySectionLocale[translationKey(cloned.SectionID, cloned.LocaleCode)] = cloned.ID

	return cloneSectionTranslation(cloned), nil
}

func (m *memorySectionTranslationRepository) GetBySectionAndLocale(_ context.Context, sectionID uuid.UUID, localeCode string) (*SectionTranslation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := translationKey(sectionID, localeCode)
	id, ok := m.bySectionLocale[key]
	if !ok {
		return nil, &NotFoundError{Resource: "section_translation", Key: key}
	}
	return cloneSectionTranslation(m.byID[id]), nil
}

func (m *memorySectionTranslationRepository) ListBySection(_ context.Context, sectionID uuid.UUID) ([]*SectionTranslation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.bySection[sectionID]
	translations := make([]*SectionTranslation, 0, len(ids))
	for _, id := range ids {
		translations = append(translations, cloneSectionTranslation(m.byID[id]))
	}
	return translations, nil
}

func (m *memorySectionTranslationRepository) Update(_ context.Context, translation *SectionTranslation) (*SectionTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[translation.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "section_translation", Key: translation.ID.String()}
	}

	oldKey := translationKey(existing.SectionID, existing.LocaleCode)

	cloned := cloneSectionTranslation(translation)
	m.byID[cloned.ID] = cloned

	newKey := translationKey(cloned.SectionID, cloned.LocaleCode)
	if oldKey != newKey {
		delete(m.bySectionLocale, oldKey)
		m.bySectionLocale[newKey] = cloned.ID
		if existing.SectionID != cloned.SectionID {
			m.bySection[existing.SectionID] = removeUUID(m.bySection[existing.SectionID], cloned.ID)
			m.bySection[cloned.SectionID] = appendUniqueUUID(m.bySection[cloned.SectionID], cloned.ID)
		}
	}

	return cloneSectionTranslation(cloned), nil
}

func (m *memorySectionTranslationRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	translation, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "section_translation", Key: id.String()}
	}
	delete(m.byID, id)
	m.bySection[translation.SectionID] = removeUUID(m.bySection[translation.SectionID], id)
	delete(m.bySectionLocale, translationKey(translation.SectionID, translation.LocaleCode))
	return nil
}

func cloneMenu(src *Menu) *Menu {
	if src == nil {
		return nil
	}
	cloned := *src
	if len(src.Sections) > 0 {
		cloned.Sections = make([]*Section, len(src.Sections))
		for i, section := range src.Sections {
			cloned.Sections[i] = cloneSection(section)
		}
	}
	return &cloned
}

func cloneSection(src *Section) *Section {
	if src == nil {
		return nil
	}
	cloned := *src
	if src.Target != nil {
		cloned.Target = maps.Clone(src.Target)
	}
	if src.Metadata != nil {
		cloned.Metadata = maps.Clone(src.Metadata)
	}
	if len(src.Classes) > 0 {
		cloned.Classes = slices.Clone(src.Classes)
	}
	if src.CanonicalKey != nil {
		key := *src.CanonicalKey
		cloned.CanonicalKey = &key
	}
	if src.ParentRef != nil {
		ref := *src.ParentRef
		cloned.ParentRef = &ref
	}
	cloned.Menu = nil
	cloned.Parent = nil
	if len(src.Children) > 0 {
		cloned.Children = make([]*Section, len(src.Children))
		for i, child := range src.Children {
			cloned.Children[i] = cloneSection(child)
		}
	}
	if len(src.Translations) > 0 {
		cloned.Translations = make([]*SectionTranslation, len(src.Translations))
		for i, tr := range src.Translations {
			cloned.Translations[i] = cloneSectionTranslation(tr)
		}
	}
	return &cloned
}

func cloneSectionTranslation(src *SectionTranslation) *SectionTranslation {
	if src == nil {
		return nil
	}
	cloned := *src
	cloned.Section = nil
	if src.URLOverride != nil {
		url := *src.URLOverride
		cloned.URLOverride = &url
	}
	return &cloned
}

func translationKey(sectionID uuid.UUID, localeCode string) string {
	return sectionID.String() + ":" + strings.ToLower(strings.TrimSpace(localeCode))
}

func removeUUID(list []uuid.UUID, id uuid.UUID) []uuid.UUID {
	if len(list) == 0 {
		return list
	}
	out := make([]uuid.UUID, 0, len(list))
	for _, item := range list {
		if item != id {
			out = append(out, item)
		}
	}
	return out
}

func appendUniqueUUID(list []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, item := range list {
		if item == id {
			return list
		}
	}
	return append(list, id)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
