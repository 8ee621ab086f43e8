package sections

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewMenuRepository creates a repository for Menu entities.
func NewMenuRepository(db *bun.DB) repository.Repository[*Menu] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Menu]{
		NewRecord: func() *Menu { return &Menu{} },
		GetID: func(m *Menu) uuid.UUID {
			return m.ID
		},
		SetID: func(m *Menu, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(m *Menu) string {
			return m.Code
		},
	})
}

// NewSectionRepository creates a repository for Section entities.
func NewSectionRepository(db *bun.DB) repository.Repository[*Section] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Section]{
		NewRecord: func() *Section { return &Section{} },
		GetID: func(s *Section) uuid.UUID {
			return s.ID
		},
		SetID: func(s *Section, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *Section) string {
			return s.ID.String()
		},
	})
}

// NewSectionTranslationRepository creates a repository for SectionTranslation entities.
func NewSectionTranslationRepository(db *bun.DB) repository.Repository[*SectionTranslation] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SectionTranslation]{
		NewRecord: func() *SectionTranslation { return &SectionTranslation{} },
		GetID: func(tr *SectionTranslation) uuid.UUID {
			return tr.ID
		},
		SetID: func(tr *SectionTranslation, id uuid.UUID) {
			tr.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(tr *SectionTranslation) string {
			return tr.ID.String()
		},
	})
}
