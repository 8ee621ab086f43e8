package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// MenuUUID derives the stable identifier for a menu code. Seeding and
// cross-environment sync rely on the same code producing the same ID.
func MenuUUID(menuCode string) uuid.UUID {
	return UUID("go-navigation:menu:" + strings.TrimSpace(menuCode))
}

// SectionUUID derives the stable identifier for a section within a menu
// keyed by its canonical key.
func SectionUUID(menuID uuid.UUID, canonicalKey string) uuid.UUID {
	return UUID("go-navigation:section:" + menuID.String() + ":" + strings.TrimSpace(canonicalKey))
}

// TranslationUUID derives the stable identifier for a section
// translation keyed by locale code.
func TranslationUUID(sectionID uuid.UUID, localeCode string) uuid.UUID {
	return UUID("go-navigation:section_translation:" + sectionID.String() + ":" + strings.ToLower(strings.TrimSpace(localeCode)))
}
