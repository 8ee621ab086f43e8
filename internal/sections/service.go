package sections

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-navigation/internal/identity"
	"github.com/goliatone/go-navigation/pkg/activity"
	"github.com/goliatone/go-navigation/pkg/interfaces"
	"github.com/google/uuid"
)

// Service describes menu and section management capabilities.
type Service interface {
	CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error)
	GetOrCreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error)
	UpsertMenu(ctx context.Context, input UpsertMenuInput) (*Menu, error)
	UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error)
	GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error)
	GetMenuByCode(ctx context.Context, code string) (*Menu, error)
	GetMenuByLocation(ctx context.Context, location string) (*Menu, error)
	ListMenus(ctx context.Context) ([]*Menu, error)
	DeleteMenu(ctx context.Context, req DeleteMenuRequest) error
	ResetMenuByCode(ctx context.Context, code string, actor uuid.UUID, force bool) error

	AddSection(ctx context.Context, input AddSectionInput) (*Section, error)
	UpsertSection(ctx context.Context, input UpsertSectionInput) (*Section, error)
	UpdateSection(ctx context.Context, input UpdateSectionInput) (*Section, error)
	DeleteSection(ctx context.Context, req DeleteSectionRequest) error
	GetSection(ctx context.Context, id uuid.UUID) (*Section, error)
	GetSectionByRef(ctx context.Context, menuCode string, ref string) (*Section, error)
	ListSections(ctx context.Context, menuID uuid.UUID) ([]*Section, error)
	ReorderSections(ctx context.Context, input ReorderSectionsInput) ([]*Section, error)
	MoveSection(ctx context.Context, input MoveSectionInput) (*Section, error)
	ReconcileMenu(ctx context.Context, req ReconcileMenuRequest) (*ReconcileResult, error)

	UpsertSectionTranslation(ctx context.Context, input UpsertSectionTranslationInput) (*SectionTranslation, error)
	DeleteSectionTranslation(ctx context.Context, sectionID uuid.UUID, locale string) error
	ListSectionTranslations(ctx context.Context, sectionID uuid.UUID) ([]*SectionTranslation, error)

	ResolveMenu(ctx context.Context, opts ResolveOptions) (*ResolvedMenu, error)
	InvalidateCache(ctx context.Context, menuCode string) error
}

// CreateMenuInput captures the information required to register a menu.
type CreateMenuInput struct {
	Code        string
	Location    string
	Description *string
	CreatedBy   uuid.UUID
	UpdatedBy   uuid.UUID
}

// UpsertMenuInput captures the information required to create or update a menu by code.
type UpsertMenuInput struct {
	Code        string
	Location    string
	Description *string
	Actor       uuid.UUID
}

// UpdateMenuInput captures mutable menu fields. Nil pointers leave the
// current value unchanged; a pointer to the empty string clears it.
type UpdateMenuInput struct {
	MenuID      uuid.UUID
	Location    *string
	Description *string
	UpdatedBy   uuid.UUID
}

// AddSectionInput captures the data required to register a new section.
// Ref, Title, and URL are stored exactly as provided; the service never
// trims or folds them.
type AddSectionInput struct {
	ID     *uuid.UUID
	MenuID uuid.UUID
	// ParentID links the section under an existing parent. ParentRef
	// allows callers to reference parents by ref when UUIDs are not
	// available.
	ParentID  *uuid.UUID
	ParentRef string
	// Ref is the upstream identifier for the section. It is opaque and
	// matched by exact string equality.
	Ref string
	// CanonicalKey optionally overrides the dedupe key; when empty it is
	// derived from Ref or the target.
	CanonicalKey string
	// Position is a 0-based insertion index among siblings.
	// Values past the end are clamped to append.
	Position  int
	Kind      string
	Title     string
	URL       string
	Target    map[string]any
	Icon      string
	Classes   []string
	Summary   string
	Hidden    bool
	Metadata  map[string]any
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID

	Translations []SectionTranslationInput
}

// UpsertSectionInput creates or reconciles a section by canonical
// identity (menu + ref). The stored section follows the supplied
// definition: omitted parents mean root, and a nil Position keeps new
// sections appended.
type UpsertSectionInput struct {
	MenuID          *uuid.UUID
	MenuCode        string
	MenuDescription *string

	Ref          string
	CanonicalKey string

	ParentID  *uuid.UUID
	ParentRef string
	Position  *int

	Kind     string
	Title    string
	URL      string
	Target   map[string]any
	Icon     string
	Classes  []string
	Summary  string
	Hidden   bool
	Metadata map[string]any

	Actor uuid.UUID

	Translations []SectionTranslationInput
}

// UpdateSectionInput captures mutable fields for a section. Nil pointers
// leave the current value unchanged.
type UpdateSectionInput struct {
	SectionID uuid.UUID
	Ref       *string
	Kind      *string
	Title     *string
	URL       *string
	Target    map[string]any
	Icon      *string
	Classes   []string
	Summary   *string
	Hidden    *bool
	Metadata  map[string]any
	// Position is a 0-based insertion index among siblings.
	// Values past the end are clamped to append. Nil leaves the current position unchanged.
	Position  *int
	ParentID  *uuid.UUID
	UpdatedBy uuid.UUID
}

// SectionTranslationInput describes locale overrides for a section.
type SectionTranslationInput struct {
	Locale      string
	Title       string
	TitleKey    string
	URLOverride *string
	Summary     string
}

// UpsertSectionTranslationInput adds or updates locale overrides for a section.
type UpsertSectionTranslationInput struct {
	SectionID   uuid.UUID
	Locale      string
	Title       string
	TitleKey    string
	URLOverride *string
	Summary     string
}

// DeleteMenuRequest captures the data required to remove a menu.
type DeleteMenuRequest struct {
	MenuID    uuid.UUID
	DeletedBy uuid.UUID
	// Force bypasses guard rails such as active render bindings when true.
	Force bool
}

// ResetMenuCounts reports how many records a menu reset removed.
type ResetMenuCounts struct {
	SectionsDeleted     int
	TranslationsDeleted int
}

// DeleteSectionRequest captures the data required to remove a section.
type DeleteSectionRequest struct {
	SectionID       uuid.UUID
	DeletedBy       uuid.UUID
	CascadeChildren bool
}

// ReorderSectionsInput defines a new hierarchical ordering for a menu's sections.
type ReorderSectionsInput struct {
	MenuID   uuid.UUID
	Sections []SectionOrder
	// UpdatedBy records the actor requesting the reorder for reporting purposes.
	UpdatedBy uuid.UUID
}

// SectionOrder describes the desired parent/position for a section.
type SectionOrder struct {
	SectionID uuid.UUID
	ParentID  *uuid.UUID
	Position  int
}

// MoveSectionInput reparents a section. ParentID is the absolute new
// parent; nil promotes the section to the root level. A nil Position
// appends among the new siblings.
type MoveSectionInput struct {
	SectionID uuid.UUID
	ParentID  *uuid.UUID
	Position  *int
	UpdatedBy uuid.UUID
}

// ReconcileMenuRequest triggers a parent-link reconciliation pass for a menu.
type ReconcileMenuRequest struct {
	MenuID    uuid.UUID
	UpdatedBy uuid.UUID
}

// ReconcileResult reports how many sections were linked during reconciliation.
type ReconcileResult struct {
	Resolved  int
	Remaining int
}

// ResolveOptions selects the menu and locale for a resolution pass.
// Exactly one of MenuCode or Location must be set.
type ResolveOptions struct {
	MenuCode string
	Location string
	Locale   string
	// IncludeHidden keeps hidden sections in the snapshot, for
	// administrative listings.
	IncludeHidden bool
	// SkipCache bypasses the snapshot cache for this call.
	SkipCache bool
}

// ResolvedMenu is an immutable snapshot of a menu's visible sections
// after locale overlays and URL resolution. Callers must not mutate it.
type ResolvedMenu struct {
	MenuID     uuid.UUID         `json:"menu_id"`
	Code       string            `json:"code"`
	Location   string            `json:"location,omitempty"`
	Locale     string            `json:"locale,omitempty"`
	Sections   []ResolvedSection `json:"sections"`
	ResolvedAt time.Time         `json:"resolved_at"`
}

// ResolvedSection is a section ready for presentation. Title and URL
// carry the stored values verbatim unless a locale overlay replaced them.
type ResolvedSection struct {
	ID       uuid.UUID         `json:"id"`
	Ref      string            `json:"ref,omitempty"`
	Position int               `json:"position"`
	Kind     string            `json:"kind,omitempty"`
	Title    string            `json:"title"`
	URL      string            `json:"url"`
	Target   map[string]any    `json:"target,omitempty"`
	Icon     string            `json:"icon,omitempty"`
	Classes  []string          `json:"classes,omitempty"`
	Summary  string            `json:"summary,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
	Children []ResolvedSection `json:"children,omitempty"`
}

var (
	ErrMenuCodeRequired      = errors.New("sections: menu code is required")
	ErrMenuCodeInvalid       = errors.New("sections: menu code must contain only letters, numbers, hyphen, or underscore")
	ErrMenuCodeExists        = errors.New("sections: menu code already exists")
	ErrMenuNotFound          = errors.New("sections: menu not found")
	ErrMenuInUse             = errors.New("sections: menu is bound to an active render surface")
	ErrSectionNotFound       = errors.New("sections: section not found")
	ErrSectionParentInvalid  = errors.New("sections: parent section invalid")
	ErrSectionCycle          = errors.New("sections: hierarchy creates a cycle")
	ErrSectionPosition       = errors.New("sections: position must be zero or positive")
	ErrSectionKindInvalid    = errors.New("sections: section kind is invalid")
	ErrSectionTitleRequired  = errors.New("sections: section title is required")
	ErrSectionHasChildren    = errors.New("sections: section has children; enable cascade to delete")
	ErrSeparatorFields       = errors.New("sections: separators cannot carry titles, targets, or translations")
	ErrGroupFields           = errors.New("sections: groups cannot define urls or targets")
	ErrLocaleUnknown         = errors.New("sections: locale is not enabled")
	ErrTranslationExists     = errors.New("sections: translation already exists for locale")
	ErrTranslationText       = errors.New("sections: translation requires a title or title key")
	ErrResolveTargetRequired = errors.New("sections: resolve requires a menu code or location")
)

// MenuUsageResolver reports whether menus are currently bound to active
// render surfaces (theme slots, layout regions).
type MenuUsageResolver interface {
	ResolveMenuUsage(ctx context.Context, menuID uuid.UUID) ([]MenuUsageBinding, error)
}

// MenuUsageBinding describes an active menu reference inside a render surface.
type MenuUsageBinding struct {
	Consumer string
	Location string
}

// MenuInUseError surfaces guard-rail failures for menu deletions.
type MenuInUseError struct {
	MenuID   uuid.UUID
	Bindings []MenuUsageBinding
}

func (e *MenuInUseError) Error() string {
	if len(e.Bindings) == 0 {
		return fmt.Sprintf("menu %s is in use", e.MenuID)
	}

	parts := make([]string, 0, len(e.Bindings))
	for _, binding := range e.Bindings {
		if binding.Consumer != "" && binding.Location != "" {
			parts = append(parts, fmt.Sprintf("%s:%s", binding.Consumer, binding.Location))
		} else if binding.Consumer != "" {
			parts = append(parts, binding.Consumer)
		} else {
			parts = append(parts, binding.Location)
		}
	}
	return fmt.Sprintf("menu %s is in use (%s)", e.MenuID, strings.Join(parts, ", "))
}

func (e *MenuInUseError) Unwrap() error {
	return ErrMenuInUse
}

// IDGenerator produces unique identifiers.
// It receives the normalized AddSectionInput so callers can derive deterministic IDs from payload fields.
type IDGenerator func(AddSectionInput) uuid.UUID

// MenuIDDeriver produces deterministic menu UUIDs from the stable menu code.
type MenuIDDeriver func(code string) uuid.UUID

// ParentResolver maps caller-provided parent refs into UUIDs before validation.
type ParentResolver func(ctx context.Context, ref string, input AddSectionInput) (*uuid.UUID, error)

// ServiceOption configures section service behaviour.
type ServiceOption func(*service)

// WithClock overrides the internal time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the section ID generator.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithRecordIDGenerator overrides the ID generator used for non-section records (menus, translations).
// Section IDs remain governed by WithIDGenerator.
func WithRecordIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithMenuIDDeriver overrides menu ID derivation so callers can generate stable UUIDs from menu codes.
func WithMenuIDDeriver(deriver MenuIDDeriver) ServiceOption {
	return func(s *service) {
		if deriver != nil {
			s.menuIDDeriver = deriver
		}
	}
}

// WithParentResolver wires a resolver used to translate non-UUID parent references into UUIDs.
func WithParentResolver(resolver ParentResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.parentResolver = resolver
		}
	}
}

// WithActivityEmitter wires the activity emitter used for change records.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

// WithMenuUsageResolver injects a dependency that reports active menu bindings.
func WithMenuUsageResolver(resolver MenuUsageResolver) ServiceOption {
	return func(s *service) {
		if resolver != nil {
			s.usageResolver = resolver
		}
	}
}

// WithLocales restricts translation locales to the supplied codes.
// An empty list accepts any non-empty code.
func WithLocales(codes []string) ServiceOption {
	return func(s *service) {
		locales := make([]string, 0, len(codes))
		for _, code := range codes {
			if normalized := normalizeLocale(code); normalized != "" {
				locales = append(locales, normalized)
			}
		}
		s.locales = locales
	}
}

// WithSnapshotCache configures a cache provider and TTL for resolved menu snapshots.
func WithSnapshotCache(cache interfaces.CacheProvider, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithForgivingBootstrap enables order-independent seeding: missing
// parents are deferred as refs, and reconciliation runs automatically
// after writes and before resolution.
func WithForgivingBootstrap(enabled bool) ServiceOption {
	return func(s *service) {
		s.forgivingBootstrap = enabled
		if enabled {
			s.reconcileOnResolve = true
		}
	}
}

// WithReconcileOnResolve controls whether ResolveMenu runs reconciliation first.
func WithReconcileOnResolve(enabled bool) ServiceOption {
	return func(s *service) {
		s.reconcileOnResolve = enabled
	}
}

type service struct {
	menus              MenuRepository
	sections           SectionRepository
	translations       SectionTranslationRepository
	usageResolver      MenuUsageResolver
	parentResolver     ParentResolver
	now                func() time.Time
	id                 IDGenerator
	newID              func() uuid.UUID
	urlResolver        URLResolver
	activity           *activity.Emitter
	cache              interfaces.CacheProvider
	cacheTTL           time.Duration
	locales            []string
	forgivingBootstrap bool
	reconcileOnResolve bool
	menuIDDeriver      MenuIDDeriver
}

type cacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

// NewService constructs a section service instance.
func NewService(menuRepo MenuRepository, sectionRepo SectionRepository, trRepo SectionTranslationRepository, opts ...ServiceOption) Service {
	s := &service{
		menus:        menuRepo,
		sections:     sectionRepo,
		translations: trRepo,
		now:          time.Now,
		id:           func(AddSectionInput) uuid.UUID { return uuid.New() },
		newID:        uuid.New,
		cacheTTL:     time.Minute,
		activity:     activity.NewEmitter(nil, activity.Config{}),
	}

	s.urlResolver = &defaultURLResolver{service: s}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) emitActivity(ctx context.Context, actor uuid.UUID, verb, objectType string, objectID uuid.UUID, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() || objectID == uuid.Nil {
		return
	}
	event := activity.Event{
		Verb:       verb,
		ActorID:    actor.String(),
		ObjectType: objectType,
		ObjectID:   objectID.String(),
		Metadata:   meta,
	}
	_ = s.activity.Emit(ctx, event)
}

func (s *service) localeEnabled(code string) bool {
	if code == "" {
		return false
	}
	if len(s.locales) == 0 {
		return true
	}
	return slices.Contains(s.locales, code)
}

// CreateMenu registers a new menu ensuring code uniqueness.
func (s *service) CreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}
	if !isValidCode(code) {
		return nil, ErrMenuCodeInvalid
	}

	if _, err := s.menus.GetByCode(ctx, code); err == nil {
		return nil, ErrMenuCodeExists
	} else if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	now := s.now()
	menuID := s.nextID()
	if s.menuIDDeriver != nil {
		menuID = s.menuIDDeriver(code)
	} else if s.forgivingBootstrap {
		menuID = s.deterministicUUID("go-navigation:menu:" + code)
	}
	menu := &Menu{
		ID:          menuID,
		Code:        code,
		Location:    strings.TrimSpace(input.Location),
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		UpdatedBy:   input.UpdatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.menus.Create(ctx, menu)
	if err != nil {
		return nil, err
	}
	s.emitActivity(ctx, pickActor(input.CreatedBy, input.UpdatedBy), "create", "menu", created.ID, map[string]any{
		"code": created.Code,
	})
	return created, nil
}

// GetOrCreateMenu returns an existing menu for the provided code or creates it when missing.
func (s *service) GetOrCreateMenu(ctx context.Context, input CreateMenuInput) (*Menu, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}
	if !isValidCode(code) {
		return nil, ErrMenuCodeInvalid
	}

	existing, err := s.menus.GetByCode(ctx, code)
	if err == nil {
		location := strings.TrimSpace(input.Location)
		if location != "" && existing.Location != location {
			existing.Location = location
			existing.Description = input.Description
			existing.UpdatedBy = input.UpdatedBy
			existing.UpdatedAt = s.now()
			if _, updateErr := s.menus.Update(ctx, existing); updateErr == nil {
				return existing, nil
			}
		}
		return existing, nil
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	now := s.now()
	menuID := s.nextID()
	if s.menuIDDeriver != nil {
		menuID = s.menuIDDeriver(code)
	} else if s.forgivingBootstrap {
		menuID = s.deterministicUUID("go-navigation:menu:" + code)
	}
	menu := &Menu{
		ID:          menuID,
		Code:        code,
		Location:    strings.TrimSpace(input.Location),
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		UpdatedBy:   input.UpdatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.menus.Create(ctx, menu)
	if err == nil {
		s.emitActivity(ctx, pickActor(input.CreatedBy, input.UpdatedBy), "create", "menu", created.ID, map[string]any{
			"code": created.Code,
		})
		return created, nil
	}

	// If the create failed because another caller created the menu concurrently, return the winner.
	existing, getErr := s.menus.GetByCode(ctx, code)
	if getErr == nil {
		return existing, nil
	}

	return nil, err
}

// UpsertMenu creates or updates a menu by code.
func (s *service) UpsertMenu(ctx context.Context, input UpsertMenuInput) (*Menu, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}
	if !isValidCode(code) {
		return nil, ErrMenuCodeInvalid
	}

	existing, err := s.menus.GetByCode(ctx, code)
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		created, err := s.CreateMenu(ctx, CreateMenuInput{
			Code:        code,
			Location:    input.Location,
			Description: input.Description,
			CreatedBy:   input.Actor,
			UpdatedBy:   input.Actor,
		})
		if err != nil {
			return nil, err
		}
		return created, nil
	}

	// Update description if provided (can be nil to clear).
	existing.Description = input.Description
	if location := strings.TrimSpace(input.Location); location != "" {
		existing.Location = location
	}
	existing.UpdatedBy = input.Actor
	existing.UpdatedAt = s.now()
	updated, err := s.menus.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.emitActivity(ctx, input.Actor, "update", "menu", updated.ID, map[string]any{
		"code": updated.Code,
	})
	s.dropSnapshots(ctx, updated.Code)
	return updated, nil
}

// UpdateMenu applies partial changes to an existing menu.
func (s *service) UpdateMenu(ctx context.Context, input UpdateMenuInput) (*Menu, error) {
	if input.MenuID == uuid.Nil {
		return nil, ErrMenuNotFound
	}
	menu, err := s.menus.GetByID(ctx, input.MenuID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	if input.Location != nil {
		menu.Location = strings.TrimSpace(*input.Location)
	}
	if input.Description != nil {
		if *input.Description == "" {
			menu.Description = nil
		} else {
			desc := *input.Description
			menu.Description = &desc
		}
	}
	menu.UpdatedBy = input.UpdatedBy
	menu.UpdatedAt = s.now()

	updated, err := s.menus.Update(ctx, menu)
	if err != nil {
		return nil, err
	}
	s.emitActivity(ctx, input.UpdatedBy, "update", "menu", updated.ID, map[string]any{
		"code": updated.Code,
	})
	s.dropSnapshots(ctx, updated.Code)
	return updated, nil
}

// GetMenu retrieves a menu by ID including its hierarchical sections.
func (s *service) GetMenu(ctx context.Context, id uuid.UUID) (*Menu, error) {
	menu, err := s.menus.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrMenuNotFound) {
			return nil, err
		}
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return s.hydrateMenu(ctx, menu)
}

// GetMenuByCode retrieves a menu using its code.
func (s *service) GetMenuByCode(ctx context.Context, code string) (*Menu, error) {
	menu, err := s.menus.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return s.hydrateMenu(ctx, menu)
}

// GetMenuByLocation retrieves a menu using its assigned location.
func (s *service) GetMenuByLocation(ctx context.Context, location string) (*Menu, error) {
	menu, err := s.menus.GetByLocation(ctx, strings.TrimSpace(location))
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return s.hydrateMenu(ctx, menu)
}

// ListMenus returns all registered menus ordered by code.
func (s *service) ListMenus(ctx context.Context) ([]*Menu, error) {
	menus, err := s.menus.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(menus, func(a, b *Menu) int {
		return strings.Compare(a.Code, b.Code)
	})
	return menus, nil
}

// DeleteMenu removes a menu after enforcing usage guard rails.
func (s *service) DeleteMenu(ctx context.Context, req DeleteMenuRequest) error {
	if req.MenuID == uuid.Nil {
		return ErrMenuNotFound
	}

	menu, err := s.menus.GetByID(ctx, req.MenuID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrMenuNotFound
		}
		return err
	}

	if err := s.ensureMenuDeletionAllowed(ctx, menu.ID, req.Force); err != nil {
		return err
	}

	list, err := s.sections.ListByMenu(ctx, menu.ID)
	if err != nil {
		return err
	}
	for _, section := range list {
		if section.ParentID != nil {
			continue
		}
		if err := s.deleteSectionRecursive(ctx, section, req.DeletedBy, true); err != nil {
			return err
		}
	}

	// Safety net in case of corrupted hierarchies.
	remaining, err := s.sections.ListByMenu(ctx, menu.ID)
	if err != nil {
		return err
	}
	for _, section := range remaining {
		if err := s.deleteSectionRecursive(ctx, section, req.DeletedBy, true); err != nil {
			if errors.Is(err, ErrSectionNotFound) {
				continue
			}
			return err
		}
	}

	if err := s.menus.Delete(ctx, menu.ID); err != nil {
		return err
	}

	if err := s.InvalidateCache(ctx, menu.Code); err != nil {
		return err
	}
	s.emitActivity(ctx, req.DeletedBy, "delete", "menu", menu.ID, map[string]any{
		"code": menu.Code,
	})
	return nil
}

// ResetMenuByCode removes every section and translation while keeping the menu record.
func (s *service) ResetMenuByCode(ctx context.Context, code string, actor uuid.UUID, force bool) error {
	menuCode := strings.TrimSpace(code)
	if menuCode == "" {
		return ErrMenuCodeRequired
	}

	menu, err := s.menus.GetByCode(ctx, menuCode)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrMenuNotFound
		}
		return err
	}

	if err := s.ensureMenuDeletionAllowed(ctx, menu.ID, force); err != nil {
		return err
	}

	counts, err := s.resetMenuContents(ctx, menu.ID)
	if err != nil {
		return err
	}

	if err := s.InvalidateCache(ctx, menu.Code); err != nil {
		return err
	}

	s.emitActivity(ctx, actor, "reset", "menu", menu.ID, map[string]any{
		"code":                 menu.Code,
		"force":                force,
		"strategy":             "contents_only",
		"sections_deleted":     counts.SectionsDeleted,
		"translations_deleted": counts.TranslationsDeleted,
	})

	return nil
}

// AddSection registers a new section at the specified position. When a
// section with the same canonical identity already exists the call is
// idempotent: the existing section is returned with any new translations
// merged in.
func (s *service) AddSection(ctx context.Context, input AddSectionInput) (*Section, error) {
	menu, err := s.menus.GetByID(ctx, input.MenuID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	kind, err := normalizeKindValue(input.Kind)
	if err != nil {
		return nil, ErrSectionKindInvalid
	}

	if input.Position < 0 {
		return nil, ErrSectionPosition
	}

	target, err := normalizeTargetForKind(kind, input.Target)
	if err != nil {
		return nil, err
	}

	if err := validateSectionSemantics(sectionSemantics{
		Kind:             kind,
		Title:            input.Title,
		URL:              input.URL,
		Target:           target,
		Icon:             strings.TrimSpace(input.Icon),
		TranslationCount: len(input.Translations),
	}); err != nil {
		return nil, err
	}

	for _, tr := range input.Translations {
		normalized, err := normalizeSectionTranslationInput(kind, tr)
		if err != nil {
			return nil, err
		}
		if !s.localeEnabled(normalized.Locale) {
			return nil, ErrLocaleUnknown
		}
	}

	parentID, parentRef, err := s.resolveParent(ctx, input, s.forgivingBootstrap)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.sections.GetByID(ctx, *parentID)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrSectionParentInvalid
			}
			return nil, err
		}
		if parent.MenuID != menu.ID {
			return nil, ErrSectionParentInvalid
		}
		if normalizeKindOrDefault(parent.Kind) == SectionKindSeparator {
			return nil, ErrSectionParentInvalid
		}
	}

	normalizedInput := input
	normalizedInput.Kind = kind
	normalizedInput.Target = target
	normalizedInput.ParentID = parentID
	canonicalKey := deriveCanonicalKeyFromInput(kind, normalizedInput, parentID, parentRef)
	if trimmed := strings.TrimSpace(input.CanonicalKey); trimmed != "" {
		canonicalKey = &trimmed
	}
	if canonicalKey != nil {
		normalizedInput.CanonicalKey = *canonicalKey
	}
	sectionID := s.pickSectionID(normalizedInput)
	if s.forgivingBootstrap && input.ID == nil && canonicalKey != nil {
		sectionID = s.deterministicUUID("go-navigation:section:" + menu.ID.String() + ":" + *canonicalKey)
	}

	if canonicalKey != nil {
		existing, err := s.sections.GetByMenuAndCanonicalKey(ctx, menu.ID, *canonicalKey)
		if err == nil && existing != nil {
			merged, err := s.mergeTranslations(ctx, existing, kind, input.Translations)
			if err != nil {
				return nil, err
			}
			s.dropSnapshots(ctx, menu.Code)
			return merged, nil
		}
		var notFound *NotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Re-index siblings to make room.
	siblings, err := s.fetchSiblings(ctx, menu.ID, parentID)
	if err != nil {
		return nil, err
	}
	insertAt := input.Position
	if insertAt > len(siblings) {
		insertAt = len(siblings)
	}
	if err := s.shiftSiblings(ctx, siblings, insertAt); err != nil {
		return nil, err
	}

	now := s.now()
	section := &Section{
		ID:           sectionID,
		MenuID:       menu.ID,
		ParentID:     parentID,
		ParentRef:    normalizeParentRefPointer(parentRef),
		Ref:          input.Ref,
		Position:     insertAt,
		Kind:         kind,
		Title:        input.Title,
		URL:          input.URL,
		Target:       ensureNonNilTarget(target),
		Icon:         strings.TrimSpace(input.Icon),
		Classes:      cloneStringSlice(input.Classes),
		Summary:      input.Summary,
		Hidden:       input.Hidden,
		Metadata:     ensureMapAny(input.Metadata),
		CreatedBy:    input.CreatedBy,
		UpdatedBy:    input.UpdatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
		CanonicalKey: canonicalKey,
	}

	created, err := s.sections.Create(ctx, section)
	if err != nil {
		return nil, err
	}

	var trs []*SectionTranslation
	if kind != SectionKindSeparator && len(input.Translations) > 0 {
		trs, err = s.attachTranslations(ctx, created.ID, kind, input.Translations)
		if err != nil {
			return nil, err
		}
	}
	created.Translations = trs
	s.emitActivity(ctx, pickActor(input.CreatedBy, input.UpdatedBy), "create", "section", created.ID, map[string]any{
		"menu_id":   created.MenuID.String(),
		"menu_code": menu.Code,
		"ref":       created.Ref,
		"position":  created.Position,
		"parent_id": created.ParentID,
		"locales":   collectLocalesFromInputs(input.Translations),
	})

	if s.forgivingBootstrap {
		actor := pickActor(input.UpdatedBy, input.CreatedBy)
		if _, err := s.ReconcileMenu(ctx, ReconcileMenuRequest{MenuID: menu.ID, UpdatedBy: actor}); err != nil {
			return nil, err
		}
	}
	s.dropSnapshots(ctx, menu.Code)
	return created, nil
}

// UpsertSection creates or reconciles a section using canonical identity
// (menu + ref). Unlike AddSection, an existing match is updated to follow
// the supplied definition, including its parent link and position.
func (s *service) UpsertSection(ctx context.Context, input UpsertSectionInput) (*Section, error) {
	actor := input.Actor

	var menu *Menu
	if input.MenuID != nil && *input.MenuID != uuid.Nil {
		record, err := s.menus.GetByID(ctx, *input.MenuID)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrMenuNotFound
			}
			return nil, err
		}
		menu = record
	} else {
		code := strings.TrimSpace(input.MenuCode)
		if code == "" {
			return nil, ErrMenuCodeRequired
		}
		record, err := s.GetOrCreateMenu(ctx, CreateMenuInput{
			Code:        code,
			Description: input.MenuDescription,
			CreatedBy:   actor,
			UpdatedBy:   actor,
		})
		if err != nil {
			return nil, err
		}
		menu = record
	}

	kind, err := normalizeKindValue(input.Kind)
	if err != nil {
		return nil, ErrSectionKindInvalid
	}

	add := AddSectionInput{
		MenuID:       menu.ID,
		ParentID:     input.ParentID,
		ParentRef:    input.ParentRef,
		Ref:          input.Ref,
		CanonicalKey: input.CanonicalKey,
		Kind:         kind,
		Title:        input.Title,
		URL:          input.URL,
		Target:       input.Target,
		Icon:         input.Icon,
		Classes:      input.Classes,
		Summary:      input.Summary,
		Hidden:       input.Hidden,
		Metadata:     input.Metadata,
		CreatedBy:    actor,
		UpdatedBy:    actor,
		Translations: input.Translations,
	}

	canonicalKey := deriveCanonicalKeyFromInput(kind, add, input.ParentID, nil)
	if trimmed := strings.TrimSpace(input.CanonicalKey); trimmed != "" {
		canonicalKey = &trimmed
	}

	if canonicalKey != nil {
		existing, err := s.sections.GetByMenuAndCanonicalKey(ctx, menu.ID, *canonicalKey)
		if err == nil && existing != nil {
			return s.applyUpsert(ctx, menu, existing, kind, input)
		}
		var notFound *NotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// clamp-to-append default for new sections when Position is nil
	position := int(^uint(0) >> 1)
	if input.Position != nil {
		position = *input.Position
	}
	add.Position = position

	return s.AddSection(ctx, add)
}

// applyUpsert reconciles an existing section with an upsert definition.
func (s *service) applyUpsert(ctx context.Context, menu *Menu, existing *Section, kind string, input UpsertSectionInput) (*Section, error) {
	target, err := normalizeTargetForKind(kind, input.Target)
	if err != nil {
		return nil, err
	}

	dirty := false
	if existing.Ref != input.Ref && input.Ref != "" {
		existing.Ref = input.Ref
		dirty = true
	}
	if normalizeKindOrDefault(existing.Kind) != kind {
		existing.Kind = kind
		dirty = true
	}
	if input.Title != "" && existing.Title != input.Title {
		existing.Title = input.Title
		dirty = true
	}
	if input.URL != "" && existing.URL != input.URL {
		existing.URL = input.URL
		dirty = true
	}
	if input.Target != nil {
		existing.Target = ensureNonNilTarget(target)
		dirty = true
	}
	if icon := strings.TrimSpace(input.Icon); icon != "" && existing.Icon != icon {
		existing.Icon = icon
		dirty = true
	}
	if input.Classes != nil {
		existing.Classes = cloneStringSlice(input.Classes)
		dirty = true
	}
	if input.Summary != "" && existing.Summary != input.Summary {
		existing.Summary = input.Summary
		dirty = true
	}
	if existing.Hidden != input.Hidden {
		existing.Hidden = input.Hidden
		dirty = true
	}
	if input.Metadata != nil {
		existing.Metadata = ensureMapAny(input.Metadata)
		dirty = true
	}

	if dirty {
		existing.CanonicalKey = deriveCanonicalKeyFromSection(existing)
		existing.UpdatedBy = input.Actor
		existing.UpdatedAt = s.now()
		updated, err := s.sections.Update(ctx, existing)
		if err != nil {
			return nil, err
		}
		existing = updated
	}

	merged, err := s.mergeTranslations(ctx, existing, kind, input.Translations)
	if err != nil {
		return nil, err
	}
	existing = merged

	desiredParent, deferredRef, err := s.resolveParent(ctx, AddSectionInput{
		MenuID:    menu.ID,
		ParentID:  input.ParentID,
		ParentRef: input.ParentRef,
	}, s.forgivingBootstrap)
	if err != nil {
		return nil, err
	}

	switch {
	case deferredRef != nil:
		// Parent not created yet; record the ref and let reconciliation link it.
		if existing.ParentID == nil {
			existing.ParentRef = normalizeParentRefPointer(deferredRef)
			existing.UpdatedBy = input.Actor
			existing.UpdatedAt = s.now()
			updated, err := s.sections.Update(ctx, existing)
			if err != nil {
				return nil, err
			}
			existing = updated
		}
	case !uuidPtrEqual(existing.ParentID, desiredParent) || input.Position != nil:
		moved, err := s.MoveSection(ctx, MoveSectionInput{
			SectionID: existing.ID,
			ParentID:  desiredParent,
			Position:  input.Position,
			UpdatedBy: input.Actor,
		})
		if err != nil {
			return nil, err
		}
		existing = moved
	}

	s.emitActivity(ctx, input.Actor, "update", "section", existing.ID, map[string]any{
		"menu_id":   existing.MenuID.String(),
		"menu_code": menu.Code,
		"ref":       existing.Ref,
		"position":  existing.Position,
		"parent_id": existing.ParentID,
	})
	s.dropSnapshots(ctx, menu.Code)
	return existing, nil
}

func (s *service) resetMenuContents(ctx context.Context, menuID uuid.UUID) (ResetMenuCounts, error) {
	if resetter, ok := s.sections.(menuContentsResetter); ok {
		sectionsDeleted, translationsDeleted, err := resetter.ResetMenuContents(ctx, menuID)
		if err != nil {
			return ResetMenuCounts{}, err
		}
		return ResetMenuCounts{SectionsDeleted: sectionsDeleted, TranslationsDeleted: translationsDeleted}, nil
	}

	list, err := s.sections.ListByMenu(ctx, menuID)
	if err != nil {
		return ResetMenuCounts{}, err
	}

	counts := ResetMenuCounts{}
	for _, section := range list {
		translations, err := s.translations.ListBySection(ctx, section.ID)
		if err != nil {
			return counts, err
		}
		for _, tr := range translations {
			if err := s.translations.Delete(ctx, tr.ID); err != nil {
				return counts, err
			}
			counts.TranslationsDeleted++
		}
		if err := s.sections.Delete(ctx, section.ID); err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return counts, err
		}
		counts.SectionsDeleted++
	}
	return counts, nil
}

type menuContentsResetter interface {
	ResetMenuContents(ctx context.Context, menuID uuid.UUID) (sectionsDeleted int, translationsDeleted int, err error)
}

// UpdateSection applies partial changes to a section.
func (s *service) UpdateSection(ctx context.Context, input UpdateSectionInput) (*Section, error) {
	if input.SectionID == uuid.Nil {
		return nil, ErrSectionNotFound
	}

	section, err := s.sections.GetByID(ctx, input.SectionID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	originalPosition := section.Position
	var originalParent *uuid.UUID
	if section.ParentID != nil {
		parentCopy := *section.ParentID
		originalParent = &parentCopy
	}

	currentKind := normalizeKindOrDefault(section.Kind)
	targetKind := currentKind
	if input.Kind != nil {
		var kindErr error
		targetKind, kindErr = normalizeKindValue(*input.Kind)
		if kindErr != nil {
			return nil, ErrSectionKindInvalid
		}
	}

	translations, err := s.translations.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	section.Translations = translations
	if section.Metadata == nil {
		section.Metadata = map[string]any{}
	}

	if input.Ref != nil {
		section.Ref = *input.Ref
	}
	if input.Title != nil {
		section.Title = *input.Title
	}
	if input.URL != nil {
		section.URL = *input.URL
	}

	if input.Target != nil {
		target, err := normalizeTargetForKind(targetKind, input.Target)
		if err != nil {
			return nil, err
		}
		section.Target = target
	} else if targetKind != currentKind && targetKind != SectionKindLink {
		section.Target = map[string]any{}
	}

	if input.Icon != nil {
		section.Icon = strings.TrimSpace(*input.Icon)
	} else if targetKind == SectionKindSeparator {
		section.Icon = ""
	}

	if input.Classes != nil {
		section.Classes = cloneStringSlice(input.Classes)
	}
	if input.Summary != nil {
		section.Summary = *input.Summary
	}
	if input.Hidden != nil {
		section.Hidden = *input.Hidden
	}
	if input.Metadata != nil {
		section.Metadata = ensureMapAny(input.Metadata)
	}

	if input.Position != nil {
		if *input.Position < 0 {
			return nil, ErrSectionPosition
		}
		siblings, err := s.fetchSiblings(ctx, section.MenuID, section.ParentID)
		if err != nil {
			return nil, err
		}
		desired := *input.Position
		if desired > len(siblings) {
			desired = len(siblings)
		}
		if err := s.repositionSection(ctx, section, siblings, desired); err != nil {
			return nil, err
		}
		section.Position = desired
	}

	if input.ParentID != nil {
		parentID := input.ParentID
		if *parentID == uuid.Nil {
			parentID = nil
		}
		if parentID != nil {
			if *parentID == section.ID {
				return nil, ErrSectionCycle
			}
			parent, err := s.sections.GetByID(ctx, *parentID)
			if err != nil {
				var notFound *NotFoundError
				if errors.As(err, &notFound) {
					return nil, ErrSectionParentInvalid
				}
				return nil, err
			}
			if parent.MenuID != section.MenuID {
				return nil, ErrSectionParentInvalid
			}
			if normalizeKindOrDefault(parent.Kind) == SectionKindSeparator {
				return nil, ErrSectionParentInvalid
			}
			if err := s.ensureNoCycle(ctx, section, parentID); err != nil {
				return nil, err
			}
		}
		section.ParentID = parentID
	}

	if targetKind == SectionKindSeparator {
		children, err := s.sections.ListChildren(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		if len(children) > 0 {
			return nil, ErrSeparatorFields
		}
	}

	if err := validateSectionSemantics(sectionSemantics{
		Kind:             targetKind,
		Title:            section.Title,
		URL:              section.URL,
		Target:           section.Target,
		Icon:             section.Icon,
		TranslationCount: len(section.Translations),
	}); err != nil {
		return nil, err
	}

	section.Kind = targetKind
	section.Target = ensureNonNilTarget(section.Target)
	section.Metadata = ensureMapAny(section.Metadata)
	section.CanonicalKey = deriveCanonicalKeyFromSection(section)
	section.UpdatedBy = input.UpdatedBy
	section.UpdatedAt = s.now()
	updated, err := s.sections.Update(ctx, section)
	if err != nil {
		return nil, err
	}

	updated.Translations = translations

	verb := "update"
	if originalParent == nil && updated.ParentID != nil ||
		originalParent != nil && (updated.ParentID == nil || *originalParent != *updated.ParentID) ||
		originalPosition != updated.Position {
		verb = "reorder"
	}

	s.emitActivity(ctx, input.UpdatedBy, verb, "section", updated.ID, map[string]any{
		"menu_id":   updated.MenuID.String(),
		"ref":       updated.Ref,
		"position":  updated.Position,
		"parent_id": updated.ParentID,
		"locales":   collectLocalesFromTranslations(updated.Translations),
	})

	if menu, err := s.menus.GetByID(ctx, updated.MenuID); err == nil && menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}

	return updated, nil
}

// DeleteSection removes the requested section, optionally cascading to children.
func (s *service) DeleteSection(ctx context.Context, req DeleteSectionRequest) error {
	if req.SectionID == uuid.Nil {
		return ErrSectionNotFound
	}

	section, err := s.sections.GetByID(ctx, req.SectionID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrSectionNotFound
		}
		return err
	}

	if err := s.deleteSectionRecursive(ctx, section, req.DeletedBy, req.CascadeChildren); err != nil {
		return err
	}

	s.emitActivity(ctx, req.DeletedBy, "delete", "section", section.ID, map[string]any{
		"menu_id": section.MenuID.String(),
		"ref":     section.Ref,
	})

	if menu, err := s.menus.GetByID(ctx, section.MenuID); err == nil && menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}
	return nil
}

// GetSection retrieves a section by ID including its translations.
func (s *service) GetSection(ctx context.Context, id uuid.UUID) (*Section, error) {
	if id == uuid.Nil {
		return nil, ErrSectionNotFound
	}
	section, err := s.sections.GetByID(ctx, id)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	translations, err := s.translations.ListBySection(ctx, section.ID)
	if err != nil {
		return nil, err
	}
	section.Translations = translations
	return section, nil
}

// GetSectionByRef retrieves a section using its upstream ref. Refs are
// matched exactly; no trimming or case folding is applied.
func (s *service) GetSectionByRef(ctx context.Context, menuCode string, ref string) (*Section, error) {
	code := strings.TrimSpace(menuCode)
	if code == "" {
		return nil, ErrMenuCodeRequired
	}
	menu, err := s.menus.GetByCode(ctx, code)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	if ref == "" {
		return nil, ErrSectionNotFound
	}

	section, err := s.sections.GetByMenuAndRef(ctx, menu.ID, ref)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return section, nil
}

// ListSections returns a menu's sections as a flat list ordered by
// parent and position.
func (s *service) ListSections(ctx context.Context, menuID uuid.UUID) ([]*Section, error) {
	if menuID == uuid.Nil {
		return nil, ErrMenuNotFound
	}
	if _, err := s.menus.GetByID(ctx, menuID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	list, err := s.sections.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b *Section) int {
		if key := strings.Compare(parentKey(a.ParentID), parentKey(b.ParentID)); key != 0 {
			return key
		}
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return list, nil
}

// ReorderSections applies a complete hierarchical ordering to a menu.
func (s *service) ReorderSections(ctx context.Context, input ReorderSectionsInput) ([]*Section, error) {
	if input.MenuID == uuid.Nil {
		return nil, ErrMenuNotFound
	}

	if _, err := s.menus.GetByID(ctx, input.MenuID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	list, err := s.sections.ListByMenu(ctx, input.MenuID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	if len(input.Sections) != len(list) {
		return nil, fmt.Errorf("sections: reorder requires %d sections, got %d", len(list), len(input.Sections))
	}

	index := make(map[uuid.UUID]*Section, len(list))
	for _, section := range list {
		index[section.ID] = section
	}

	parentMap := make(map[uuid.UUID]*uuid.UUID, len(list))
	positionMap := make(map[string][]SectionOrder)
	seen := make(map[uuid.UUID]struct{}, len(list))

	for _, entry := range input.Sections {
		if entry.SectionID == uuid.Nil {
			return nil, ErrSectionNotFound
		}
		if entry.Position < 0 {
			return nil, ErrSectionPosition
		}
		if _, ok := index[entry.SectionID]; !ok {
			return nil, ErrSectionNotFound
		}
		if entry.ParentID != nil {
			if *entry.ParentID == entry.SectionID {
				return nil, ErrSectionCycle
			}
			parent, ok := index[*entry.ParentID]
			if !ok || parent.MenuID != input.MenuID {
				return nil, ErrSectionParentInvalid
			}
			if normalizeKindOrDefault(parent.Kind) == SectionKindSeparator {
				return nil, ErrSectionParentInvalid
			}
		}

		parentMap[entry.SectionID] = entry.ParentID
		key := parentKey(entry.ParentID)
		positionMap[key] = append(positionMap[key], entry)
		if _, dup := seen[entry.SectionID]; dup {
			return nil, fmt.Errorf("sections: duplicate section %s in reorder request", entry.SectionID)
		}
		seen[entry.SectionID] = struct{}{}
	}

	if hasCycle(parentMap) {
		return nil, ErrSectionCycle
	}

	dirty := make([]*Section, 0, len(list))
	for key, entries := range positionMap {
		slices.SortFunc(entries, func(a, b SectionOrder) int {
			return a.Position - b.Position
		})
		for idx, entry := range entries {
			section := index[entry.SectionID]
			parent := normalizeUUIDPtr(entry.ParentID)
			needsUpdate := section.Position != idx || !uuidPtrEqual(section.ParentID, parent)
			section.ParentID = parent
			section.Position = idx
			section.UpdatedAt = s.now()
			section.UpdatedBy = input.UpdatedBy
			if needsUpdate {
				dirty = append(dirty, section)
			}
		}
		positionMap[key] = entries
	}

	if len(dirty) > 0 {
		if err := s.sections.BulkUpdateHierarchy(ctx, dirty); err != nil {
			return nil, err
		}
	}

	// Return sections ordered by parent and position for convenience.
	result := slices.Clone(list)
	slices.SortFunc(result, func(a, b *Section) int {
		if parentKey(a.ParentID) == parentKey(b.ParentID) {
			return a.Position - b.Position
		}
		return strings.Compare(parentKey(a.ParentID), parentKey(b.ParentID))
	})

	s.emitActivity(ctx, input.UpdatedBy, "reorder", "menu", input.MenuID, map[string]any{
		"menu_id": input.MenuID.String(),
		"count":   len(result),
	})

	if menu, err := s.menus.GetByID(ctx, input.MenuID); err == nil && menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}

	return result, nil
}

// MoveSection reparents a section, rejecting moves that would introduce a cycle.
func (s *service) MoveSection(ctx context.Context, input MoveSectionInput) (*Section, error) {
	if input.SectionID == uuid.Nil {
		return nil, ErrSectionNotFound
	}

	section, err := s.sections.GetByID(ctx, input.SectionID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}

	newParent := normalizeUUIDPtr(input.ParentID)
	if newParent != nil && *newParent == uuid.Nil {
		newParent = nil
	}

	if newParent != nil {
		if *newParent == section.ID {
			return nil, ErrSectionCycle
		}
		parent, err := s.sections.GetByID(ctx, *newParent)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrSectionParentInvalid
			}
			return nil, err
		}
		if parent.MenuID != section.MenuID {
			return nil, ErrSectionParentInvalid
		}
		if normalizeKindOrDefault(parent.Kind) == SectionKindSeparator {
			return nil, ErrSectionParentInvalid
		}
		if err := s.ensureNoCycle(ctx, section, newParent); err != nil {
			return nil, err
		}
	}

	oldParent := normalizeUUIDPtr(section.ParentID)
	sameParent := uuidPtrEqual(oldParent, newParent)

	if sameParent {
		if input.Position == nil {
			return section, nil
		}
		if *input.Position < 0 {
			return nil, ErrSectionPosition
		}
		siblings, err := s.fetchSiblings(ctx, section.MenuID, oldParent)
		if err != nil {
			return nil, err
		}
		desired := *input.Position
		if desired > len(siblings) {
			desired = len(siblings)
		}
		if err := s.repositionSection(ctx, section, siblings, desired); err != nil {
			return nil, err
		}
		section.Position = desired
	} else {
		siblings, err := s.fetchSiblings(ctx, section.MenuID, newParent)
		if err != nil {
			return nil, err
		}
		desired := len(siblings)
		if input.Position != nil {
			if *input.Position < 0 {
				return nil, ErrSectionPosition
			}
			desired = *input.Position
			if desired > len(siblings) {
				desired = len(siblings)
			}
		}
		if err := s.shiftSiblings(ctx, siblings, desired); err != nil {
			return nil, err
		}
		section.ParentID = newParent
		section.ParentRef = nil
		section.Position = desired
	}

	section.CanonicalKey = deriveCanonicalKeyFromSection(section)
	section.UpdatedBy = input.UpdatedBy
	section.UpdatedAt = s.now()
	updated, err := s.sections.Update(ctx, section)
	if err != nil {
		return nil, err
	}

	if !sameParent {
		if err := s.compactSiblingPositions(ctx, updated.MenuID, oldParent, input.UpdatedBy); err != nil {
			return nil, err
		}
	}

	s.emitActivity(ctx, input.UpdatedBy, "move", "section", updated.ID, map[string]any{
		"menu_id":   updated.MenuID.String(),
		"ref":       updated.Ref,
		"position":  updated.Position,
		"parent_id": updated.ParentID,
	})

	if menu, err := s.menus.GetByID(ctx, updated.MenuID); err == nil && menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}

	return updated, nil
}

// ensureNoCycle verifies that linking section under parentID keeps the
// menu's hierarchy acyclic.
func (s *service) ensureNoCycle(ctx context.Context, section *Section, parentID *uuid.UUID) error {
	all, err := s.sections.ListByMenu(ctx, section.MenuID)
	if err != nil {
		return err
	}
	parents := make(map[uuid.UUID]*uuid.UUID, len(all))
	for _, candidate := range all {
		if candidate == nil {
			continue
		}
		if candidate.ID == section.ID {
			parents[candidate.ID] = normalizeUUIDPtr(parentID)
			continue
		}
		parents[candidate.ID] = normalizeUUIDPtr(candidate.ParentID)
	}
	if hasCycle(parents) {
		return ErrSectionCycle
	}
	return nil
}

// ReconcileMenu resolves deferred parent references for a menu.
func (s *service) ReconcileMenu(ctx context.Context, req ReconcileMenuRequest) (*ReconcileResult, error) {
	if req.MenuID == uuid.Nil {
		return nil, ErrMenuNotFound
	}
	if _, err := s.menus.GetByID(ctx, req.MenuID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}

	list, err := s.sections.ListByMenu(ctx, req.MenuID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &ReconcileResult{}, nil
	}

	byID := make(map[uuid.UUID]*Section, len(list))
	byRef := make(map[string]*Section, len(list))
	byCanonical := make(map[string]*Section, len(list))
	parents := make(map[uuid.UUID]*uuid.UUID, len(list))

	for _, section := range list {
		if section == nil {
			continue
		}
		byID[section.ID] = section
		if section.Ref != "" {
			byRef[section.Ref] = section
		}
		if section.CanonicalKey != nil && strings.TrimSpace(*section.CanonicalKey) != "" {
			byCanonical[strings.TrimSpace(*section.CanonicalKey)] = section
		}
		if section.ParentID != nil {
			parent := *section.ParentID
			parents[section.ID] = &parent
		} else {
			parents[section.ID] = nil
		}
	}

	var resolved int
	touched := make(map[uuid.UUID]struct{})
	affectedParents := make(map[string]struct{})
	for _, section := range list {
		if section == nil || section.ParentID != nil || section.ParentRef == nil {
			continue
		}
		ref := strings.TrimSpace(*section.ParentRef)
		if ref == "" {
			continue
		}

		parent := resolveSectionRef(ref, byID, byRef, byCanonical)
		if parent == nil {
			continue
		}
		if parent.ID == section.ID {
			return nil, ErrSectionCycle
		}
		if normalizeKindOrDefault(parent.Kind) == SectionKindSeparator {
			return nil, ErrSectionParentInvalid
		}

		parentID := parent.ID
		affectedParents[parentKey(section.ParentID)] = struct{}{}
		affectedParents[parentKey(&parentID)] = struct{}{}
		parents[section.ID] = &parentID
		section.ParentID = &parentID
		section.ParentRef = nil
		touched[section.ID] = struct{}{}
		resolved++
	}

	if resolved == 0 {
		remaining := countPendingParentRefs(list)
		return &ReconcileResult{Resolved: 0, Remaining: remaining}, nil
	}

	if hasCycle(parents) {
		return nil, ErrSectionCycle
	}

	dirty := normalizePositionsForParents(list, affectedParents, touched)
	now := s.now()
	for _, section := range dirty {
		section.UpdatedAt = now
		section.UpdatedBy = req.UpdatedBy
	}

	if err := s.sections.BulkUpdateHierarchy(ctx, dirty); err != nil {
		return nil, err
	}
	if err := s.InvalidateCache(ctx, ""); err != nil {
		return nil, err
	}

	remaining := countPendingParentRefs(list)
	return &ReconcileResult{Resolved: resolved, Remaining: remaining}, nil
}

// UpsertSectionTranslation adds or replaces locale overrides for a section.
func (s *service) UpsertSectionTranslation(ctx context.Context, input UpsertSectionTranslationInput) (*SectionTranslation, error) {
	if input.SectionID == uuid.Nil {
		return nil, ErrSectionNotFound
	}

	section, err := s.sections.GetByID(ctx, input.SectionID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	kind := normalizeKindOrDefault(section.Kind)
	if kind == SectionKindSeparator {
		return nil, ErrSeparatorFields
	}

	normalized, err := normalizeSectionTranslationInput(kind, SectionTranslationInput{
		Locale:      input.Locale,
		Title:       input.Title,
		TitleKey:    input.TitleKey,
		URLOverride: input.URLOverride,
		Summary:     input.Summary,
	})
	if err != nil {
		return nil, err
	}
	if !s.localeEnabled(normalized.Locale) {
		return nil, ErrLocaleUnknown
	}

	menu, _ := s.menus.GetByID(ctx, section.MenuID)

	now := s.now()
	existing, err := s.translations.GetBySectionAndLocale(ctx, section.ID, normalized.Locale)
	if err == nil && existing != nil {
		existing.Title = normalized.Title
		existing.TitleKey = normalized.TitleKey
		existing.URLOverride = normalized.URLOverride
		existing.Summary = normalized.Summary
		existing.UpdatedAt = now
		updated, err := s.translations.Update(ctx, existing)
		if err != nil {
			return nil, err
		}
		s.emitTranslationActivity(ctx, "update", section, menu, updated, normalized)
		if menu != nil {
			s.dropSnapshots(ctx, menu.Code)
		}
		return updated, nil
	}
	var notFound *NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}

	translationID := s.nextID()
	if s.forgivingBootstrap {
		translationID = s.deterministicUUID("go-navigation:section_translation:" + section.ID.String() + ":" + normalized.Locale)
	}
	record := &SectionTranslation{
		ID:          translationID,
		SectionID:   section.ID,
		LocaleCode:  normalized.Locale,
		Title:       normalized.Title,
		TitleKey:    normalized.TitleKey,
		URLOverride: normalized.URLOverride,
		Summary:     normalized.Summary,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.translations.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.emitTranslationActivity(ctx, "create", section, menu, created, normalized)
	if menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}
	return created, nil
}

func (s *service) emitTranslationActivity(ctx context.Context, verb string, section *Section, menu *Menu, tr *SectionTranslation, normalized normalizedSectionTranslation) {
	meta := map[string]any{
		"menu_id":    section.MenuID.String(),
		"section_id": section.ID.String(),
		"locale":     normalized.Locale,
	}
	if menu != nil {
		meta["menu_code"] = menu.Code
	}
	if normalized.Title != "" {
		meta["title"] = normalized.Title
	}
	if normalized.TitleKey != "" {
		meta["title_key"] = normalized.TitleKey
	}
	s.emitActivity(ctx, pickActor(section.UpdatedBy, section.CreatedBy), verb, "section_translation", tr.ID, meta)
}

// DeleteSectionTranslation removes the locale overrides for a section.
func (s *service) DeleteSectionTranslation(ctx context.Context, sectionID uuid.UUID, locale string) error {
	if sectionID == uuid.Nil {
		return ErrSectionNotFound
	}
	normalized := normalizeLocale(locale)
	if normalized == "" {
		return ErrLocaleUnknown
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrSectionNotFound
		}
		return err
	}

	translation, err := s.translations.GetBySectionAndLocale(ctx, section.ID, normalized)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrSectionNotFound
		}
		return err
	}

	if err := s.translations.Delete(ctx, translation.ID); err != nil {
		return err
	}

	s.emitActivity(ctx, pickActor(section.UpdatedBy, section.CreatedBy), "delete", "section_translation", translation.ID, map[string]any{
		"section_id": section.ID.String(),
		"locale":     normalized,
	})

	if menu, err := s.menus.GetByID(ctx, section.MenuID); err == nil && menu != nil {
		s.dropSnapshots(ctx, menu.Code)
	}
	return nil
}

// ListSectionTranslations returns every locale override stored for a section.
func (s *service) ListSectionTranslations(ctx context.Context, sectionID uuid.UUID) ([]*SectionTranslation, error) {
	if sectionID == uuid.Nil {
		return nil, ErrSectionNotFound
	}
	if _, err := s.sections.GetByID(ctx, sectionID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	return s.translations.ListBySection(ctx, sectionID)
}

// ResolveMenu builds the presentation snapshot for a menu: visible
// sections in order, locale overlays applied, URLs resolved.
func (s *service) ResolveMenu(ctx context.Context, opts ResolveOptions) (*ResolvedMenu, error) {
	code := strings.TrimSpace(opts.MenuCode)
	location := strings.TrimSpace(opts.Location)
	if code == "" && location == "" {
		return nil, ErrResolveTargetRequired
	}

	if code == "" {
		menu, err := s.menus.GetByLocation(ctx, location)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				return nil, ErrMenuNotFound
			}
			return nil, err
		}
		code = menu.Code
	}

	if s.forgivingBootstrap && s.reconcileOnResolve {
		if record, err := s.menus.GetByCode(ctx, code); err == nil && record != nil {
			if _, err := s.ReconcileMenu(ctx, ReconcileMenuRequest{MenuID: record.ID, UpdatedBy: uuid.Nil}); err != nil {
				return nil, err
			}
		}
	}

	locale := normalizeLocale(opts.Locale)

	if !opts.SkipCache {
		if snapshot, ok := s.cachedSnapshot(ctx, code, locale, opts.IncludeHidden); ok {
			return snapshot, nil
		}
	}

	menu, err := s.GetMenuByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedMenu{
		MenuID:     menu.ID,
		Code:       menu.Code,
		Location:   menu.Location,
		Locale:     locale,
		ResolvedAt: s.now().UTC(),
	}
	resolved.Sections = s.resolveSections(ctx, menu.Code, menu.Sections, locale, opts.IncludeHidden)

	if !opts.SkipCache {
		s.storeSnapshot(ctx, code, locale, opts.IncludeHidden, resolved)
	}
	return resolved, nil
}

func (s *service) resolveSections(ctx context.Context, menuCode string, list []*Section, locale string, includeHidden bool) []ResolvedSection {
	if len(list) == 0 {
		return nil
	}
	out := make([]ResolvedSection, 0, len(list))
	for _, section := range list {
		if section == nil || section.DeletedAt != nil {
			continue
		}
		if section.Hidden && !includeHidden {
			continue
		}
		node := s.resolveSection(ctx, menuCode, section, locale)
		node.Children = s.resolveSections(ctx, menuCode, section.Children, locale, includeHidden)
		if node.Kind == SectionKindGroup && len(node.Children) == 0 && isEffectivelyEmptyGroup(node) {
			continue
		}
		out = append(out, node)
	}
	return compactSeparators(out)
}

func (s *service) resolveSection(ctx context.Context, menuCode string, section *Section, locale string) ResolvedSection {
	node := ResolvedSection{
		ID:       section.ID,
		Ref:      section.Ref,
		Position: section.Position,
		Kind:     normalizeKindOrDefault(section.Kind),
		Title:    section.Title,
		URL:      section.URL,
		Icon:     strings.TrimSpace(section.Icon),
		Classes:  cloneStringSlice(section.Classes),
		Summary:  section.Summary,
		Metadata: cloneMapAny(section.Metadata),
	}
	if section.Target != nil {
		node.Target = maps.Clone(section.Target)
	}

	if node.Kind == SectionKindSeparator {
		return node
	}

	if translation := selectTranslation(section.Translations, locale); translation != nil {
		if translation.Title != "" {
			node.Title = translation.Title
		} else if translation.TitleKey != "" {
			node.Title = translation.TitleKey
		}
		if translation.Summary != "" {
			node.Summary = translation.Summary
		}
		if node.Kind == SectionKindLink && translation.URLOverride != nil {
			if url := strings.TrimSpace(*translation.URLOverride); url != "" {
				node.URL = url
			}
		}
	}

	if node.Kind == SectionKindLink && node.URL == "" {
		node.URL = s.resolveSectionURL(ctx, menuCode, section, locale)
	}

	return node
}

func (s *service) resolveSectionURL(ctx context.Context, menuCode string, section *Section, locale string) string {
	if section == nil {
		return ""
	}
	if normalizeKindOrDefault(section.Kind) != SectionKindLink {
		return ""
	}
	if s.urlResolver != nil {
		url, err := s.urlResolver.Resolve(ctx, ResolveRequest{
			MenuCode: menuCode,
			Section:  section,
			Locale:   locale,
		})
		if err == nil {
			if trimmed := strings.TrimSpace(url); trimmed != "" {
				return trimmed
			}
		}
	}
	url, err := s.resolveURLForTarget(ctx, section.Target, locale)
	if err != nil {
		return ""
	}
	return url
}

// resolveURLForTarget derives a URL from a free-form target map. It is
// the fallback behind route-backed resolvers.
func (s *service) resolveURLForTarget(_ context.Context, target map[string]any, _ string) (string, error) {
	if len(target) == 0 {
		return "", nil
	}
	if raw, ok := target["url"]; ok {
		if url := strings.TrimSpace(fmt.Sprint(raw)); url != "" {
			return url, nil
		}
	}
	if raw, ok := target["path"]; ok {
		if path := strings.TrimSpace(fmt.Sprint(raw)); path != "" {
			return ensureLeadingSlash(path), nil
		}
	}
	if slug, ok := extractTargetSlug(target); ok && slug != "" {
		return ensureLeadingSlash(slug), nil
	}
	return "", nil
}

func selectTranslation(translations []*SectionTranslation, locale string) *SectionTranslation {
	if locale == "" {
		return nil
	}
	for _, tr := range translations {
		if tr == nil || tr.DeletedAt != nil {
			continue
		}
		if normalizeLocale(tr.LocaleCode) == locale {
			return tr
		}
	}
	return nil
}

func snapshotCacheKey(code, locale string, includeHidden bool) string {
	key := "navigation:resolved:" + code + ":" + locale
	if includeHidden {
		key += ":all"
	}
	return key
}

func (s *service) cachedSnapshot(ctx context.Context, code, locale string, includeHidden bool) (*ResolvedMenu, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, snapshotCacheKey(code, locale, includeHidden))
	if err != nil {
		return nil, false
	}
	if snapshot, ok := cached.(*ResolvedMenu); ok && snapshot != nil {
		return snapshot, true
	}
	return nil, false
}

func (s *service) storeSnapshot(ctx context.Context, code, locale string, includeHidden bool, resolved *ResolvedMenu) {
	if s.cache == nil || resolved == nil {
		return
	}
	_ = s.cache.Set(ctx, snapshotCacheKey(code, locale, includeHidden), resolved, s.cacheTTL)
}

func (s *service) dropSnapshots(ctx context.Context, menuCode string) {
	if s.cache == nil {
		return
	}
	code := strings.TrimSpace(menuCode)
	if code == "" {
		_ = s.cache.Clear(ctx)
		return
	}
	locales := make([]string, 0, len(s.locales)+1)
	locales = append(locales, "")
	locales = append(locales, s.locales...)
	for _, locale := range locales {
		_ = s.cache.Delete(ctx, snapshotCacheKey(code, locale, false))
		_ = s.cache.Delete(ctx, snapshotCacheKey(code, locale, true))
	}
}

// InvalidateCache drops cached repository reads and resolved snapshots.
// An empty menu code clears every snapshot.
func (s *service) InvalidateCache(ctx context.Context, menuCode string) error {
	var errs []error

	if invalidator, ok := s.menus.(cacheInvalidator); ok {
		if err := invalidator.InvalidateCache(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if invalidator, ok := s.sections.(cacheInvalidator); ok {
		if err := invalidator.InvalidateCache(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if invalidator, ok := s.translations.(cacheInvalidator); ok {
		if err := invalidator.InvalidateCache(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.dropSnapshots(ctx, menuCode)
	return errors.Join(errs...)
}

func (s *service) hydrateMenu(ctx context.Context, menu *Menu) (*Menu, error) {
	list, err := s.sections.ListByMenu(ctx, menu.ID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		menu.Sections = nil
		return menu, nil
	}

	trMap := make(map[uuid.UUID][]*SectionTranslation, len(list))
	for _, section := range list {
		translations, err := s.translations.ListBySection(ctx, section.ID)
		if err != nil {
			return nil, err
		}
		trMap[section.ID] = translations
	}

	menu.Sections = buildHierarchy(list, trMap)
	return menu, nil
}

func (s *service) attachTranslations(ctx context.Context, sectionID uuid.UUID, kind string, inputs []SectionTranslationInput) ([]*SectionTranslation, error) {
	seen := make(map[string]struct{}, len(inputs))
	translations := make([]*SectionTranslation, 0, len(inputs))
	now := s.now()

	for _, tr := range inputs {
		normalized, err := normalizeSectionTranslationInput(kind, tr)
		if err != nil {
			return nil, err
		}
		if !s.localeEnabled(normalized.Locale) {
			return nil, ErrLocaleUnknown
		}
		if _, dup := seen[normalized.Locale]; dup {
			return nil, ErrTranslationExists
		}
		seen[normalized.Locale] = struct{}{}

		translationID := s.nextID()
		if s.forgivingBootstrap {
			translationID = s.deterministicUUID("go-navigation:section_translation:" + sectionID.String() + ":" + normalized.Locale)
		}
		record := &SectionTranslation{
			ID:          translationID,
			SectionID:   sectionID,
			LocaleCode:  normalized.Locale,
			Title:       normalized.Title,
			TitleKey:    normalized.TitleKey,
			URLOverride: normalized.URLOverride,
			Summary:     normalized.Summary,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := s.translations.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		translations = append(translations, created)
	}
	return translations, nil
}

func (s *service) mergeTranslations(ctx context.Context, existing *Section, kind string, inputs []SectionTranslationInput) (*Section, error) {
	if existing == nil {
		return nil, ErrSectionNotFound
	}

	existingTranslations, err := s.translations.ListBySection(ctx, existing.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(existingTranslations))
	for _, tr := range existingTranslations {
		if tr != nil {
			seen[normalizeLocale(tr.LocaleCode)] = struct{}{}
		}
	}

	var added []*SectionTranslation
	for _, tr := range inputs {
		normalized, err := normalizeSectionTranslationInput(kind, tr)
		if err != nil {
			return nil, err
		}
		if !s.localeEnabled(normalized.Locale) {
			return nil, ErrLocaleUnknown
		}
		if _, exists := seen[normalized.Locale]; exists {
			continue
		}

		now := s.now()
		translationID := s.nextID()
		if s.forgivingBootstrap {
			translationID = s.deterministicUUID("go-navigation:section_translation:" + existing.ID.String() + ":" + normalized.Locale)
		}
		record := &SectionTranslation{
			ID:          translationID,
			SectionID:   existing.ID,
			LocaleCode:  normalized.Locale,
			Title:       normalized.Title,
			TitleKey:    normalized.TitleKey,
			URLOverride: normalized.URLOverride,
			Summary:     normalized.Summary,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		created, err := s.translations.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		added = append(added, created)
		seen[normalized.Locale] = struct{}{}
	}

	if len(added) > 0 {
		existingTranslations = append(existingTranslations, added...)
	}
	existing.Translations = existingTranslations
	return existing, nil
}

func (s *service) ensureMenuDeletionAllowed(ctx context.Context, menuID uuid.UUID, force bool) error {
	if force || s.usageResolver == nil {
		return nil
	}
	bindings, err := s.usageResolver.ResolveMenuUsage(ctx, menuID)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		return nil
	}
	return &MenuInUseError{MenuID: menuID, Bindings: bindings}
}

func (s *service) deleteSectionRecursive(ctx context.Context, section *Section, deletedBy uuid.UUID, cascade bool) error {
	if section == nil {
		return ErrSectionNotFound
	}

	children, err := s.sections.ListChildren(ctx, section.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		if !cascade {
			return ErrSectionHasChildren
		}
		for _, child := range children {
			if err := s.deleteSectionRecursive(ctx, child, deletedBy, true); err != nil {
				return err
			}
		}
	}

	if err := s.deleteSectionTranslations(ctx, section.ID); err != nil {
		return err
	}

	if err := s.sections.Delete(ctx, section.ID); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return ErrSectionNotFound
		}
		return err
	}

	return s.compactSiblingPositions(ctx, section.MenuID, section.ParentID, deletedBy)
}

func (s *service) deleteSectionTranslations(ctx context.Context, sectionID uuid.UUID) error {
	translations, err := s.translations.ListBySection(ctx, sectionID)
	if err != nil {
		return err
	}
	for _, tr := range translations {
		if err := s.translations.Delete(ctx, tr.ID); err != nil {
			return err
		}
	}
	return nil
}

type sectionSemantics struct {
	Kind             string
	Title            string
	URL              string
	Target           map[string]any
	Icon             string
	TranslationCount int
}

func normalizeKindValue(raw string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(raw))
	if kind == "" {
		return SectionKindLink, nil
	}
	switch kind {
	case SectionKindLink, SectionKindGroup, SectionKindSeparator:
		return kind, nil
	default:
		return "", ErrSectionKindInvalid
	}
}

func normalizeKindOrDefault(raw string) string {
	kind, err := normalizeKindValue(raw)
	if err != nil || kind == "" {
		return SectionKindLink
	}
	return kind
}

func normalizeTargetForKind(kind string, raw map[string]any) (map[string]any, error) {
	switch kind {
	case SectionKindLink:
		if len(raw) == 0 {
			return nil, nil
		}
		normalized := maps.Clone(raw)
		if typVal, ok := normalized["type"]; ok {
			if typ := strings.ToLower(strings.TrimSpace(fmt.Sprint(typVal))); typ != "" {
				normalized["type"] = typ
			} else {
				delete(normalized, "type")
			}
		}
		if urlVal, ok := normalized["url"]; ok {
			if url := strings.TrimSpace(fmt.Sprint(urlVal)); url != "" {
				normalized["url"] = url
			} else {
				delete(normalized, "url")
			}
		}
		return normalized, nil
	case SectionKindGroup:
		if len(raw) > 0 {
			return nil, ErrGroupFields
		}
		return nil, nil
	case SectionKindSeparator:
		if len(raw) > 0 {
			return nil, ErrSeparatorFields
		}
		return nil, nil
	default:
		return nil, ErrSectionKindInvalid
	}
}

func validateSectionSemantics(sem sectionSemantics) error {
	switch sem.Kind {
	case SectionKindSeparator:
		if sem.Title != "" || sem.URL != "" || len(sem.Target) > 0 || sem.Icon != "" || sem.TranslationCount > 0 {
			return ErrSeparatorFields
		}
	case SectionKindGroup:
		if sem.URL != "" || len(sem.Target) > 0 {
			return ErrGroupFields
		}
		if sem.Title == "" && sem.TranslationCount == 0 {
			return ErrSectionTitleRequired
		}
	default:
		if sem.Title == "" && sem.TranslationCount == 0 {
			return ErrSectionTitleRequired
		}
	}
	return nil
}

func cloneMapAny(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	return maps.Clone(input)
}

func cloneStringSlice(input []string) []string {
	if input == nil {
		return nil
	}
	return slices.Clone(input)
}

func ensureMapAny(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	return maps.Clone(input)
}

func ensureNonNilTarget(target map[string]any) map[string]any {
	if target == nil {
		return map[string]any{}
	}
	return maps.Clone(target)
}

type normalizedSectionTranslation struct {
	Locale      string
	Title       string
	TitleKey    string
	URLOverride *string
	Summary     string
}

// normalizeSectionTranslationInput trims locale and key fields but keeps
// Title verbatim: display text passes through exactly as stored.
func normalizeSectionTranslationInput(kind string, input SectionTranslationInput) (normalizedSectionTranslation, error) {
	normalized := normalizedSectionTranslation{
		Locale:      normalizeLocale(input.Locale),
		Title:       input.Title,
		TitleKey:    strings.TrimSpace(input.TitleKey),
		URLOverride: trimURLPointer(input.URLOverride),
		Summary:     input.Summary,
	}

	if normalized.Locale == "" {
		return normalizedSectionTranslation{}, ErrLocaleUnknown
	}

	switch kind {
	case SectionKindSeparator:
		return normalizedSectionTranslation{}, ErrSeparatorFields
	default:
		if normalized.Title == "" && normalized.TitleKey == "" {
			return normalizedSectionTranslation{}, ErrTranslationText
		}
	}

	return normalized, nil
}

func trimURLPointer(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *service) compactSiblingPositions(ctx context.Context, menuID uuid.UUID, parentID *uuid.UUID, actor uuid.UUID) error {
	siblings, err := s.fetchSiblings(ctx, menuID, parentID)
	if err != nil {
		return err
	}
	updated := make([]*Section, 0, len(siblings))
	for idx, sibling := range siblings {
		if sibling.Position == idx {
			continue
		}
		sibling.Position = idx
		sibling.UpdatedAt = s.now()
		sibling.UpdatedBy = actor
		updated = append(updated, sibling)
	}
	if len(updated) == 0 {
		return nil
	}
	return s.sections.BulkUpdateHierarchy(ctx, updated)
}

func (s *service) resolveParent(ctx context.Context, input AddSectionInput, allowMissing bool) (*uuid.UUID, *string, error) {
	if input.ParentID != nil && *input.ParentID != uuid.Nil {
		parentID := *input.ParentID
		return &parentID, nil, nil
	}
	ref := strings.TrimSpace(input.ParentRef)
	if ref == "" {
		return nil, nil, nil
	}
	if parsed, err := uuid.Parse(ref); err == nil && parsed != uuid.Nil {
		return &parsed, nil, nil
	}

	// Refs are opaque upstream identifiers; matching is exact, never folded.
	parent, err := s.sections.GetByMenuAndRef(ctx, input.MenuID, ref)
	if err == nil && parent != nil {
		return &parent.ID, nil, nil
	}
	var notFound *NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, nil, err
	}

	// Fallback: allow referencing by canonical key.
	parent, err = s.sections.GetByMenuAndCanonicalKey(ctx, input.MenuID, ref)
	if err == nil && parent != nil {
		return &parent.ID, nil, nil
	}
	if err != nil && !errors.As(err, &notFound) {
		return nil, nil, err
	}

	if s.parentResolver != nil {
		id, err := s.parentResolver(ctx, ref, input)
		if err != nil {
			return nil, nil, err
		}
		if id != nil && *id != uuid.Nil {
			return id, nil, nil
		}
	}

	if allowMissing {
		return nil, &ref, nil
	}
	return nil, nil, ErrSectionParentInvalid
}

func (s *service) pickSectionID(input AddSectionInput) uuid.UUID {
	if input.ID != nil && *input.ID != uuid.Nil {
		return *input.ID
	}
	if s.id == nil {
		return uuid.New()
	}
	id := s.id(input)
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func canonicalKeyForRef(ref string) *string {
	if ref == "" {
		return nil
	}
	key := "ref:" + ref
	return &key
}

func deriveCanonicalKeyFromTarget(kind string, target map[string]any, url string) *string {
	if kind != SectionKindLink {
		return nil
	}
	if url != "" {
		key := "url:" + url
		return &key
	}
	if len(target) == 0 {
		return nil
	}
	if raw, ok := target["route"]; ok {
		if val := strings.TrimSpace(fmt.Sprint(raw)); val != "" {
			key := "route:" + val
			return &key
		}
	}
	if raw, ok := target["url"]; ok {
		if val := strings.TrimSpace(fmt.Sprint(raw)); val != "" {
			key := "url:" + val
			return &key
		}
	}
	if slug, ok := extractTargetSlug(target); ok && slug != "" {
		key := "slug:" + slug
		return &key
	}
	return nil
}

func normalizeParentRefPointer(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func canonicalParentRef(parentID *uuid.UUID, parentRef *string, parentHint string) string {
	if parentRef != nil {
		if trimmed := strings.TrimSpace(*parentRef); trimmed != "" {
			return "ref:" + trimmed
		}
	}
	if trimmed := strings.TrimSpace(parentHint); trimmed != "" {
		return "ref:" + trimmed
	}
	return parentKey(parentID)
}

func deriveCanonicalKeyFromInput(kind string, input AddSectionInput, parentID *uuid.UUID, parentRef *string) *string {
	if key := canonicalKeyForRef(input.Ref); key != nil {
		return key
	}

	switch kind {
	case SectionKindLink:
		return deriveCanonicalKeyFromTarget(kind, input.Target, input.URL)
	case SectionKindGroup:
		parent := canonicalParentRef(parentID, parentRef, input.ParentRef)
		if groupKey := groupTitleKey(input.Title, input.Translations); groupKey != "" {
			key := "group:" + groupKey + ":" + parent
			return &key
		}
		key := "group:" + parent
		return &key
	case SectionKindSeparator:
		key := fmt.Sprintf("separator:%s:%d", canonicalParentRef(parentID, parentRef, input.ParentRef), input.Position)
		return &key
	default:
		return nil
	}
}

func deriveCanonicalKeyFromSection(section *Section) *string {
	if section == nil {
		return nil
	}
	if key := canonicalKeyForRef(section.Ref); key != nil {
		return key
	}
	kind := normalizeKindOrDefault(section.Kind)
	switch kind {
	case SectionKindLink:
		return deriveCanonicalKeyFromTarget(kind, section.Target, section.URL)
	case SectionKindGroup:
		parent := canonicalParentRef(section.ParentID, section.ParentRef, "")
		if groupKey := strings.TrimSpace(section.Title); groupKey != "" {
			key := "group:" + groupKey + ":" + parent
			return &key
		}
		key := "group:" + parent
		return &key
	case SectionKindSeparator:
		key := fmt.Sprintf("separator:%s:%d", canonicalParentRef(section.ParentID, section.ParentRef, ""), section.Position)
		return &key
	default:
		return nil
	}
}

func groupTitleKey(title string, inputs []SectionTranslationInput) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	for _, tr := range inputs {
		if key := strings.TrimSpace(tr.TitleKey); key != "" {
			return key
		}
		if trimmed := strings.TrimSpace(tr.Title); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (s *service) fetchSiblings(ctx context.Context, menuID uuid.UUID, parentID *uuid.UUID) ([]*Section, error) {
	list, err := s.sections.ListByMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	out := make([]*Section, 0, len(list))
	for _, section := range list {
		if uuidPtrEqual(section.ParentID, parentID) {
			out = append(out, section)
		}
	}
	slices.SortFunc(out, func(a, b *Section) int {
		return a.Position - b.Position
	})
	return out, nil
}

func (s *service) shiftSiblings(ctx context.Context, siblings []*Section, start int) error {
	for i := len(siblings) - 1; i >= start; i-- {
		sibling := siblings[i]
		sibling.Position++
		sibling.UpdatedAt = s.now()
		if _, err := s.sections.Update(ctx, sibling); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) repositionSection(ctx context.Context, section *Section, siblings []*Section, desired int) error {
	currentIdx := -1
	for idx, sib := range siblings {
		if sib.ID == section.ID {
			currentIdx = idx
			break
		}
	}
	if currentIdx == -1 {
		// Section may have been moved or parent changed; just ensure positions consistent.
		siblings = append(siblings, section)
	}

	if desired == currentIdx {
		return nil
	}

	// Remove section and re-insert.
	var remaining []*Section
	for _, sib := range siblings {
		if sib.ID != section.ID {
			remaining = append(remaining, sib)
		}
	}

	if desired > len(remaining) {
		desired = len(remaining)
	}

	updatedOrder := append([]*Section{}, remaining[:desired]...)
	updatedOrder = append(updatedOrder, section)
	updatedOrder = append(updatedOrder, remaining[desired:]...)

	for idx, sib := range updatedOrder {
		if sib.Position != idx {
			sib.Position = idx
			sib.UpdatedAt = s.now()
			if _, err := s.sections.Update(ctx, sib); err != nil {
				return err
			}
		}
	}

	return nil
}

func buildHierarchy(list []*Section, translations map[uuid.UUID][]*SectionTranslation) []*Section {
	byID := make(map[uuid.UUID]*Section, len(list))
	children := make(map[string][]*Section, len(list))

	for _, section := range list {
		clone := *section
		if section.Target != nil {
			clone.Target = maps.Clone(section.Target)
		}
		if section.Metadata != nil {
			clone.Metadata = maps.Clone(section.Metadata)
		}
		if len(section.Classes) > 0 {
			clone.Classes = cloneStringSlice(section.Classes)
		}
		if section.CanonicalKey != nil {
			key := *section.CanonicalKey
			clone.CanonicalKey = &key
		}
		clone.Children = nil
		clone.Translations = translations[section.ID]
		byID[section.ID] = &clone
		key := parentKey(section.ParentID)
		children[key] = append(children[key], &clone)
	}

	for _, section := range byID {
		key := parentKey(&section.ID)
		if kids, ok := children[key]; ok {
			sortSiblings(kids)
			section.Children = kids
		}
	}

	root := children[parentKey(nil)]
	sortSiblings(root)
	return root
}

// sortSiblings orders sections by position; ties break by creation time
// then ID so resolution stays deterministic.
func sortSiblings(list []*Section) {
	slices.SortStableFunc(list, func(a, b *Section) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

func parentKey(id *uuid.UUID) string {
	if id == nil {
		return "root"
	}
	return id.String()
}

func hasCycle(parents map[uuid.UUID]*uuid.UUID) bool {
	visited := make(map[uuid.UUID]int, len(parents))

	var visit func(uuid.UUID) bool
	visit = func(id uuid.UUID) bool {
		state := visited[id]
		if state == 1 {
			return true
		}
		if state == 2 {
			return false
		}
		visited[id] = 1
		if parent := parents[id]; parent != nil {
			if visit(*parent) {
				return true
			}
		}
		visited[id] = 2
		return false
	}

	for id := range parents {
		if visit(id) {
			return true
		}
	}
	return false
}

func resolveSectionRef(ref string, byID map[uuid.UUID]*Section, byRef map[string]*Section, byCanonical map[string]*Section) *Section {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return nil
	}
	if parsed, err := uuid.Parse(trimmed); err == nil && parsed != uuid.Nil {
		return byID[parsed]
	}
	if section := byRef[trimmed]; section != nil {
		return section
	}
	return byCanonical[trimmed]
}

func countPendingParentRefs(list []*Section) int {
	count := 0
	for _, section := range list {
		if section == nil || section.ParentID != nil || section.ParentRef == nil {
			continue
		}
		if strings.TrimSpace(*section.ParentRef) == "" {
			continue
		}
		count++
	}
	return count
}

func normalizePositionsForParents(list []*Section, parentKeys map[string]struct{}, touched map[uuid.UUID]struct{}) []*Section {
	byParent := make(map[string][]*Section)
	for _, section := range list {
		if section == nil {
			continue
		}
		key := parentKey(section.ParentID)
		byParent[key] = append(byParent[key], section)
	}

	dirty := make([]*Section, 0, len(touched))
	dirtyIDs := make(map[uuid.UUID]struct{}, len(touched))

	for key := range parentKeys {
		siblings := byParent[key]
		if len(siblings) == 0 {
			continue
		}
		slices.SortFunc(siblings, func(a, b *Section) int {
			if a.Position == b.Position {
				return a.CreatedAt.Compare(b.CreatedAt)
			}
			return a.Position - b.Position
		})
		for idx, section := range siblings {
			if section.Position != idx {
				section.Position = idx
				if _, ok := dirtyIDs[section.ID]; !ok {
					dirty = append(dirty, section)
					dirtyIDs[section.ID] = struct{}{}
				}
			}
		}
	}

	for id := range touched {
		if _, ok := dirtyIDs[id]; ok {
			continue
		}
		if section := findSection(list, id); section != nil {
			dirty = append(dirty, section)
			dirtyIDs[id] = struct{}{}
		}
	}

	return dirty
}

func findSection(list []*Section, id uuid.UUID) *Section {
	for _, section := range list {
		if section != nil && section.ID == id {
			return section
		}
	}
	return nil
}

func compactSeparators(nodes []ResolvedSection) []ResolvedSection {
	out := make([]ResolvedSection, 0, len(nodes))
	prevSeparator := false

	for _, node := range nodes {
		if node.Kind == SectionKindSeparator {
			if prevSeparator || len(out) == 0 {
				continue
			}
			prevSeparator = true
			out = append(out, node)
			continue
		}
		prevSeparator = false
		out = append(out, node)
	}

	for len(out) > 0 && out[len(out)-1].Kind == SectionKindSeparator {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isEffectivelyEmptyGroup(node ResolvedSection) bool {
	if node.Kind != SectionKindGroup {
		return false
	}
	if node.Title != "" {
		return false
	}
	if node.Icon != "" || len(node.Classes) > 0 {
		return false
	}
	if node.Summary != "" {
		return false
	}
	if len(node.Metadata) > 0 {
		return false
	}
	return true
}

func ensureLeadingSlash(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

func pickActor(ids ...uuid.UUID) uuid.UUID {
	for _, id := range ids {
		if id != uuid.Nil {
			return id
		}
	}
	return uuid.Nil
}

func (s *service) nextID() uuid.UUID {
	if s.newID == nil {
		return uuid.New()
	}
	id := s.newID()
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func (s *service) deterministicUUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.nextID()
	}
	return identity.UUID(trimmed)
}

func collectLocalesFromInputs(inputs []SectionTranslationInput) []string {
	if len(inputs) == 0 {
		return nil
	}
	locales := make([]string, 0, len(inputs))
	for _, tr := range inputs {
		code := normalizeLocale(tr.Locale)
		if code == "" {
			continue
		}
		locales = append(locales, code)
	}
	return locales
}

func collectLocalesFromTranslations(translations []*SectionTranslation) []string {
	if len(translations) == 0 {
		return nil
	}
	locales := make([]string, 0, len(translations))
	for _, tr := range translations {
		if tr == nil {
			continue
		}
		if code := normalizeLocale(tr.LocaleCode); code != "" {
			locales = append(locales, code)
		}
	}
	return locales
}

func normalizeUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	copy := *id
	return &copy
}

func normalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func isValidCode(code string) bool {
	for _, r := range code {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' ||
			r == '_' {
			continue
		}
		return false
	}
	return true
}
