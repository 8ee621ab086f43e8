package sections

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunMenuRepository implements MenuRepository with optional caching.
type BunMenuRepository struct {
	repo         repository.Repository[*Menu]
	cacheService cache.CacheService
	cachePrefix  string
}

const menuNamespace = "menu"

// NewBunMenuRepository creates a menu repository without caching.
func NewBunMenuRepository(db *bun.DB) *BunMenuRepository {
	return NewBunMenuRepositoryWithCache(db, nil, nil)
}

// NewBunMenuRepositoryWithCache creates a menu repository with caching services.
func NewBunMenuRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunMenuRepository {
	base := NewMenuRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(menuNamespace)
	}
	return &BunMenuRepository{
		repo:         base,
		cacheService: svc,
		cachePrefix:  prefix,
	}
}

func (r *BunMenuRepository) Create(ctx context.Context, menu *Menu) (*Menu, error) {
	return r.repo.Create(ctx, menu)
}

func (r *BunMenuRepository) GetByID(ctx context.Context, id uuid.UUID) (*Menu, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "menu", id.String())
	}
	return record, nil
}

func (r *BunMenuRepository) GetByCode(ctx context.Context, code string) (*Menu, error) {
	record, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "menu", code)
	}
	return record, nil
}

func (r *BunMenuRepository) GetByLocation(ctx context.Context, location string) (*Menu, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("lower(?TableAlias.location) = lower(?)", location)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "menu", location)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "menu", Key: location}
	}
	return records[0], nil
}

func (r *BunMenuRepository) List(ctx context.Context) ([]*Menu, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunMenuRepository) Update(ctx context.Context, menu *Menu) (*Menu, error) {
	return r.repo.Update(ctx, menu)
}

func (r *BunMenuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Menu{ID: id})
}

func (r *BunMenuRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// BunSectionRepository implements SectionRepository with optional caching.
type BunSectionRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Section]
	cacheService cache.CacheService
	cachePrefix  string
}

const sectionNamespace = "section"

// NewBunSectionRepository creates a section repository without caching.
func NewBunSectionRepository(db *bun.DB) *BunSectionRepository {
	return NewBunSectionRepositoryWithCache(db, nil, nil)
}

// NewBunSectionRepositoryWithCache creates a section repository with caching services.
func NewBunSectionRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSectionRepository {
	base := NewSectionRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(sectionNamespace)
	}
	return &BunSectionRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunSectionRepository) Create(ctx context.Context, section *Section) (*Section, error) {
	return r.repo.Create(ctx, section)
}

func (r *BunSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Section, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "section", id.String())
	}
	return record, nil
}

func (r *BunSectionRepository) GetByMenuAndCanonicalKey(ctx context.Context, menuID uuid.UUID, key string) (*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.menu_id = ?", menuID).
				Where("?TableAlias.canonical_key = ?", key)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "section", Key: fmt.Sprintf("%s:%s", menuID, key)}
	}
	return records[0], nil
}

func (r *BunSectionRepository) GetByMenuAndRef(ctx context.Context, menuID uuid.UUID, ref string) (*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.menu_id = ?", menuID).
				Where("?TableAlias.ref = ?", ref)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "section", Key: fmt.Sprintf("%s:%s", menuID, ref)}
	}
	return records[0], nil
}

func (r *BunSectionRepository) ListByMenu(ctx context.Context, menuID uuid.UUID) ([]*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.menu_id = ?", menuID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	return records, err
}

func (r *BunSectionRepository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*Section, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.parent_id = ?", parentID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	return records, err
}

func (r *BunSectionRepository) Update(ctx context.Context, section *Section) (*Section, error) {
	return r.repo.Update(ctx, section)
}

func (r *BunSectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Section{ID: id})
}

func (r *BunSectionRepository) BulkUpdateHierarchy(ctx context.Context, items []*Section) error {
	if len(items) == 0 {
		return nil
	}
	_, err := r.repo.UpdateMany(ctx, items,
		repository.UpdateColumns("parent_id", "parent_ref", "position", "updated_at", "updated_by"),
	)
	return err
}

func (r *BunSectionRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// ResetMenuContents hard-deletes every section and translation belonging
// to a menu in one transaction. Used by declarative seeding when a menu
// is rebuilt from scratch.
func (r *BunSectionRepository) ResetMenuContents(ctx context.Context, menuID uuid.UUID) (sectionsDeleted int, translationsDeleted int, err error) {
	if r.db == nil {
		return 0, 0, fmt.Errorf("section repository: database not configured")
	}

	var (
		sectionsAffected     int64
		translationsAffected int64
	)

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var ids []uuid.UUID
		if err := tx.NewSelect().
			Model((*Section)(nil)).
			Column("id").
			Where("?TableAlias.menu_id = ?", menuID).
			Scan(ctx, &ids); err != nil {
			return fmt.Errorf("list section ids: %w", err)
		}

		if len(ids) > 0 {
			res, err := tx.NewDelete().
				Model((*SectionTranslation)(nil)).
				Where("?TableAlias.section_id IN (?)", bun.In(ids)).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("delete section translations: %w", err)
			}
			affected, _ := res.RowsAffected()
			translationsAffected += affected
		}

		res, err := tx.NewDelete().
			Model((*Section)(nil)).
			Where("?TableAlias.menu_id = ?", menuID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		affected, _ := res.RowsAffected()
		sectionsAffected += affected

		return nil
	})

	return int(sectionsAffected), int(translationsAffected), err
}

// BunSectionTranslationRepository implements SectionTranslationRepository with optional caching.
type BunSectionTranslationRepository struct {
	repo         repository.Repository[*SectionTranslation]
	cacheService cache.CacheService
	cachePrefix  string
}

const sectionTranslationNamespace = "section_translation"

// NewBunSectionTranslationRepository creates a translation repository without caching.
func NewBunSectionTranslationRepository(db *bun.DB) *BunSectionTranslationRepository {
	return NewBunSectionTranslationRepositoryWithCache(db, nil, nil)
}

// NewBunSectionTranslationRepositoryWithCache creates a translation repository with caching services.
func NewBunSectionTranslationRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSectionTranslationRepository {
	base := NewSectionTranslationRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(sectionTranslationNamespace)
	}
	return &BunSectionTranslationRepository{repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunSectionTranslationRepository) Create(ctx context.Context, translation *SectionTranslation) (*SectionTranslation, error) {
	return r.repo.Create(ctx, translation)
}

func (r *BunSectionTranslationRepository) GetBySectionAndLocale(ctx context.Context, sectionID uuid.UUID, localeCode string) (*SectionTranslation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id = ?", sectionID).
				Where("lower(?TableAlias.locale_code) = lower(?)", localeCode)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "section_translation", Key: translationKey(sectionID, localeCode)}
	}
	return records[0], nil
}

func (r *BunSectionTranslationRepository) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]*SectionTranslation, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.section_id = ?", sectionID)
		}),
	)
	return records, err
}

func (r *BunSectionTranslationRepository) Update(ctx context.Context, translation *SectionTranslation) (*SectionTranslation, error) {
	return r.repo.Update(ctx, translation)
}

func (r *BunSectionTranslationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &SectionTranslation{ID: id})
}

func (r *BunSectionTranslationRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
