package cms

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database"
)

// Record is implemented by every CMS model.
type Record interface {
	Key() int64
	SetKey(id int64)
}

// Collection is admin CRUD over one CMS table. P is the pointer type of T so
// the hooks can mutate records in place.
type Collection[T any, P interface {
	*T
	Record
}] struct {
	db    *gorm.DB
	cache *cache.Cache
	name  string
	order string

	// validate runs before every write.
	validate func(P) error
	// prepare runs before every write; existing is nil on create.
	prepare func(existing, next P)
	// beforeDelete runs inside the delete transaction.
	beforeDelete func(tx *gorm.DB, record P) error
	// afterDelete runs once the row is gone.
	afterDelete func(ctx context.Context, record P)
}

func newCollection[T any, P interface {
	*T
	Record
}](db *gorm.DB, c *cache.Cache, name, order string) *Collection[T, P] {
	return &Collection[T, P]{db: db, cache: c, name: name, order: order}
}

func (c *Collection[T, P]) Name() string { return c.name }

func (c *Collection[T, P]) List(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page *database.Pagination) ([]T, error) {
	query := c.db.WithContext(ctx).Model(P(new(T)))
	if scope != nil {
		query = scope(query)
	}

	if page != nil {
		if err := query.Count(&page.Total).Error; err != nil {
			return nil, status.Errorf(codes.Internal, "Failed to count %s: %v", c.name, err)
		}
	}

	var items []T
	if err := query.Order(c.order).Scopes(database.Paginate(page)).Find(&items).Error; err != nil {
		return nil, status.Errorf(codes.Internal, "Failed to retrieve %s: %v", c.name, err)
	}
	return items, nil
}

func (c *Collection[T, P]) Get(ctx context.Context, id int64) (P, error) {
	item := P(new(T))
	if err := c.db.WithContext(ctx).First(item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, status.Errorf(codes.NotFound, "%s with ID %d not found", c.name, id)
		}
		return nil, status.Errorf(codes.Internal, "Failed to retrieve %s: %v", c.name, err)
	}
	return item, nil
}

func (c *Collection[T, P]) Create(ctx context.Context, item P) (P, error) {
	item.SetKey(0)
	if c.prepare != nil {
		c.prepare(nil, item)
	}
	if c.validate != nil {
		if err := c.validate(item); err != nil {
			return nil, err
		}
	}

	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return nil, c.writeError(err)
	}

	c.invalidate(ctx)
	return item, nil
}

// Update replaces every column of the record except its creation time.
func (c *Collection[T, P]) Update(ctx context.Context, id int64, item P) (P, error) {
	existing, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item.SetKey(id)
	if c.prepare != nil {
		c.prepare(existing, item)
	}
	if c.validate != nil {
		if err := c.validate(item); err != nil {
			return nil, err
		}
	}

	if err := c.db.WithContext(ctx).Omit("created_at", clause.Associations).Save(item).Error; err != nil {
		return nil, c.writeError(err)
	}

	c.invalidate(ctx)
	return item, nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id int64) error {
	item, err := c.Get(ctx, id)
	if err != nil {
		return err
	}

	err = c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.beforeDelete != nil {
			if err := c.beforeDelete(tx, item); err != nil {
				return err
			}
		}
		if err := tx.Delete(item).Error; err != nil {
			return status.Errorf(codes.Internal, "Failed to delete %s: %v", c.name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if c.afterDelete != nil {
		c.afterDelete(ctx, item)
	}
	c.invalidate(ctx)
	return nil
}

func (c *Collection[T, P]) writeError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return status.Errorf(codes.AlreadyExists, "A %s with the same slug already exists", c.name)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return status.Errorf(codes.FailedPrecondition, "%s references a missing record", c.name)
	}
	return status.Errorf(codes.Internal, "Failed to save %s: %v", c.name, err)
}

func (c *Collection[T, P]) invalidate(ctx context.Context) {
	c.cache.InvalidatePrefix(ctx, cache.PublicCMSPrefix)
}
