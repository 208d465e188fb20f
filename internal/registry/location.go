package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/sarpras/inventaris/internal/domain"
	"github.com/sarpras/inventaris/internal/store"
	"github.com/sarpras/inventaris/internal/store/schema"
)

// CreateLocationParams holds the inputs for a new location node
type CreateLocationParams struct {
	Name     string
	ParentID *int64
	IsActive bool
}

// CreateLocation inserts a location node. The materialized path needs the
// generated ID, so the row is persisted first and its path written in the
// same transaction.
func (r *Registry) CreateLocation(ctx context.Context, p CreateLocationParams) (*schema.Location, error) {
	if p.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	var parent *schema.Location
	if p.ParentID != nil {
		var err error
		parent, err = r.store.GetLocationByID(ctx, *p.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, domain.ErrLocationNotFound
		}
	}

	var loc *schema.Location
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		loc = &schema.Location{
			Name:     p.Name,
			ParentID: p.ParentID,
			IsActive: p.IsActive,
		}
		if err := tx.CreateLocation(ctx, loc); err != nil {
			return err
		}

		path, level := derivePath(parent, loc.ID)
		loc.Path = path
		loc.Level = level
		return tx.UpdateLocationPath(ctx, loc.ID, path, level)
	})
	if err != nil {
		return nil, err
	}

	return loc, nil
}

// UpdateLocationParams holds the mutable location fields; nil means unchanged.
// SetParent distinguishes "don't touch the parent" from "make it a root".
type UpdateLocationParams struct {
	Name      *string
	SetParent bool
	ParentID  *int64
	IsActive  *bool
}

// UpdateLocation edits a location node. Re-parenting recomputes the path and
// level of the edited node from its new parent; descendants keep their
// stored paths until they are themselves edited. Cycles (self-parenting or
// moving under a descendant) are rejected.
func (r *Registry) UpdateLocation(ctx context.Context, id int64, p UpdateLocationParams) (*schema.Location, error) {
	if p.Name != nil && *p.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	var loc *schema.Location
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		loc, err = tx.GetLocationByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}

		if p.Name != nil {
			loc.Name = *p.Name
		}
		if p.IsActive != nil {
			loc.IsActive = *p.IsActive
		}

		var parent *schema.Location
		if p.SetParent {
			if p.ParentID != nil {
				if *p.ParentID == id {
					return domain.NewValidationError("parent_id", "location cannot be its own parent")
				}
				parent, err = tx.GetLocationByID(ctx, *p.ParentID)
				if err != nil {
					return err
				}
				if parent == nil {
					return domain.ErrLocationNotFound
				}
				// A descendant's path starts with this node's path
				if parent.Path == loc.Path || strings.HasPrefix(parent.Path, loc.Path+"/") {
					return domain.NewValidationError("parent_id", "location cannot be moved under its own descendant")
				}
			}
			loc.ParentID = p.ParentID
		} else if loc.ParentID != nil {
			parent, err = tx.GetLocationByID(ctx, *loc.ParentID)
			if err != nil {
				return err
			}
		}

		path, level := derivePath(parent, loc.ID)
		loc.Path = path
		loc.Level = level

		return tx.SaveLocation(ctx, loc)
	})
	if err != nil {
		return nil, err
	}

	return loc, nil
}

// GetLocation retrieves a location by ID
func (r *Registry) GetLocation(ctx context.Context, id int64) (*schema.Location, error) {
	loc, err := r.store.GetLocationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	return loc, nil
}

// ListLocations returns all locations in tree order
func (r *Registry) ListLocations(ctx context.Context) ([]*schema.Location, error) {
	return r.store.ListLocations(ctx)
}

// DeleteLocation removes a leaf location that holds no assets. Deleting a
// node with children or with assets still placed at it is an integrity
// violation.
func (r *Registry) DeleteLocation(ctx context.Context, id int64) error {
	return r.store.Transaction(ctx, func(tx store.Store) error {
		loc, err := tx.GetLocationByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}

		children, err := tx.CountLocationChildren(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return domain.NewIntegrityError("location", "location has child locations")
		}

		assets, err := tx.CountAssetsAtLocation(ctx, id)
		if err != nil {
			return err
		}
		if assets > 0 {
			return domain.NewIntegrityError("location", "location still holds assets")
		}

		return tx.DeleteLocation(ctx, id)
	})
}

// derivePath computes the materialized path and level of a node given its
// parent; roots carry their own ID at level 0
func derivePath(parent *schema.Location, id int64) (string, int) {
	if parent == nil {
		return fmt.Sprintf("%d", id), 0
	}
	return fmt.Sprintf("%s/%d", parent.Path, id), parent.Level + 1
}

// CreateCategoryParams holds the inputs for a new category
type CreateCategoryParams struct {
	Code     string
	Name     string
	IsActive bool
}

// CreateCategory inserts a category; codes are unique
func (r *Registry) CreateCategory(ctx context.Context, p CreateCategoryParams) (*schema.Category, error) {
	if p.Code == "" {
		return nil, domain.NewValidationError("code", "must not be empty")
	}
	if p.Name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	cat := &schema.Category{
		Code:     p.Code,
		Name:     p.Name,
		IsActive: p.IsActive,
	}
	if err := r.store.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

// ListCategories returns all categories
func (r *Registry) ListCategories(ctx context.Context) ([]*schema.Category, error) {
	return r.store.ListCategories(ctx)
}

// DeleteCategory removes a category that no asset references
func (r *Registry) DeleteCategory(ctx context.Context, id int64) error {
	return r.store.Transaction(ctx, func(tx store.Store) error {
		cat, err := tx.GetCategoryByID(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return domain.ErrCategoryNotFound
		}

		assets, err := tx.CountAssetsInCategory(ctx, id)
		if err != nil {
			return err
		}
		if assets > 0 {
			return domain.NewIntegrityError("category", "category still has assets")
		}

		return tx.DeleteCategory(ctx, id)
	})
}
