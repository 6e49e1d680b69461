package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/portfolio-site/backend/errs"
	"github.com/portfolio-site/backend/models"
)

type ProjectRepo struct {
	db     *gorm.DB
	schema *schemaGuard
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db: db, schema: &schemaGuard{model: &models.Project{}}}
}

// EnsureSchema creates the projects table if it is absent. Safe to call repeatedly.
func (r *ProjectRepo) EnsureSchema(ctx context.Context) error {
	return r.schema.ensure(ctx, r.db)
}

// FindAll returns all projects from the database
func (r *ProjectRepo) FindAll(ctx context.Context) ([]*models.Project, error) {
	projects := []*models.Project{}
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return tx.Find(&projects).Error
	})
	return projects, err
}

// FindByID returns a project by its ID, or errs.ErrNotFound
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return first(tx, &project, id)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project; the store assigns its ID
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return tx.Create(project).Error
	})
}

// Update applies patch to the project with the given id and returns the stored row
func (r *ProjectRepo) Update(ctx context.Context, id int64, patch models.ProjectPatch) (*models.Project, error) {
	var project models.Project
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		if err := first(tx, &project, id); err != nil {
			return err
		}
		patch.Apply(&project)
		return tx.Save(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project by id and returns the row that was removed
func (r *ProjectRepo) Delete(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		if err := first(tx, &project, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// first loads the row with the given primary key, mapping a miss to errs.ErrNotFound.
func first(tx *gorm.DB, dest any, id int64) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrNotFound
	}
	return err
}
