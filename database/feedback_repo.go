package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/portfolio-site/backend/errs"
	"github.com/portfolio-site/backend/models"
)

type FeedbackRepo struct {
	db     *gorm.DB
	schema *schemaGuard
}

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db, schema: &schemaGuard{model: &models.Feedback{}}}
}

func (r *FeedbackRepo) EnsureSchema(ctx context.Context) error {
	return r.schema.ensure(ctx, r.db)
}

// FindAll returns all feedback, newest id first
func (r *FeedbackRepo) FindAll(ctx context.Context) ([]*models.Feedback, error) {
	feedback := []*models.Feedback{}
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return tx.Order("id DESC").Find(&feedback).Error
	})
	return feedback, err
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id int64) (*models.Feedback, error) {
	var feedback models.Feedback
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return first(tx, &feedback, id)
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepo) Add(ctx context.Context, feedback *models.Feedback) error {
	return withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		return tx.Create(feedback).Error
	})
}

func (r *FeedbackRepo) Update(ctx context.Context, id int64, patch models.FeedbackPatch) (*models.Feedback, error) {
	var feedback models.Feedback
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		if err := first(tx, &feedback, id); err != nil {
			return err
		}
		patch.Apply(&feedback)
		return tx.Save(&feedback).Error
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id int64) (*models.Feedback, error) {
	var feedback models.Feedback
	err := withConn(ctx, r.db, r.schema, func(tx *gorm.DB) error {
		if err := first(tx, &feedback, id); err != nil {
			return err
		}
		res := tx.Delete(&models.Feedback{}, id)
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
	return &feedback, nil
}
