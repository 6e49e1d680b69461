package models

// Project is a portfolio entry shown on the landing page.
type Project struct {
	ID          int64   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Title       string  `json:"title" db:"title" gorm:"type:text"`
	Description string  `json:"description" db:"description" gorm:"type:text"`
	Image       *string `json:"image" db:"image" gorm:"column:image;type:text"`
	Github      string  `json:"github" db:"github" gorm:"type:text"`
	Live        string  `json:"live" db:"live" gorm:"type:text"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectPatch holds the fields of an update; nil fields are left untouched.
type ProjectPatch struct {
	Title       *string
	Description *string
	Github      *string
	Live        *string
	Image       *string
}

// Apply copies the non-nil patch fields onto p.
func (patch ProjectPatch) Apply(p *Project) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Github != nil {
		p.Github = *patch.Github
	}
	if patch.Live != nil {
		p.Live = *patch.Live
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
}
