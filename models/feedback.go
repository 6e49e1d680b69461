package models

// Feedback is a visitor testimonial. Stars is not range-checked and ImageSize
// is whatever the client reported.
type Feedback struct {
	ID           int64   `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name         string  `json:"name" db:"name" gorm:"type:text"`
	Feedback     string  `json:"feedback" db:"feedback" gorm:"type:text"`
	Stars        int     `json:"stars" db:"stars" gorm:"type:integer"`
	ProfileImage *string `json:"profileImage" db:"profileImage" gorm:"column:profileImage;type:text"`
	ImageSize    int64   `json:"imageSize" db:"imageSize" gorm:"column:imageSize;type:integer"`
}

func (Feedback) TableName() string {
	return "feedback"
}

type FeedbackPatch struct {
	Name         *string
	Feedback     *string
	Stars        *int
	ImageSize    *int64
	ProfileImage *string
}

func (patch FeedbackPatch) Apply(f *Feedback) {
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Feedback != nil {
		f.Feedback = *patch.Feedback
	}
	if patch.Stars != nil {
		f.Stars = *patch.Stars
	}
	if patch.ImageSize != nil {
		f.ImageSize = *patch.ImageSize
	}
	if patch.ProfileImage != nil {
		f.ProfileImage = patch.ProfileImage
	}
}
