package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectPatchApply(t *testing.T) {
	img := "old.png"
	p := Project{ID: 3, Title: "a", Description: "b", Github: "g", Live: "l", Image: &img}

	title := "new title"
	newImg := "new.png"
	ProjectPatch{Title: &title, Image: &newImg}.Apply(&p)

	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, "new title", p.Title)
	assert.Equal(t, "b", p.Description)
	assert.Equal(t, "g", p.Github)
	assert.Equal(t, "new.png", *p.Image)
}

func TestFeedbackPatchApplyKeepsOmittedFields(t *testing.T) {
	f := Feedback{ID: 1, Name: "Ann", Feedback: "great", Stars: 4}

	stars := 5
	FeedbackPatch{Stars: &stars}.Apply(&f)

	assert.Equal(t, "Ann", f.Name)
	assert.Equal(t, "great", f.Feedback)
	assert.Equal(t, 5, f.Stars)
	assert.Nil(t, f.ProfileImage)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "projects", Project{}.TableName())
	assert.Equal(t, "feedback", Feedback{}.TableName())
}
