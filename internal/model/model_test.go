package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"first of three", 1, 10, 23, 3, true, false},
		{"last page", 3, 10, 23, 3, false, true},
		{"beyond last", 4, 10, 23, 3, false, true},
		{"exact fit", 2, 5, 10, 2, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.page, p.CurrentPage)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.total, p.TotalPosts)
			assert.Equal(t, tt.wantNext, p.HasNextPage)
			assert.Equal(t, tt.wantPrev, p.HasPrevPage)
		})
	}
}

func TestPostStatus_Valid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusPublished.Valid())
	assert.True(t, StatusArchived.Valid())
	assert.False(t, PostStatus("deleted").Valid())
	assert.False(t, PostStatus("").Valid())
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	data, err := json.Marshal(User{ID: "u1", Email: "a@b.c", PasswordHash: "secret-hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-hash")
}

func TestPost_AssociationIDs(t *testing.T) {
	p := Post{
		Categories: []Category{{ID: "c1"}, {ID: "c2"}},
		Tags:       []Tag{{ID: "t1"}},
	}
	assert.Equal(t, []string{"c1", "c2"}, p.CategoryIDs())
	assert.Equal(t, []string{"t1"}, p.TagIDs())
}
