package reference_test

import (
	"os"
	"path/filepath"
	"taskCalendar/internal/reference"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	data := reference.Default()

	assert.Equal(t, "all", data.AllToken)
	assert.Equal(t, "aaron", data.DefaultUser)
	assert.Equal(t, "personal", data.DefaultCategory)

	ids := []string{}
	for _, u := range data.Users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"aaron", "emily", "abigail", "family"}, ids)

	ids = []string{}
	for _, c := range data.Categories {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"training", "school", "personal", "other"}, ids)
}

func TestUserFilter(t *testing.T) {
	data := reference.Default()

	assert.Equal(t, "", data.UserFilter("all"))
	assert.Equal(t, "", data.UserFilter(""))
	assert.Equal(t, "emily", data.UserFilter("emily"))
	assert.True(t, data.HasUser("family"))
	assert.False(t, data.HasUser("bob"))
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses embedded document", func(t *testing.T) {
		data, err := reference.Load("")
		require.NoError(t, err)
		assert.Len(t, data.Users, 4)
	})

	t.Run("override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reference.yml")
		doc := `
all_token: everyone
default_user: bob
default_category: work
users:
  - id: bob
    name: Bob
categories:
  - id: work
    label: Work
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		data, err := reference.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "bob", data.DefaultUser)
		assert.Equal(t, "", data.UserFilter("everyone"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := reference.Load(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "default user not listed",
			doc:  "all_token: all\ndefault_user: zoe\ndefault_category: a\nusers: [{id: bob}]\ncategories: [{id: a}]\n",
		},
		{
			name: "default category not listed",
			doc:  "all_token: all\ndefault_user: bob\ndefault_category: b\nusers: [{id: bob}]\ncategories: [{id: a}]\n",
		},
		{
			name: "user collides with all token",
			doc:  "all_token: all\ndefault_user: all\ndefault_category: a\nusers: [{id: all}]\ncategories: [{id: a}]\n",
		},
		{
			name: "duplicate user",
			doc:  "all_token: all\ndefault_user: bob\ndefault_category: a\nusers: [{id: bob}, {id: bob}]\ncategories: [{id: a}]\n",
		},
		{
			name: "unknown field",
			doc:  "all_token: all\nfoo: bar\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reference.Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
