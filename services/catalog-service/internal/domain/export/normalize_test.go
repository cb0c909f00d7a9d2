package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := map[string]string{
		"cute_bunny.png":        "cute_bunny",
		"archive.tar.gz":        "archive.tar",
		"noext":                 "noext",
		".env":                  ".env",
		"..a.b":                 "..a",
		"file.":                 "file",
		"uploads/cute_cat.jpeg": "cute_cat",
		`C:\pics\dog.gif`:       "dog",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Stem(in), in)
	}
}

func TestSlugAndHandle(t *testing.T) {
	tests := []struct {
		in     string
		slug   string
		handle string
	}{
		{"cute_bunny.png", "Cute Bunny", "CuteBunny"},
		{"little-CUPCAKE.jpg", "Little Cupcake", "LittleCupcake"},
		{"  mama__bear--cub .png", "Mama Bear Cub", "MamaBearCub"},
		{"littlecupcake", "Littlecupcake", "Littlecupcake"},
		{"élan_vital.png", "Élan Vital", "ÉlanVital"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.slug, Slug(tt.in))
			assert.Equal(t, tt.handle, Handle(tt.in))
		})
	}
}

func TestSlugIdempotent(t *testing.T) {
	for _, in := range []string{"cute_bunny", "Cute Bunny", "a-b_c d", "", "ALREADY Canonical"} {
		once := Slug(in)
		assert.Equal(t, once, Slug(once), in)
		assert.Equal(t, Handle(in), Handle(once), in)
	}
}

func TestSlugWords_DottedNames(t *testing.T) {
	tests := map[string]string{
		"mr.bunny.png":  "Mr.bunny",
		"v2.5 tee.png":  "V2.5 Tee",
		"a.b.c_d-e.jpg": "A.b.c D E",
	}
	for in, want := range tests {
		once := Slug(in)
		assert.Equal(t, want, once, in)
		// повторный Slug отрежет ".bunny" как расширение, регистр слов при этом стабилен
		assert.Equal(t, once, slugWords(once), in)
		assert.Equal(t, slugWords(Stem(in)), once, in)
		assert.Equal(t, removeSpaces(once), Handle(in), in)
		assert.Equal(t, Handle(in), removeSpaces(slugWords(once)), in)
	}
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "Littlecupcake", upperFirst("littlecupcake"))
	assert.Equal(t, "Cute_bunny", upperFirst("cute_bunny"))
	assert.Equal(t, "", upperFirst(""))
}
