package ranking

import (
	"fmt"
	"strings"
)

// Gender of a player. Categories are gender specific, including mixed doubles.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Category is a competition category. Mixed doubles is split into a men's and
// a women's category so every category maps to exactly one gender.
type Category string

const (
	MensSingles        Category = "mens_singles"
	WomensSingles      Category = "womens_singles"
	MensDoubles        Category = "mens_doubles"
	WomensDoubles      Category = "womens_doubles"
	MensMixedDoubles   Category = "mens_mixed_doubles"
	WomensMixedDoubles Category = "womens_mixed_doubles"
)

// Categories lists every category in display order.
var Categories = []Category{
	MensSingles,
	WomensSingles,
	MensDoubles,
	WomensDoubles,
	MensMixedDoubles,
	WomensMixedDoubles,
}

var categoryGender = map[Category]Gender{
	MensSingles:        GenderMale,
	WomensSingles:      GenderFemale,
	MensDoubles:        GenderMale,
	WomensDoubles:      GenderFemale,
	MensMixedDoubles:   GenderMale,
	WomensMixedDoubles: GenderFemale,
}

func (c Category) Valid() bool {
	_, ok := categoryGender[c]
	return ok
}

// Gender returns the only gender allowed to hold results in the category.
func (c Category) Gender() Gender {
	return categoryGender[c]
}

// Allows reports whether a player of gender g may appear in the category.
func (c Category) Allows(g Gender) bool {
	return c.Valid() && categoryGender[c] == g
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// DoublesFor returns the gendered doubles category.
func DoublesFor(g Gender) Category {
	if g == GenderFemale {
		return WomensDoubles
	}
	return MensDoubles
}

// MixedFor returns the gender's side of mixed doubles.
func MixedFor(g Gender) Category {
	if g == GenderFemale {
		return WomensMixedDoubles
	}
	return MensMixedDoubles
}

// normalizeTag lowercases a tag and folds the separators people type in
// spreadsheets ("Men's Mixed-Doubles") into the canonical snake case form.
func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("'", "", "’", "", "-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// ParseCategory validates a category tag.
func ParseCategory(s string) (Category, error) {
	c := Category(normalizeTag(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// ParseGender validates a gender tag. "m" and "f" are accepted.
func ParseGender(s string) (Gender, error) {
	switch normalizeTag(s) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGender, s)
}
