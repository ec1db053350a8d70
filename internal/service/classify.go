package service

import "strings"

// Category is one aggregate bucket on the daily dashboard row.
type Category string

const (
	CategoryFall    Category = "fall"
	CategoryDamage  Category = "damage"
	CategoryFire    Category = "fire"
	CategorySmoke   Category = "smoke"
	CategoryAbandon Category = "abandon"
	CategoryTheft   Category = "theft"
	CategoryAssault Category = "assault"
)

// Vocabulary maps upper-cased anomaly-type labels to categories. One table
// for both aggregate counters and category-filtered queries; replace it at
// construction time to change the classification policy.
type Vocabulary map[string]Category

// DefaultVocabulary returns the perception service's label set.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		"FALL":    CategoryFall,
		"DAMAGE":  CategoryDamage,
		"FIRE":    CategoryFire,
		"SMOKE":   CategorySmoke,
		"ABANDON": CategoryAbandon,
		"THEFT":   CategoryTheft,
		"ASSAULT": CategoryAssault,
	}
}

// Classify resolves a free-text label into exactly one category,
// case-insensitively. Unknown labels report ok=false; the caller records the
// anomaly anyway and increments nothing.
func (v Vocabulary) Classify(label string) (Category, bool) {
	c, ok := v[strings.ToUpper(strings.TrimSpace(label))]
	return c, ok
}

// counterColumn maps a category to its counter column on daily_aggregates.
func counterColumn(c Category) string {
	return string(c) + "_count"
}

// counterColumns lists every counter column, in vocabulary order.
func counterColumns() []string {
	return []string{
		counterColumn(CategoryFall),
		counterColumn(CategoryDamage),
		counterColumn(CategoryFire),
		counterColumn(CategorySmoke),
		counterColumn(CategoryAbandon),
		counterColumn(CategoryTheft),
		counterColumn(CategoryAssault),
	}
}
