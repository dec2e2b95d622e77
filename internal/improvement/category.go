package improvement

// Category labels a student's performance trajectory.
type Category string

const (
	CategoryHighConsistent Category = "High Consistent Performance"
	CategoryHigh           Category = "High Improvement"
	CategoryModerate       Category = "Moderate Improvement"
	CategoryLow            Category = "Low Improvement"
)

// AllCategories returns every category from strongest to weakest.
func AllCategories() []Category {
	return []Category{CategoryHighConsistent, CategoryHigh, CategoryModerate, CategoryLow}
}

// DisplayName returns the human-readable label for the category.
func (c Category) DisplayName() string {
	return string(c)
}

// Slug returns a short lowercase identifier, used for metric labels and
// CSS classes.
func (c Category) Slug() string {
	switch c {
	case CategoryHighConsistent:
		return "high_consistent"
	case CategoryHigh:
		return "high"
	case CategoryModerate:
		return "moderate"
	case CategoryLow:
		return "low"
	default:
		return "unknown"
	}
}

// ParseCategory maps a stored label back to its Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range AllCategories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
