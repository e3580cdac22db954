package models

// Category slugs as used in API paths, mirrored from the server's routing table
const (
	SlugProductDesign    = "product-design"
	SlugExecutionMetrics = "execution-metrics"
	SlugProductStrategy  = "product-strategy"
	SlugBehavioral       = "behavioral"
	SlugEstimation       = "estimation-pricing"
	SlugTechnical        = "technical"
	SlugOther            = "other"
)

// categoryNames maps URL slugs to display names
var categoryNames = map[string]string{
	SlugProductDesign:    "Product Design",
	SlugExecutionMetrics: "Execution & Metrics",
	SlugProductStrategy:  "Product Strategy",
	SlugBehavioral:       "Behavioral",
	SlugEstimation:       "Estimation & Pricing",
	SlugTechnical:        "Technical",
	SlugOther:            "Other",
}

// CategorySlugs lists all known category slugs in display order
var CategorySlugs = []string{
	SlugProductDesign,
	SlugExecutionMetrics,
	SlugProductStrategy,
	SlugBehavioral,
	SlugEstimation,
	SlugTechnical,
	SlugOther,
}

// CategoryName resolves a slug to its display name.
// Unknown slugs are passed through unchanged, matching the server's behavior.
func CategoryName(slug string) string {
	if name, ok := categoryNames[slug]; ok {
		return name
	}
	return slug
}

// IsKnownCategory reports whether the slug is in the routing table
func IsKnownCategory(slug string) bool {
	_, ok := categoryNames[slug]
	return ok
}
