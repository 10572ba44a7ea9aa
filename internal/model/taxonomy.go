package model

// TaxonomyNode is one category in the label tree. Parent categories are
// labels in their own right ("weather_related" groups "floods", "storm").
type TaxonomyNode struct {
	Name     string
	Children []*TaxonomyNode
}
