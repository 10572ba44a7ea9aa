package taxonomy

import "github.com/crimson-sun/triage/internal/model"

// DefaultRoots returns the disaster-response category tree. Flattened in
// pre-order it matches the column order of the upstream message store.
func DefaultRoots() []*model.TaxonomyNode {
	return []*model.TaxonomyNode{
		{Name: "related"},
		{Name: "request"},
		{Name: "offer"},
		{
			Name: "aid_related",
			Children: []*model.TaxonomyNode{
				{Name: "medical_help"},
				{Name: "medical_products"},
				{Name: "search_and_rescue"},
				{Name: "security"},
				{Name: "military"},
				{Name: "child_alone"},
				{Name: "water"},
				{Name: "food"},
				{Name: "shelter"},
				{Name: "clothing"},
				{Name: "money"},
				{Name: "missing_people"},
				{Name: "refugees"},
				{Name: "death"},
				{Name: "other_aid"},
			},
		},
		{
			Name: "infrastructure_related",
			Children: []*model.TaxonomyNode{
				{Name: "transport"},
				{Name: "buildings"},
				{Name: "electricity"},
				{Name: "tools"},
				{Name: "hospitals"},
				{Name: "shops"},
				{Name: "aid_centers"},
				{Name: "other_infrastructure"},
			},
		},
		{
			Name: "weather_related",
			Children: []*model.TaxonomyNode{
				{Name: "floods"},
				{Name: "storm"},
				{Name: "fire"},
				{Name: "earthquake"},
				{Name: "cold"},
				{Name: "other_weather"},
			},
		},
		{Name: "direct_report"},
	}
}

// Default returns the flattened default taxonomy.
func Default() *Taxonomy {
	t, err := New(DefaultRoots())
	if err != nil {
		panic("taxonomy: invalid default tree: " + err.Error())
	}
	return t
}
