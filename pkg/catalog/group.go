package catalog

import (
	"sort"
	"strings"
)

// PreferredBrand is listed before every other brand.
const PreferredBrand = "Sofrel"

const unknownBrand = "Other"

// CategoryGroup is the modules of one category within a brand.
type CategoryGroup struct {
	Category Category     `json:"category"`
	Modules  []ModuleSpec `json:"modules"`
}

// BrandGroup is the modules of one brand, grouped by category.
type BrandGroup struct {
	Brand      string          `json:"brand"`
	Categories []CategoryGroup `json:"categories"`
}

var categoryOrder = map[Category]int{
	CategoryController: 0,
	CategoryCard:       1,
	CategoryExtension:  2,
}

// Group arranges specs for display: PreferredBrand first, remaining brands
// alphabetically, categories controller/card/extension, modules by GUI order
// then identifier.
func Group(specs []ModuleSpec) []BrandGroup {
	byBrand := make(map[string]map[Category][]ModuleSpec)
	for _, s := range specs {
		brand := strings.TrimSpace(s.Brand)
		if brand == "" {
			brand = unknownBrand
		}
		cats, ok := byBrand[brand]
		if !ok {
			cats = make(map[Category][]ModuleSpec)
			byBrand[brand] = cats
		}
		cats[s.Category] = append(cats[s.Category], s)
	}

	brands := make([]string, 0, len(byBrand))
	for b := range byBrand {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		pi := strings.EqualFold(brands[i], PreferredBrand)
		pj := strings.EqualFold(brands[j], PreferredBrand)
		if pi != pj {
			return pi
		}
		return strings.ToLower(brands[i]) < strings.ToLower(brands[j])
	})

	out := make([]BrandGroup, 0, len(brands))
	for _, b := range brands {
		cats := byBrand[b]
		keys := make([]Category, 0, len(cats))
		for c := range cats {
			keys = append(keys, c)
		}
		sort.Slice(keys, func(i, j int) bool {
			oi, oj := rankCategory(keys[i]), rankCategory(keys[j])
			if oi != oj {
				return oi < oj
			}
			return keys[i] < keys[j]
		})

		group := BrandGroup{Brand: b, Categories: make([]CategoryGroup, 0, len(keys))}
		for _, c := range keys {
			mods := cats[c]
			sortByGUIOrder(mods)
			group.Categories = append(group.Categories, CategoryGroup{Category: c, Modules: mods})
		}
		out = append(out, group)
	}
	return out
}

func rankCategory(c Category) int {
	if r, ok := categoryOrder[c]; ok {
		return r
	}
	return len(categoryOrder)
}

func sortByGUIOrder(specs []ModuleSpec) {
	sort.SliceStable(specs, func(i, j int) bool {
		if specs[i].GUIOrder != specs[j].GUIOrder {
			return specs[i].GUIOrder < specs[j].GUIOrder
		}
		return specs[i].ID < specs[j].ID
	})
}
