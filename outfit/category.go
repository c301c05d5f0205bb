package outfit

import (
	"wewearapi/languageutil"
	"wewearapi/models"
)

type Category string

const (
	CategoryTop       Category = "tops"
	CategoryBottom    Category = "bottoms"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryDress     Category = "dresses"
	CategoryAccessory Category = "accessories"
)

// Categories is the order categories are presented in prompts and reasoning.
var Categories = []Category{CategoryTop, CategoryBottom, CategoryOuterwear, CategoryShoes, CategoryDress, CategoryAccessory}

var categoryByType = map[string]Category{
	"shirt":    CategoryTop,
	"t-shirt":  CategoryTop,
	"blouse":   CategoryTop,
	"sweater":  CategoryTop,
	"tank-top": CategoryTop,
	"pants":    CategoryBottom,
	"jeans":    CategoryBottom,
	"shorts":   CategoryBottom,
	"skirt":    CategoryBottom,
	"leggings": CategoryBottom,
	"jacket":   CategoryOuterwear,
	"coat":     CategoryOuterwear,
	"cardigan": CategoryOuterwear,
	"blazer":   CategoryOuterwear,
	"shoes":    CategoryShoes,
	"sneakers": CategoryShoes,
	"boots":    CategoryShoes,
	"sandals":  CategoryShoes,
	"heels":    CategoryShoes,
	"dress":    CategoryDress,
}

// CategoryOf maps a free-form item type to its category. Unknown types are accessories.
func CategoryOf(itemType string) Category {
	if c, ok := categoryByType[languageutil.Canonical(itemType)]; ok {
		return c
	}
	return CategoryAccessory
}

func GroupByCategory(items []models.ClothingItem) map[Category][]models.ClothingItem {
	groups := make(map[Category][]models.ClothingItem, len(Categories))
	for _, item := range items {
		c := CategoryOf(item.Type)
		groups[c] = append(groups[c], item)
	}
	return groups
}
