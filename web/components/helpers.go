package components

import (
	"net/url"
	"strconv"

	"prodimport/internal/models"
)

type navItem struct {
	href  string
	label string
}

var nav = []navItem{
	{"/", "Import"},
	{"/products", "Products"},
	{"/webhooks", "Webhooks"},
}

type selectOption struct {
	value string
	label string
}

var activeOptions = []selectOption{
	{"", "Any"},
	{"true", "Active"},
	{"false", "Inactive"},
}

// percentText shows the percent as reported, without rounding.
func percentText(percent float64) string {
	return strconv.FormatFloat(percent, 'f', -1, 64) + "%"
}

func pageLink(filter models.ProductFilter, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	for key, value := range map[string]string{
		"sku":         filter.SKU,
		"name":        filter.Name,
		"description": filter.Description,
		"active":      filter.Active,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	return "/products?" + q.Encode()
}
