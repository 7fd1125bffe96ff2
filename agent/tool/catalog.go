package tool

import (
	"context"
	"strings"

	contractx "github.com/vahanlabs/loanflow/agent/contract"
)

var brands = []string{
	"Maruti Suzuki", "Hyundai", "Tata", "Mahindra", "Toyota",
	"Honda", "Ford", "Volkswagen", "Skoda", "Renault",
	"Nissan", "Kia", "MG", "Jeep", "BMW", "Mercedes-Benz",
	"Audi", "Bajaj", "TVS", "Hero", "Royal Enfield", "Yamaha",
}

var modelsByMake = map[string][]string{
	"Maruti Suzuki": {"Alto", "Swift", "Baleno", "Dzire", "Ertiga", "Vitara Brezza", "S-Cross"},
	"Hyundai":       {"i10", "i20", "Verna", "Creta", "Tucson", "Santro"},
	"Tata":          {"Tiago", "Tigor", "Nexon", "Harrier", "Safari"},
	"Honda":         {"City", "Amaze", "Jazz", "CR-V", "Civic"},
	"Toyota":        {"Innova", "Fortuner", "Camry", "Glanza", "Urban Cruiser"},
}

// SearchBrands filters the brand catalog by a case-insensitive substring.
// An empty query returns everything.
func SearchBrands(_ context.Context, data map[string]any) (contractx.ToolResult, error) {
	query := strings.TrimSpace(stringArg(data, "make"))

	var matches []map[string]any
	for _, brand := range brands {
		if query == "" || strings.Contains(strings.ToLower(brand), strings.ToLower(query)) {
			matches = append(matches, map[string]any{"make": brand})
		}
	}

	return contractx.ToolResult{
		Success: true,
		Data: map[string]any{
			"brands": matches,
			"total":  len(matches),
		},
	}, nil
}

// SearchModels filters one brand's model list. The make must match a catalog
// entry exactly (case-insensitive); the model query is a substring filter.
func SearchModels(_ context.Context, data map[string]any) (contractx.ToolResult, error) {
	make := strings.TrimSpace(stringArg(data, "make"))
	if make == "" {
		return contractx.ToolResult{
			Success: false,
			Error:   "Make/brand is required for model search",
		}, nil
	}

	var models []string
	canonical := make
	for name, list := range modelsByMake {
		if strings.EqualFold(name, make) {
			models = list
			canonical = name
			break
		}
	}

	query := strings.TrimSpace(stringArg(data, "model"))
	var matches []map[string]any
	for _, model := range models {
		if query == "" || strings.Contains(strings.ToLower(model), strings.ToLower(query)) {
			matches = append(matches, map[string]any{"make": canonical, "model": model})
		}
	}

	return contractx.ToolResult{
		Success: true,
		Data: map[string]any{
			"models": matches,
			"total":  len(matches),
		},
	}, nil
}
