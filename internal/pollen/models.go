// Package pollen holds the per-allergen pollen model and its risk scale.
package pollen

import "errors"

// ErrNoDataForRegion is returned when a vendor has no pollen coverage for a
// location.
var ErrNoDataForRegion = errors.New("no pollen data for region")

// Allergen identifies a pollen or spore type.
type Allergen string

const (
	Alder      Allergen = "ALDER"
	Ash        Allergen = "ASH"
	Birch      Allergen = "BIRCH"
	Chestnut   Allergen = "CHESTNUT"
	Cypress    Allergen = "CYPRESS"
	Grass      Allergen = "GRASS"
	Hazel      Allergen = "HAZEL"
	Hornbeam   Allergen = "HORNBEAM"
	Linden     Allergen = "LINDEN"
	Mold       Allergen = "MOLD"
	Mugwort    Allergen = "MUGWORT"
	Oak        Allergen = "OAK"
	Olive      Allergen = "OLIVE"
	Plane      Allergen = "PLANE"
	Plantain   Allergen = "PLANTAIN"
	Poplar     Allergen = "POPLAR"
	Ragweed    Allergen = "RAGWEED"
	Sorrel     Allergen = "SORREL"
	Tree       Allergen = "TREE"
	Urticaceae Allergen = "URTICACEAE"
	Willow     Allergen = "WILLOW"
)

// AllAllergens returns every allergen in display order.
func AllAllergens() []Allergen {
	return []Allergen{
		Alder, Ash, Birch, Chestnut, Cypress, Grass, Hazel, Hornbeam, Linden, Mold, Mugwort,
		Oak, Olive, Plane, Plantain, Poplar, Ragweed, Sorrel, Tree, Urticaceae, Willow,
	}
}

// RiskLevel represents the pollen risk level.
type RiskLevel string

const (
	RiskNone     RiskLevel = "NONE"
	RiskLow      RiskLevel = "LOW"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

var riskOrder = map[RiskLevel]int{
	RiskNone: 0, RiskLow: 1, RiskModerate: 2, RiskHigh: 3, RiskVeryHigh: 4,
}

// RiskLevelFromIndex converts a 0-4 index to RiskLevel.
func RiskLevelFromIndex(index float64) RiskLevel {
	switch {
	case index <= 0:
		return RiskNone
	case index <= 1:
		return RiskLow
	case index <= 2:
		return RiskModerate
	case index <= 3:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Pollen holds concentrations in grains/m³ (spores/m³ for mold). A nil
// concentration was not reported.
type Pollen struct {
	Alder      *float64 `json:"alder,omitempty"`
	Ash        *float64 `json:"ash,omitempty"`
	Birch      *float64 `json:"birch,omitempty"`
	Chestnut   *float64 `json:"chestnut,omitempty"`
	Cypress    *float64 `json:"cypress,omitempty"`
	Grass      *float64 `json:"grass,omitempty"`
	Hazel      *float64 `json:"hazel,omitempty"`
	Hornbeam   *float64 `json:"hornbeam,omitempty"`
	Linden     *float64 `json:"linden,omitempty"`
	Mold       *float64 `json:"mold,omitempty"`
	Mugwort    *float64 `json:"mugwort,omitempty"`
	Oak        *float64 `json:"oak,omitempty"`
	Olive      *float64 `json:"olive,omitempty"`
	Plane      *float64 `json:"plane,omitempty"`
	Plantain   *float64 `json:"plantain,omitempty"`
	Poplar     *float64 `json:"poplar,omitempty"`
	Ragweed    *float64 `json:"ragweed,omitempty"`
	Sorrel     *float64 `json:"sorrel,omitempty"`
	Tree       *float64 `json:"tree,omitempty"`
	Urticaceae *float64 `json:"urticaceae,omitempty"`
	Willow     *float64 `json:"willow,omitempty"`
}

func (p *Pollen) field(a Allergen) **float64 {
	switch a {
	case Alder:
		return &p.Alder
	case Ash:
		return &p.Ash
	case Birch:
		return &p.Birch
	case Chestnut:
		return &p.Chestnut
	case Cypress:
		return &p.Cypress
	case Grass:
		return &p.Grass
	case Hazel:
		return &p.Hazel
	case Hornbeam:
		return &p.Hornbeam
	case Linden:
		return &p.Linden
	case Mold:
		return &p.Mold
	case Mugwort:
		return &p.Mugwort
	case Oak:
		return &p.Oak
	case Olive:
		return &p.Olive
	case Plane:
		return &p.Plane
	case Plantain:
		return &p.Plantain
	case Poplar:
		return &p.Poplar
	case Ragweed:
		return &p.Ragweed
	case Sorrel:
		return &p.Sorrel
	case Tree:
		return &p.Tree
	case Urticaceae:
		return &p.Urticaceae
	case Willow:
		return &p.Willow
	default:
		return nil
	}
}

// Concentration returns the concentration of an allergen.
func (p *Pollen) Concentration(a Allergen) *float64 {
	if p == nil {
		return nil
	}
	if f := p.field(a); f != nil {
		return *f
	}
	return nil
}

// Set stores the concentration of an allergen.
func (p *Pollen) Set(a Allergen, v *float64) {
	if f := p.field(a); f != nil {
		*f = v
	}
}

// IsValid reports whether any allergen was reported.
func (p *Pollen) IsValid() bool {
	if p == nil {
		return false
	}
	for _, a := range AllAllergens() {
		if p.Concentration(a) != nil {
			return true
		}
	}
	return false
}

// Lower bounds of LOW, MODERATE, HIGH and VERY_HIGH per allergen group.
var (
	treeThresholds  = []float64{1, 15, 90, 1500}
	grassThresholds = []float64{1, 5, 20, 200}
	weedThresholds  = []float64{1, 10, 50, 500}
	moldThresholds  = []float64{1, 6500, 13000, 50000}
)

func thresholds(a Allergen) []float64 {
	switch a {
	case Grass:
		return grassThresholds
	case Mugwort, Plantain, Ragweed, Sorrel, Urticaceae:
		return weedThresholds
	case Mold:
		return moldThresholds
	default:
		return treeThresholds
	}
}

// Index returns the 0-4 risk index of an allergen, or nil when it was not
// reported.
func (p *Pollen) Index(a Allergen) *int {
	c := p.Concentration(a)
	if c == nil {
		return nil
	}
	index := 0
	for _, limit := range thresholds(a) {
		if *c >= limit {
			index++
		}
	}
	return &index
}

// Risk returns the risk level of an allergen, or "" when it was not reported.
func (p *Pollen) Risk(a Allergen) RiskLevel {
	idx := p.Index(a)
	if idx == nil {
		return ""
	}
	return RiskLevelFromIndex(float64(*idx))
}

// MaxRisk returns the highest risk across all reported allergens.
func (p *Pollen) MaxRisk() RiskLevel {
	var highest RiskLevel
	for _, a := range AllAllergens() {
		r := p.Risk(a)
		if r != "" && (highest == "" || riskOrder[r] > riskOrder[highest]) {
			highest = r
		}
	}
	return highest
}
