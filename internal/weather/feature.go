package weather

import (
	"fmt"
	"slices"
	"strings"
)

// Feature is an optional weather category a source can provide on top of
// the forecast. The forecast itself (daily and hourly) is always implied.
type Feature string

const (
	FeatureCurrent    Feature = "CURRENT"
	FeatureAirQuality Feature = "AIR_QUALITY"
	FeaturePollen     Feature = "POLLEN"
	FeatureMinutely   Feature = "MINUTELY"
	FeatureAlert      Feature = "ALERT"
	FeatureNormals    Feature = "NORMALS"
)

// AllFeatures returns every feature.
func AllFeatures() []Feature {
	return []Feature{FeatureCurrent, FeatureAirQuality, FeaturePollen, FeatureMinutely, FeatureAlert, FeatureNormals}
}

// ParseFeature parses a feature name, case-insensitively.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(AllFeatures(), f) {
		return "", fmt.Errorf("unknown feature %q", s)
	}
	return f, nil
}

// Features is a set of requested features.
type Features map[Feature]struct{}

// NewFeatures builds a feature set.
func NewFeatures(fs ...Feature) Features {
	set := make(Features, len(fs))
	for _, f := range fs {
		set[f] = struct{}{}
	}
	return set
}

// Has reports whether f is in the set.
func (s Features) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// Intersect returns the features present in both sets.
func (s Features) Intersect(other []Feature) Features {
	out := make(Features)
	for _, f := range other {
		if s.Has(f) {
			out[f] = struct{}{}
		}
	}
	return out
}

// List returns the features in canonical order.
func (s Features) List() []Feature {
	var out []Feature
	for _, f := range AllFeatures() {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}
