// Package featureflags provides runtime switches for weather sources,
// features and background refresh.
package featureflags

import (
	"strings"
	"time"
)

// Well-known feature flag keys.
const (
	// FlagCachedOnlyWeather serves stored weather without refreshing it on
	// read, whatever its age.
	FlagCachedOnlyWeather = "cached_only_weather"

	// FlagDisableScheduledRefresh pauses the periodic refresh of all
	// locations. On-demand refreshes still run.
	FlagDisableScheduledRefresh = "disable_scheduled_refresh"
)

// Prefixes of the per-source and per-feature kill switches. The flag key is
// the prefix followed by the source id or the lower-case feature name, for
// example "disable_source_metno" or "disable_feature_pollen".
const (
	disableSourcePrefix  = "disable_source_"
	disableFeaturePrefix = "disable_feature_"
)

const maxKeyLength = 64

// SourceFlag returns the key of the flag disabling a source.
func SourceFlag(id string) string {
	return disableSourcePrefix + strings.ToLower(id)
}

// FeatureFlag returns the key of the flag disabling a weather feature.
func FeatureFlag(feature string) string {
	return disableFeaturePrefix + strings.ToLower(feature)
}

// ValidKey reports whether key is a flag this service understands: one of
// the well-known keys or a source or feature switch. Keys are lower-case
// snake case.
func ValidKey(key string) bool {
	if key == "" || len(key) > maxKeyLength {
		return false
	}
	for _, c := range key {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}

	switch key {
	case FlagCachedOnlyWeather, FlagDisableScheduledRefresh:
		return true
	}
	for _, prefix := range []string{disableSourcePrefix, disableFeaturePrefix} {
		if rest, ok := strings.CutPrefix(key, prefix); ok && rest != "" {
			return true
		}
	}
	return false
}

// Flag is a switch and the time it last changed. Values are stored as JSON,
// so numbers decode as float64.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FlagList represents a list of feature flags.
type FlagList struct {
	Items []Flag `json:"items"`
}

// FlagUpdate represents a single flag update request.
type FlagUpdate struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// FlagUpdateRequest represents a request to update feature flags.
type FlagUpdateRequest struct {
	Updates []FlagUpdate `json:"updates"`
	Reason  string       `json:"reason"`
}

// BoolValue returns the flag value as a boolean, or defaultValue when the
// flag is nil or holds something else. Non-zero numbers count as true.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	switch v := f.Value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(v) {
		case "true", "on", "1":
			return true
		case "false", "off", "0":
			return false
		}
	}
	return defaultValue
}

func (f *Flag) clone() *Flag {
	c := *f
	return &c
}

// DefaultFlags returns the flags in effect when the store has none. Source
// and feature switches have no defaults; an absent switch means enabled.
func DefaultFlags() map[string]*Flag {
	return map[string]*Flag{
		FlagCachedOnlyWeather:       {Key: FlagCachedOnlyWeather, Value: false},
		FlagDisableScheduledRefresh: {Key: FlagDisableScheduledRefresh, Value: false},
	}
}
