package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nimbusweather/nimbus/internal/weather"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Location is a stored location without its weather.
type Location struct {
	ID               string            `json:"id"`
	Latitude         float64           `json:"latitude"`
	Longitude        float64           `json:"longitude"`
	TimeZone         string            `json:"timeZone,omitempty"`
	City             string            `json:"city,omitempty"`
	Country          string            `json:"country,omitempty"`
	CountryCode      string            `json:"countryCode,omitempty"`
	Source           string            `json:"source"`
	SecondarySources map[string]string `json:"secondarySources,omitempty"`
	RefreshedAt      *Timestamp        `json:"refreshedAt,omitempty"`
}

// LocationList is the body of GET /v1/locations.
type LocationList struct {
	Items []Location `json:"items"`
}

// NewLocation projects a stored location.
func NewLocation(loc *weather.Location) Location {
	out := Location{
		ID:          loc.ID,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		TimeZone:    loc.TimeZone,
		City:        loc.City,
		Country:     loc.Country,
		CountryCode: loc.CountryCode,
		Source:      loc.Source,
	}
	if len(loc.SecondarySources) > 0 {
		out.SecondarySources = make(map[string]string, len(loc.SecondarySources))
		for f, id := range loc.SecondarySources {
			out.SecondarySources[string(f)] = id
		}
	}
	out.RefreshedAt = NewTimestamp(loc.RefreshedAt)
	return out
}

// CreateLocationRequest is the body of POST /v1/admin/locations.
type CreateLocationRequest struct {
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	TimeZone    string   `json:"timeZone" validate:"omitempty,timezone"`
	City        string   `json:"city" validate:"omitempty,max=128"`
	Country     string   `json:"country" validate:"omitempty,max=128"`
	CountryCode string   `json:"countryCode" validate:"omitempty,iso3166_1_alpha2"`
	Source      string   `json:"source"`

	// SecondarySources maps a feature name to the id of the source
	// providing it.
	SecondarySources map[string]string `json:"secondarySources" validate:"omitempty,dive,keys,oneof=CURRENT AIR_QUALITY POLLEN MINUTELY ALERT NORMALS,endkeys,required"`
}

// Validate validates the request and returns one FieldError per failed rule.
func (r *CreateLocationRequest) Validate() []FieldError {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: err.Error(), Code: "INVALID"}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   jsonField(fe.Namespace()),
			Message: "failed " + fe.Tag() + " validation",
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return out
}

// ToLocation converts the request. Source falls back to defaultSource.
func (r *CreateLocationRequest) ToLocation(defaultSource string) *weather.Location {
	loc := &weather.Location{
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
		TimeZone:    r.TimeZone,
		City:        r.City,
		Country:     r.Country,
		CountryCode: strings.ToUpper(r.CountryCode),
		Source:      r.Source,
	}
	if loc.Source == "" {
		loc.Source = defaultSource
	}
	if len(r.SecondarySources) > 0 {
		loc.SecondarySources = make(map[weather.Feature]string, len(r.SecondarySources))
		for f, id := range r.SecondarySources {
			loc.SecondarySources[weather.Feature(f)] = id
		}
	}
	return loc
}

// jsonField turns a validator namespace such as
// "CreateLocationRequest.SecondarySources[POLLEN]" into "secondarySources[POLLEN]".
func jsonField(namespace string) string {
	_, field, found := strings.Cut(namespace, ".")
	if !found {
		field = namespace
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
