package ambee

import (
	"time"

	"github.com/nimbusweather/nimbus/internal/pollen"
	"github.com/nimbusweather/nimbus/internal/weather"
)

var species = map[string]pollen.Allergen{
	"Alder":               pollen.Alder,
	"Birch":               pollen.Birch,
	"Cypress":             pollen.Cypress,
	"Hazel":               pollen.Hazel,
	"Oak":                 pollen.Oak,
	"Plane":               pollen.Plane,
	"Poplar / Cottonwood": pollen.Poplar,
	"Mugwort":             pollen.Mugwort,
	"Nettle":              pollen.Urticaceae,
	"Ragweed":             pollen.Ragweed,
}

// toPollen maps the group totals and the species Ambee shares with the
// pollen model.
func toPollen(d *pollenData) *pollen.Pollen {
	pl := &pollen.Pollen{}
	pl.Set(pollen.Grass, d.Count.GrassPollen)
	pl.Set(pollen.Tree, d.Count.TreePollen)
	for _, group := range d.Species {
		for name, count := range group {
			if a, ok := species[name]; ok {
				pl.Set(a, count)
			}
		}
	}
	if !pl.IsValid() {
		return nil
	}
	return pl
}

// timeOf returns when an entry applies. Latest entries carry only their
// update time.
func timeOf(d *pollenData, now time.Time) time.Time {
	if d.Time > 0 {
		return time.Unix(d.Time, 0)
	}
	if t, err := time.Parse(time.RFC3339, d.UpdatedAt); err == nil {
		return t
	}
	return now
}

// convert folds hourly entries into one daily pollen value per local day,
// keeping the highest count of each allergen.
func convert(entries []pollenData, tz *time.Location, now time.Time) *weather.Wrapper {
	days := make(map[time.Time]*pollen.Pollen)
	for i := range entries {
		pl := toPollen(&entries[i])
		if pl == nil {
			continue
		}
		day := weather.LocalMidnight(timeOf(&entries[i], now), tz)
		acc, ok := days[day]
		if !ok {
			days[day] = pl
			continue
		}
		for _, a := range pollen.AllAllergens() {
			acc.Set(a, weather.Max(acc.Concentration(a), pl.Concentration(a)))
		}
	}

	w := &weather.Wrapper{}
	for date, pl := range days {
		w.Daily = append(w.Daily, weather.Daily{Date: date, Pollen: pl})
	}
	w.Normalize()
	return w
}
