package logistics

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/logihub/logihub/internal/planner"
)

// normalizeOptimizedRoute decodes an /optimize-route response whose
// optimized_route element type varies by backend revision: either name-only
// strings or full location objects. Both shapes collapse to []Location here
// so nothing downstream has to care. Name-only entries are resolved against
// the request's locations to recover coordinates.
func normalizeOptimizedRoute(body []byte, requested []planner.Location) (*planner.OptimizedRoute, error) {
	root := gjson.ParseBytes(body)

	route := &planner.OptimizedRoute{
		TotalDistanceKm:  root.Get("total_distance_km").Float(),
		TotalDurationHrs: root.Get("total_duration_hours").Float(),
		RouteID:          root.Get("route_id").String(),
	}

	// Older backend revisions report minutes instead of hours.
	if route.TotalDurationHrs == 0 {
		if mins := root.Get("total_duration_min").Float(); mins > 0 {
			route.TotalDurationHrs = mins / 60
		}
	}

	byName := make(map[string]planner.Location, len(requested))
	for _, loc := range requested {
		byName[strings.ToLower(loc.Name)] = loc
	}

	root.Get("optimized_route").ForEach(func(_, entry gjson.Result) bool {
		switch entry.Type {
		case gjson.String:
			name := entry.String()
			if loc, ok := byName[strings.ToLower(name)]; ok {
				loc.VisitSequence = 0
				route.Stops = append(route.Stops, loc)
			} else {
				route.Stops = append(route.Stops, planner.Location{Name: name})
			}
		case gjson.JSON:
			route.Stops = append(route.Stops, planner.Location{
				Name: entry.Get("name").String(),
				Lat:  entry.Get("lat").Float(),
				Lon:  entry.Get("lon").Float(),
			})
		default:
			// Ignore nulls and other junk entries.
		}
		return true
	})

	root.Get("weather_alerts").ForEach(func(_, alert gjson.Result) bool {
		if s := alert.String(); s != "" {
			route.WeatherAlerts = append(route.WeatherAlerts, s)
		}
		return true
	})

	root.Get("full_log").ForEach(func(_, entry gjson.Result) bool {
		route.TravelLog = append(route.TravelLog, planner.TravelEntry{
			Type:        entry.Get("type").String(),
			City:        entry.Get("city").String(),
			From:        entry.Get("from").String(),
			To:          entry.Get("to").String(),
			DurationSec: entry.Get("duration_sec").Float(),
			Note:        entry.Get("note").String(),
		})
		return true
	})

	return route, nil
}
