package synth

import "time"

type TimelineStep struct {
	Time  string `json:"time"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

type RouteView struct {
	RecommendedArea string         `json:"recommended_area"`
	PredictedIncome int            `json:"predicted_income"`
	Timeline        []TimelineStep `json:"timeline"`
}

// Static configuration: the template set is fixed, only order and timing
// are drawn per identity/day.
var routeAreas = []string{"Shibuya", "Ebisu", "Shinjuku", "Meguro", "Daikanyama", "Nakameguro"}

var routeSteps = []struct {
	Label string
	Icon  string
}{
	{"Stay in Dogenzaka cluster", "pin"},
	{"Reposition to Ebisu", "move"},
	{"Peak around station", "bolt"},
	{"Wait near hotspot", "pause"},
	{"Shift to East Gate", "move"},
	{"Loop back toward station", "bolt"},
}

// DailyRoute synthesizes the recommended route for one identity and day: a
// recommended area, a predicted income and a 30-minute timeline built from
// the fixed step templates in a perturbed order.
func DailyRoute(identityID int64, day time.Time) RouteView {
	rng := source(identityID, TopicRoute, day)

	area := routeAreas[rng.Intn(len(routeAreas))]
	income := intIn(rng, 9000, 18500)
	startHour := intIn(rng, 9, 14)

	base := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
	order := rng.Perm(len(routeSteps))
	timeline := make([]TimelineStep, len(routeSteps))
	for i, j := range order {
		at := base.Add(time.Duration(30*(i+1)) * time.Minute)
		timeline[i] = TimelineStep{
			Time:  at.Format("15:04"),
			Label: routeSteps[j].Label,
			Icon:  routeSteps[j].Icon,
		}
	}

	return RouteView{
		RecommendedArea: area,
		PredictedIncome: income,
		Timeline:        timeline,
	}
}
