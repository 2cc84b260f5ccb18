package synth

import "time"

type ForecastDay struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Weather     string `json:"weather"`
	DemandLevel string `json:"demand_level"`
}

type ForecastView struct {
	Days []ForecastDay `json:"days"`
}

var (
	weatherKinds = []string{"Clear", "Clouds", "Rain", "Drizzle"}
	demandLevels = []string{"low", "mid", "high"}
)

// WeeklyForecast synthesizes a 7-day demand/weather outlook starting at day.
func WeeklyForecast(identityID int64, day time.Time) ForecastView {
	rng := source(identityID, TopicForecast, day)

	days := make([]ForecastDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := day.AddDate(0, 0, i)
		days = append(days, ForecastDay{
			Date:        d.Format("2006-01-02"),
			Weekday:     d.Format("Mon"),
			Weather:     weatherKinds[rng.Intn(len(weatherKinds))],
			DemandLevel: demandLevels[rng.Intn(len(demandLevels))],
		})
	}
	return ForecastView{Days: days}
}
