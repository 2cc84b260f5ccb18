package synth

import "time"

type HeatPoint struct {
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Intensity      float64  `json:"intensity"`
	TopRestaurants []string `json:"top_restaurants"`
}

type HeatmapView struct {
	Points []HeatPoint `json:"points"`
}

// Fixed spot templates around the Shibuya area; coordinates and intensity
// are perturbed per identity/day, the restaurant lists are static.
var heatmapSpots = []struct {
	Lat, Lng    float64
	Restaurants []string
}{
	{35.659, 139.700, []string{"Ichiran", "Uobei", "Afuri"}},
	{35.647, 139.709, []string{"Shake Shack", "Burger Mania"}},
	{35.667, 139.706, []string{"Torikizoku", "Hidakaya"}},
}

// Heatmap synthesizes demand hotspots for one identity and day.
func Heatmap(identityID int64, day time.Time) HeatmapView {
	rng := source(identityID, TopicHeatmap, day)

	points := make([]HeatPoint, len(heatmapSpots))
	for i, spot := range heatmapSpots {
		points[i] = HeatPoint{
			Lat:            roundTo(spot.Lat+floatIn(rng, -0.004, 0.004), 3),
			Lng:            roundTo(spot.Lng+floatIn(rng, -0.004, 0.004), 3),
			Intensity:      roundTo(floatIn(rng, 0.3, 0.95), 2),
			TopRestaurants: spot.Restaurants,
		}
	}
	return HeatmapView{Points: points}
}
