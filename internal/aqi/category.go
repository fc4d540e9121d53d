// Package aqi maps AQI values onto the six EPA display bands.
package aqi

// Category is the display classification for a single AQI value.
type Category struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var (
	Good          = Category{"Good", "#00e400"}
	Moderate      = Category{"Moderate", "#ffff00"}
	SensitiveUSG  = Category{"Unhealthy for Sensitive Groups", "#ff7e00"}
	Unhealthy     = Category{"Unhealthy", "#ff0000"}
	VeryUnhealthy = Category{"Very Unhealthy", "#99004c"}
	Hazardous     = Category{"Hazardous", "#7e0023"}
)

// Classify returns the display band for an AQI value. Total over all ints;
// ingestion rejects negative values, so anything below 51 lands in Good.
func Classify(aqi int) Category {
	switch {
	case aqi <= 50:
		return Good
	case aqi <= 100:
		return Moderate
	case aqi <= 150:
		return SensitiveUSG
	case aqi <= 200:
		return Unhealthy
	case aqi <= 300:
		return VeryUnhealthy
	default:
		return Hazardous
	}
}

// Band is one row of the category legend shown under the calendar view.
type Band struct {
	Category
	Range       string `json:"range"`
	Description string `json:"description"`
}

// Bands lists the six bands in ascending AQI order.
var Bands = []Band{
	{Good, "0-50", "Air quality is satisfactory, and air pollution poses little or no risk."},
	{Moderate, "51-100", "Air quality is acceptable. However, there may be a risk for some people, particularly those who are unusually sensitive to air pollution."},
	{SensitiveUSG, "101-150", "Members of sensitive groups may experience health effects. The general public is less likely to be affected."},
	{Unhealthy, "151-200", "Some members of the general public may experience health effects; members of sensitive groups may experience more serious health effects."},
	{VeryUnhealthy, "201-300", "Health alert: The risk of health effects is increased for everyone."},
	{Hazardous, "301+", "Health warning of emergency conditions: everyone is more likely to be affected."},
}
