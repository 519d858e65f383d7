package track

import "math"

// Fix is one recorded GPS position. Latitude and longitude are always
// present; the remaining fields are omitted when the receiver never
// reported them. Field order matches the on-disk track file.
type Fix struct {
	Timestamp  string   `yaml:"timestamp" json:"timestamp"`
	Lat        float64  `yaml:"lat" json:"lat"`
	Lon        float64  `yaml:"lon" json:"lon"`
	SpeedKnots *float64 `yaml:"speed_knots,omitempty" json:"speed_knots,omitempty"`
	CourseDeg  *float64 `yaml:"course_deg,omitempty" json:"course_deg,omitempty"`
	AltitudeM  *float64 `yaml:"altitude_m,omitempty" json:"altitude_m,omitempty"`
	NumSats    *int     `yaml:"num_sats,omitempty" json:"num_sats,omitempty"`
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
