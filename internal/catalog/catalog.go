// Package catalog holds the fixed travel catalogue: the hotels we price,
// the departure airports, and the trip-duration buckets.
package catalog

// Hotel is one bookable property in the upstream catalogue.
type Hotel struct {
	Name              string // display name shown to clients
	HotelCode         string // numeric catalogue identifier
	AccommodationCode string // accommodation identifier used by product lookups
	BookingPath       string // relative booking-page path, "" if none
}

// Hotels returns the hand-curated hotel list. The list is read-only for the
// process lifetime.
func Hotels() []Hotel {
	return []Hotel{
		{
			Name:              "Playitas Resort",
			HotelCode:         "155",
			AccommodationCode: "PLAYITAS",
			BookingPath:       "/spanien/de-kanariske-oer/fuerteventura/playitas-resort",
		},
		{
			Name:              "Playitas Annexe",
			HotelCode:         "156",
			AccommodationCode: "PLAYITAS-ANNEXE",
			BookingPath:       "/spanien/de-kanariske-oer/fuerteventura/playitas-annexe",
		},
	}
}

// Airports returns the departure airport codes to query.
func Airports() []string {
	return []string{"CPH", "BLL", "AAL"}
}

// DurationBucket is one trip-length category. The price calendar is queried
// at Days; long buckets are then expanded into exact 21- and 28-day variants
// per departure date.
type DurationBucket struct {
	Days int
	Long bool
}

// Durations returns the fixed duration buckets.
func Durations() []DurationBucket {
	return []DurationBucket{
		{Days: 7},
		{Days: 14},
		{Days: 21, Long: true},
	}
}
