package pricing

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Banders2/CheapPlayitasApi/internal/catalog"
)

// adultAge is the age used for every traveler when pricing a party.
const adultAge = "18"

// MonthsFrom returns the "YYYY-MM" tokens from now's month through December
// of next year, in increasing order.
func MonthsFrom(now time.Time) []string {
	cur := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year()+1, time.December, 1, 0, 0, 0, 0, time.UTC)

	var months []string
	for !cur.After(end) {
		months = append(months, cur.Format("2006-01"))
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}

// PaxAges encodes the traveler-age vector for n travelers as the
// comma-joined list the upstream API expects.
func PaxAges(n int) string {
	ages := make([]string, n)
	for i := range ages {
		ages[i] = adultAge
	}
	return strings.Join(ages, ",")
}

// BookingLink builds the deep link into the booking flow, or "" when the
// hotel has no booking page or the date is missing.
func BookingLink(baseURL string, h catalog.Hotel, airport, date string, days int, paxAges string) string {
	if baseURL == "" || h.BookingPath == "" || date == "" {
		return ""
	}
	q := url.Values{
		"departureAirport": {airport},
		"departureDate":    {date},
		"duration":         {strconv.Itoa(days)},
		"paxAges":          {paxAges},
	}
	return strings.TrimRight(baseURL, "/") + h.BookingPath + "?" + q.Encode()
}
