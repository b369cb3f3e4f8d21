// Package pricing computes the payment summary shown before checkout.
package pricing

import (
	"math"
	"time"

	"github.com/iliyamo/camper-area-registration/internal/model"
)

// Quote is a price breakdown in euro cents.
type Quote struct {
	Stay               int64 `json:"stay"`
	Electricity        int64 `json:"electricity"`
	AdditionalVisitors int64 `json:"additionalVisitors"`
	TourismTax         int64 `json:"tourismTax"`
	Water              int64 `json:"water"`
	Total              int64 `json:"total"`
}

func cents(euros float64) int64 { return int64(math.Round(euros * 100)) }

// NightlyPrice is the price of one night at site on the given day.
// lowSeasonStart and lowSeasonEnd are month numbers; a range whose end
// is before its start wraps over the new year.
func NightlyPrice(site *model.Site, day time.Time) float64 {
	if !site.SeasonalPricing || site.LowSeasonStart < 1 || site.LowSeasonEnd < 1 {
		return site.PricePerNight
	}
	m := int(day.Month())
	start, end := site.LowSeasonStart, site.LowSeasonEnd
	var inLow bool
	if start <= end {
		inLow = m >= start && m <= end
	} else {
		inLow = m >= start || m <= end
	}
	if inLow {
		return site.LowSeasonPrice
	}
	return site.PricePerNight
}

// Compute prices booking at site for a stay starting at arrival.
func Compute(site *model.Site, booking model.BookingDetails, arrival time.Time) Quote {
	var q Quote
	if site == nil || !site.PayingSite {
		return q
	}
	if booking.StayType == model.StayWater {
		q.Water = cents(site.PriceForWater)
		q.Total = q.Water
		return q
	}

	nights := int64(max(booking.NrOfNights, 1))
	visitors := int64(max(booking.NrOfVisitors, 1))

	for i := int64(0); i < nights; i++ {
		q.Stay += cents(NightlyPrice(site, arrival.AddDate(0, 0, int(i))))
	}
	if booking.UseElectricity && site.ElectricityOption {
		q.Electricity = nights * cents(site.PriceForElectricity)
	}
	if extra := visitors - int64(site.FreeVisitors); extra > 0 {
		q.AdditionalVisitors = extra * nights * cents(site.PricePerVisitor)
	}
	if site.TourismTax {
		q.TourismTax = visitors * nights * cents(site.TourismTaxPerVisitor)
	}
	q.Total = q.Stay + q.Electricity + q.AdditionalVisitors + q.TourismTax
	return q
}

// Euros formats cents as a decimal euro amount ("12.50").
func Euros(c int64) float64 { return float64(c) / 100 }
