package model

// Location is a geographic point as stored in the site documents.
type Location struct {
	Lat float64 `json:"__lat__"`
	Lon float64 `json:"__lon__"`
}

// TimeStamp wraps a serialized timestamp as stored in the site documents.
type TimeStamp struct {
	Time string `json:"__time__"`
}

// Site describes one bookable camper area.  A Site is loaded once when a
// visitor scans the area's code and stays unchanged for the rest of the
// wizard unless it is fetched again.
//
// The boolean flags drive the wizard:
//  ReservationsAllowed / OnlyWaterOption – start with the Choice step instead of Welcome.
//  ApplyMaxNrOfNights – reject stays longer than MaxNrOfNights.
//  MaxPeriod          – also limit the nights spent within MaxPeriodPeriod days.
//  ElectricityOption  – offer electricity at PriceForElectricity per night.
//  PayingSite         – prices apply; when false the stay is free.
type Site struct {
	ID                                   string     `json:"id"`
	SiteID                               string     `json:"siteID"`
	Name                                 string     `json:"name"`
	Description                          string     `json:"description,omitempty"`
	MaxPeriod                            bool       `json:"maxPeriod"`
	AddressRegistrationRequired          bool       `json:"addressRegistrationRequired"`
	AlgoVersion                          string     `json:"algoVersion"`
	ApplyMaxNrOfNights                   bool       `json:"applyMaxNrOfNights"`
	AutomaticGate                        bool       `json:"automaticGate"`
	AutomaticGatePIN                     bool       `json:"automaticGatePIN"`
	AutomaticGatePhoneNumber             string     `json:"automaticGatePhoneNumber"`
	AvailablePlaces                      int        `json:"availablePlaces"`
	CheckAvailablePlaces                 bool       `json:"checkAvailablePlaces"`
	CheckoutTime                         int        `json:"checkoutTime"`
	CreationDate                         TimeStamp  `json:"creationDate"`
	ElectricityOption                    bool       `json:"electricityOption"`
	Email                                string     `json:"email"`
	EmailCopy                            bool       `json:"emailCopy"`
	FreeVisitors                         int        `json:"freeVisitors"`
	HasCheckoutTime                      bool       `json:"hasCheckoutTime"`
	Location                             Location   `json:"location"`
	LowSeasonEnd                         int        `json:"lowSeasonEnd"`
	LowSeasonPrice                       float64    `json:"lowSeasonPrice"`
	LowSeasonStart                       int        `json:"lowSeasonStart"`
	MaxNrOfNights                        int        `json:"maxNrOfNights"`
	MaxPeriodPeriod                      int        `json:"maxPeriodPeriod"`
	MinDaysReservationCancellationRefund int        `json:"minDaysReservationCancellationRefund"`
	OnlyWaterOption                      bool       `json:"onlyWaterOption"`
	PassportNumberRegistrationRequired   bool       `json:"passportNumberRegistrationRequired"`
	PayingSite                           bool       `json:"payingSite"`
	PriceForElectricity                  float64    `json:"priceForElectricity"`
	PriceForWater                        float64    `json:"priceForWater"`
	PricePerNight                        float64    `json:"pricePerNight"`
	PricePerVisitor                      float64    `json:"pricePerVisitor"`
	ReservationsAllowed                  bool       `json:"reservationsAllowed"`
	ReservationsCancellationAllowed      bool       `json:"reservationsCancellationAllowed"`
	SeasonalPricing                      bool       `json:"seasonalPricing"`
	SplitAccount                         string     `json:"splitAccount"`
	SplitAmount                          float64    `json:"splitAmount"`
	Status                               string     `json:"status"`
	TourismTax                           bool       `json:"tourismTax"`
	TourismTaxOnlyAdults                 bool       `json:"tourismTaxOnlyAdults"`
	TourismTaxPerVisitor                 float64    `json:"tourismTaxPerVisitor"`
	VisitorRegistrationRequired          bool       `json:"visitorRegistrationRequired"`
	WaterDevice                          string     `json:"waterDevice"`
	WifiCodes                            bool       `json:"wifiCodes"`
}

// StartsWithChoice reports whether the wizard for this site opens on the
// Choice step (overnight / water only / reservation) rather than Welcome.
func (s *Site) StartsWithChoice() bool {
	return s.ReservationsAllowed || s.OnlyWaterOption
}
