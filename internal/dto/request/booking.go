package request

type CreateBookingRequest struct {
	PackageID         string  `json:"package_id" validate:"required,uuid"`
	TravelDate        string  `json:"travel_date" validate:"required,datetime=2006-01-02"`
	NumberOfTravelers int     `json:"number_of_travelers" validate:"required,min=1"`
	SpecialRequests   *string `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}

// StatsRequest bounds an aggregate by an optional date window.
type StatsRequest struct {
	From string `validate:"omitempty,datetime=2006-01-02"`
	To   string `validate:"omitempty,datetime=2006-01-02"`
}
