package request

type CreatePackageRequest struct {
	Destination      string   `json:"destination" validate:"required,max=100"`
	Description      *string  `json:"description,omitempty"`
	Price            string   `json:"price" validate:"required,money"`
	Duration         int      `json:"duration" validate:"required,min=1"`
	IncludedServices *string  `json:"included_services,omitempty"`
	Images           []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Availability     *bool    `json:"availability,omitempty"`
	MaxTravelers     int      `json:"max_travelers" validate:"required,min=1"`
	DifficultyLevel  *string  `json:"difficulty_level,omitempty" validate:"omitempty,oneof=easy moderate hard"`
	Season           *string  `json:"season,omitempty" validate:"omitempty,max=50"`
}

type UpdatePackageRequest struct {
	Destination      *string  `json:"destination,omitempty" validate:"omitempty,max=100"`
	Description      *string  `json:"description,omitempty"`
	Price            *string  `json:"price,omitempty" validate:"omitempty,money"`
	Duration         *int     `json:"duration,omitempty" validate:"omitempty,min=1"`
	IncludedServices *string  `json:"included_services,omitempty"`
	Images           []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Availability     *bool    `json:"availability,omitempty"`
	MaxTravelers     *int     `json:"max_travelers,omitempty" validate:"omitempty,min=1"`
	DifficultyLevel  *string  `json:"difficulty_level,omitempty" validate:"omitempty,oneof=easy moderate hard"`
	Season           *string  `json:"season,omitempty" validate:"omitempty,max=50"`
}

// PackageListRequest is read from the query string.
type PackageListRequest struct {
	PaginatedRequest
	Search        string `validate:"omitempty,max=100"`
	MinPrice      string `validate:"omitempty,money"`
	MaxPrice      string `validate:"omitempty,money"`
	MinDuration   int    `validate:"omitempty,min=1"`
	MaxDuration   int    `validate:"omitempty,min=1"`
	AvailableOnly bool
}

type AvailableDatesRequest struct {
	StartDate string `validate:"required,datetime=2006-01-02"`
	EndDate   string `validate:"required,datetime=2006-01-02"`
}
