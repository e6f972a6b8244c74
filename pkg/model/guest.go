package model

type GuestProfile struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Nationality string `json:"nationality,omitempty"`
	CountryFlag string `json:"countryFlag,omitempty"`
}
