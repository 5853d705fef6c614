package domain

// Place is a geocoder suggestion used to fill the trip and stop forms.
// It is never authoritative: the user may still type any text.
type Place struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ShortName   string      `json:"short_name"`
	Coordinates Coordinates `json:"coordinates"`
}
