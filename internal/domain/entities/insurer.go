package entities

// Insurer is an insurance provider a facility accepts. Insurers are
// reference data and only ever filtered by name.
type Insurer struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone,omitempty"`
	Fax    string   `json:"fax,omitempty"`
	Emails []string `json:"emails,omitempty"`
}
