package claims

// Address is the structured address claim (OpenID Connect Core §5.1.1).
// Members that are absent or not strings are left empty.
type Address struct {
	Formatted     string `json:"formatted,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	Locality      string `json:"locality,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
}

func addressFromMap(m map[string]any) Address {
	get := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	return Address{
		Formatted:     get("formatted"),
		StreetAddress: get("street_address"),
		Locality:      get("locality"),
		Region:        get("region"),
		PostalCode:    get("postal_code"),
		Country:       get("country"),
	}
}
