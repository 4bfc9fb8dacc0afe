package models

// Cookie is a browser cookie in DevTools shape. Values are opaque session
// tokens and must never be logged; log names and counts instead.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"` // epoch seconds, 0 = session cookie
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	SameSite string  `json:"sameSite,omitempty"`
}

// CookieSet is an ordered collection of cookies as captured from a page
// session.
type CookieSet []Cookie

// Names returns the cookie names only, safe for logging.
func (s CookieSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, c := range s {
		names = append(names, c.Name)
	}
	return names
}
