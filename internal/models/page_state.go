package models

// PageState is the subset of the site's embedded state blob the pipeline
// consumes. Record contents stay untyped: the site renames fields without
// notice, and normalization resolves them through alias chains.
type PageState struct {
	UserModule UserModule                `json:"UserModule"`
	ItemModule map[string]map[string]any `json:"ItemModule"`
}

// UserModule holds profile and stats records keyed by the same profile key.
type UserModule struct {
	Users map[string]map[string]any `json:"users"`
	Stats map[string]map[string]any `json:"stats"`
}
