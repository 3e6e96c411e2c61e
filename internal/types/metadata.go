package types

// Metadata is a string key-value bag, matching the shape of provider-side
// metadata maps.
type Metadata map[string]string

// Get returns the first non-empty value among the given keys. Used to read
// fields that historically existed under both snake_case and camelCase
// spellings.
func (m Metadata) Get(keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != "" {
			return v
		}
	}
	return ""
}
