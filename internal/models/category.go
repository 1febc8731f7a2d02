package models

// Category names a restaurant or product category. Purely referential.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return &ValidationError{Entity: "category", Field: "name", Reason: "required"}
	}
	return nil
}
