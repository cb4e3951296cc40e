package domain

// Recipe is one dish as returned by the recipe model.
type Recipe struct {
	Name         string   `json:"recipe_name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

// Image is a generated picture and its encoding.
type Image struct {
	Data     []byte
	MimeType string
}
