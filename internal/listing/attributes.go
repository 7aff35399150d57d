package listing

// Attribute is a field a listing in a category should carry.
type Attribute struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // "text", "number" or "select"
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"`
}

var conditionAttribute = Attribute{
	Name:     "condition",
	Label:    "Condition",
	Type:     "select",
	Required: true,
	Options:  []string{"new", "like new", "very good", "good", "fair", "poor", "used"},
}

var brandAttribute = Attribute{Name: "brand", Label: "Brand", Type: "text"}

var categoryAttributes = map[string][]Attribute{
	"Computers": {
		{Name: "brand", Label: "Brand", Type: "text", Required: true},
		{Name: "model", Label: "Model", Type: "text"},
		{Name: "processor", Label: "Processor", Type: "text"},
		{Name: "memory", Label: "Memory", Type: "text"},
		{Name: "storage", Label: "Storage", Type: "text"},
		{Name: "screen", Label: "Screen size", Type: "text"},
	},
	"Phones": {
		{Name: "brand", Label: "Brand", Type: "text", Required: true},
		{Name: "model", Label: "Model", Type: "text", Required: true},
		{Name: "storage", Label: "Storage", Type: "text"},
		{Name: "carrier", Label: "Carrier", Type: "select", Options: []string{"unlocked", "locked"}},
	},
	"Tablets": {
		{Name: "brand", Label: "Brand", Type: "text", Required: true},
		{Name: "model", Label: "Model", Type: "text"},
		{Name: "storage", Label: "Storage", Type: "text"},
		{Name: "screen", Label: "Screen size", Type: "text"},
	},
	"Cameras": {
		brandAttribute,
		{Name: "model", Label: "Model", Type: "text"},
		{Name: "type", Label: "Camera type", Type: "select", Options: []string{"dslr", "mirrorless", "compact", "film", "action"}},
	},
	"Jewelry & Watches": {
		brandAttribute,
		{Name: "material", Label: "Material", Type: "text"},
		{Name: "movement", Label: "Movement", Type: "select", Options: []string{"automatic", "manual", "quartz"}},
	},
	"Musical Instruments": {
		brandAttribute,
		{Name: "instrument", Label: "Instrument type", Type: "text", Required: true},
	},
	"Clothing & Shoes": {
		brandAttribute,
		{Name: "size", Label: "Size", Type: "text", Required: true},
		{Name: "color", Label: "Color", Type: "text"},
	},
	"Furniture": {
		{Name: "material", Label: "Material", Type: "text"},
		{Name: "width", Label: "Width (cm)", Type: "number"},
		{Name: "height", Label: "Height (cm)", Type: "number"},
	},
	"Books & Media": {
		{Name: "title", Label: "Title", Type: "text", Required: true},
		{Name: "format", Label: "Format", Type: "select", Options: []string{"hardcover", "paperback", "vinyl", "cd", "dvd", "blu-ray"}},
	},
	"Electronics": {
		brandAttribute,
		{Name: "model", Label: "Model", Type: "text"},
	},
}

// AttributesFor returns the attributes a listing in category should carry,
// always including condition. Unknown categories get brand and condition.
func AttributesFor(category string) []Attribute {
	attrs, ok := categoryAttributes[category]
	if !ok {
		attrs = []Attribute{brandAttribute}
	}
	out := make([]Attribute, 0, len(attrs)+1)
	out = append(out, attrs...)
	return append(out, conditionAttribute)
}
