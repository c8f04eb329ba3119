package single

// Preset is a ready-made agent persona.
type Preset struct {
	Name         string
	Instructions string
}

// Presets are the stock single-agent personas.
var Presets = []Preset{
	{
		Name:         "Research Assistant",
		Instructions: "You are a research assistant that helps users find information and answers questions using the most up-to-date information available.",
	},
	{
		Name:         "Code Assistant",
		Instructions: "You are a code assistant that helps users write, debug, and optimize code. You can search for coding solutions and documentation.",
	},
	{
		Name:         "Travel Planner",
		Instructions: "You are a travel planning assistant that helps users plan trips, find accommodations, and discover attractions.",
	},
	{
		Name:         "Product Researcher",
		Instructions: "You are a product research assistant that helps users compare products, find reviews, and make informed purchasing decisions.",
	},
}

// PresetByName returns the preset with the given name, if any.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
