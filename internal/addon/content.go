package addon

// Side tells which package tree a root belongs to.
type Side int

const (
	Behavior Side = iota
	Resource
)

func (s Side) String() string {
	if s == Behavior {
		return "behavior"
	}
	return "resource"
}

// ContentType describes one kind of content document and where it lives.
type ContentType struct {
	Name         string // key into the format-version table
	Side         Side
	Folder       string
	TopLevelKeys []string
	// Identified types declare <key>.description.identifier.
	Identified bool
}

// ContentTypes is the set of documents the json and id checks inspect, in
// inspection order.
var ContentTypes = []ContentType{
	{Name: "item", Side: Behavior, Folder: "items", TopLevelKeys: []string{"minecraft:item"}, Identified: true},
	{Name: "block", Side: Behavior, Folder: "blocks", TopLevelKeys: []string{"minecraft:block"}, Identified: true},
	{Name: "recipe", Side: Behavior, Folder: "recipes", TopLevelKeys: []string{
		"minecraft:recipe_shaped",
		"minecraft:recipe_shapeless",
		"minecraft:recipe_furnace",
		"minecraft:recipe_brewing_mix",
		"minecraft:recipe_brewing_container",
		"minecraft:recipe_smithing_transform",
		"minecraft:recipe_smithing_trim",
	}, Identified: true},
	{Name: "entity", Side: Behavior, Folder: "entities", TopLevelKeys: []string{"minecraft:entity"}, Identified: true},
	{Name: "animation", Side: Behavior, Folder: "animations", TopLevelKeys: []string{"animations"}},
	{Name: "entity", Side: Resource, Folder: "entity", TopLevelKeys: []string{"minecraft:client_entity"}, Identified: true},
	{Name: "animation", Side: Resource, Folder: "animations", TopLevelKeys: []string{"animations"}},
	{Name: "render_controller", Side: Resource, Folder: "render_controllers", TopLevelKeys: []string{"render_controllers"}},
}

// ContentTypesFor returns the content types stored in packages of side s.
func ContentTypesFor(s Side) []ContentType {
	var out []ContentType
	for _, ct := range ContentTypes {
		if ct.Side == s {
			out = append(out, ct)
		}
	}
	return out
}
