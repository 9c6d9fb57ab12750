package inventory

// Sample definition IDs used by SampleRegistry.
const (
	SampleWood DefinitionID = iota + 1
	SampleNail
	SamplePlank
	SampleKey
	SamplePotion
	SampleSword
	SampleRope
	SampleTorch
)

// Sample categories used by SampleRegistry.
const (
	CategoryMaterial CategoryID = iota + 1
	CategoryTool
	CategoryConsumable
	CategoryQuest
)

// Sample property IDs.
const (
	PropDurability PropertyID = iota + 1
	PropOwner
	PropEnchant
)

// SampleRegistry returns a small workshop-flavoured catalog. Hosts without
// a catalog file use it and tests build on it.
func SampleRegistry() *Registry {
	return NewRegistry(
		ItemDefinition{ID: SampleWood, Name: "Wood", Stackable: true, MaxStack: 20, Category: CategoryMaterial},
		ItemDefinition{ID: SampleNail, Name: "Nail", Stackable: true, MaxStack: 50, Category: CategoryMaterial},
		ItemDefinition{ID: SamplePlank, Name: "Plank", Stackable: true, MaxStack: 10, Category: CategoryMaterial},
		ItemDefinition{ID: SampleKey, Name: "Key", Category: CategoryQuest, Description: "Opens the cellar door."},
		ItemDefinition{ID: SamplePotion, Name: "Potion", Stackable: true, MaxStack: 5, Category: CategoryConsumable,
			Properties: []PropertyDef{{ID: PropEnchant, Name: "enchant", Default: StringValue("")}}},
		ItemDefinition{ID: SampleSword, Name: "Sword", Category: CategoryTool,
			Properties: []PropertyDef{
				{ID: PropDurability, Name: "durability", Default: IntValue(100)},
				{ID: PropOwner, Name: "owner", Default: RefValue(0)},
			}},
		ItemDefinition{ID: SampleRope, Name: "Rope", Stackable: true, MaxStack: 3, Category: CategoryTool},
		ItemDefinition{ID: SampleTorch, Name: "Torch", Stackable: true, MaxStack: 10, Category: CategoryTool,
			Properties: []PropertyDef{{ID: PropDurability, Name: "burn", Default: FloatValue(1)}}},
	)
}
