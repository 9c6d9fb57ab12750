// Command invschema prints JSON Schemas for the catalog and snapshot file
// formats.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/gravitas-games/invcore/pkg/crafting"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

func main() {
	which := "all"
	if len(os.Args) > 1 {
		which = os.Args[1]
	}

	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	docs := map[string]reflect.Type{
		"catalog":  reflect.TypeOf(inventory.CatalogDocument{}),
		"recipes":  reflect.TypeOf(crafting.RecipeDocument{}),
		"snapshot": reflect.TypeOf(inventory.Snapshot{}),
	}
	titles := map[string]string{
		"catalog":  "Item catalog",
		"recipes":  "Recipe file",
		"snapshot": "Collection snapshot",
	}

	out := make(map[string]*jsonschema.Schema)
	for name, typ := range docs {
		if which != "all" && which != name {
			continue
		}
		schema := reflector.ReflectFromType(typ)
		schema.Version = jsonschema.Version
		schema.Title = titles[name]
		out[name] = schema
	}
	if len(out) == 0 {
		fmt.Fprintf(os.Stderr, "unknown schema %q (want catalog, recipes, snapshot or all)\n", which)
		os.Exit(2)
	}

	var v any = out
	if which != "all" {
		v = out[which]
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode schema: %v\n", err)
		os.Exit(1)
	}
}
