// Package console interprets text commands against a controller.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/internal/storage"
	"github.com/gravitas-games/invcore/pkg/controller"
	"github.com/gravitas-games/invcore/pkg/crafting"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

// ErrUnknownCommand is returned for input that names no command.
var ErrUnknownCommand = errors.New("unknown command")

// ErrUsage is returned when a command gets the wrong arguments.
var ErrUsage = errors.New("usage")

// Names resolves item names typed by the user.
type Names interface {
	inventory.Catalog
	LookupName(name string) (inventory.ItemDefinition, bool)
	Suggest(name string, limit int) []string
}

type command struct {
	name    string
	aliases []string
	usage   string
	run     func(ctx context.Context, args []string) error
}

// Console runs one command per line. Output goes to the writer given to New.
type Console struct {
	ctl   *controller.Controller
	names Names
	repo  *storage.Repository
	out   io.Writer
	l     logrus.FieldLogger

	commands []command
	byName   map[string]*command
}

// New creates a console. repo may be nil, which disables save and load.
func New(ctl *controller.Controller, names Names, repo *storage.Repository, out io.Writer, l logrus.FieldLogger) *Console {
	c := &Console{ctl: ctl, names: names, repo: repo, out: out, l: l}
	c.commands = []command{
		{name: "help", aliases: []string{"?"}, usage: "help", run: c.help},
		{name: "list", aliases: []string{"ls", "inventory", "inv"}, usage: "list [collection]", run: c.list},
		{name: "add", aliases: []string{"give"}, usage: "add <amount> <item> [collection]", run: c.add},
		{name: "remove", aliases: []string{"rm", "drop"}, usage: "remove <amount> <item> [collection]", run: c.remove},
		{name: "transfer", aliases: []string{"tx"}, usage: "transfer <amount> <item> <from> <to>", run: c.transfer},
		{name: "move", aliases: []string{"mv"}, usage: "move <collection> <slot> <to> <index> [shift|swap|fail|overwrite]", run: c.move},
		{name: "select", aliases: []string{"sel"}, usage: "select <collection> <slot> [use|examine]", run: c.selectSlot},
		{name: "deselect", usage: "deselect", run: c.deselect},
		{name: "combine", usage: "combine <collection> <slot> <collection> <slot>", run: c.combine},
		{name: "recipes", usage: "recipes", run: c.recipes},
		{name: "rules", usage: "rules", run: c.rules},
		{name: "craft", usage: "craft <stage> [recipe] [output]", run: c.craft},
		{name: "save", usage: "save", run: c.save},
		{name: "load", usage: "load", run: c.load},
	}
	c.byName = make(map[string]*command)
	for i := range c.commands {
		cmd := &c.commands[i]
		c.byName[cmd.name] = cmd
		for _, a := range cmd.aliases {
			c.byName[a] = cmd
		}
	}
	return c
}

// Exec runs one line of input. Blank lines and lines starting with # do
// nothing.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	verb := strings.ToLower(fields[0])
	cmd, ok := c.byName[verb]
	if !ok {
		if s := c.suggestCommand(verb); s != "" {
			return fmt.Errorf("%w %q (did you mean %s?)", ErrUnknownCommand, verb, s)
		}
		return fmt.Errorf("%w %q", ErrUnknownCommand, verb)
	}
	c.l.Debugf("Executing command [%s] with [%d] arguments.", cmd.name, len(fields)-1)
	err := cmd.run(ctx, fields[1:])
	if errors.Is(err, ErrUsage) {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	return err
}

func (c *Console) suggestCommand(verb string) string {
	best, bestDist := "", len(verb)/2+1
	for key, cmd := range c.byName {
		if d := levenshtein.ComputeDistance(verb, key); d < bestDist || (d == bestDist && best != "" && cmd.name < best) {
			best, bestDist = cmd.name, d
		}
	}
	return best
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// item resolves a name or numeric definition ID.
func (c *Console) item(arg string) (inventory.ItemDefinition, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		if def, ok := c.names.Lookup(inventory.DefinitionID(id)); ok {
			return def, nil
		}
		return inventory.ItemDefinition{}, fmt.Errorf("%w: %d", inventory.ErrUnknownDefinition, id)
	}
	if def, ok := c.names.LookupName(arg); ok {
		return def, nil
	}
	if s := c.names.Suggest(arg, 1); len(s) > 0 {
		return inventory.ItemDefinition{}, fmt.Errorf("%w: %q (did you mean %s?)", inventory.ErrUnknownDefinition, arg, s[0])
	}
	return inventory.ItemDefinition{}, fmt.Errorf("%w: %q", inventory.ErrUnknownDefinition, arg)
}

func amount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", inventory.ErrInvalidAmount, arg)
	}
	return n, nil
}

func (c *Console) slot(colID, arg string) (*inventory.Instance, error) {
	col, err := c.ctl.Collection(colID)
	if err != nil {
		return nil, err
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", inventory.ErrInvalidSlotIndex, arg)
	}
	inst := col.SlotAt(i)
	if inst == nil {
		return nil, fmt.Errorf("slot %d of %s is empty", i, colID)
	}
	return inst, nil
}

func (c *Console) describe(inst *inventory.Instance) string {
	def := inst.Def()
	name := def.Name
	if name == "" {
		name = fmt.Sprintf("#%d", def.ID)
	}
	if !def.Stackable {
		return name
	}
	return fmt.Sprintf("%s x%d", name, inst.Count())
}

func (c *Console) help(_ context.Context, _ []string) error {
	for _, cmd := range c.commands {
		c.printf("  %s\n", cmd.usage)
	}
	return nil
}

func (c *Console) list(_ context.Context, args []string) error {
	ids := c.ctl.Collections()
	if len(args) > 0 {
		ids = args[:1]
	}
	sel, hasSel := c.ctl.Selected()
	for _, id := range ids {
		col, err := c.ctl.Collection(id)
		if err != nil {
			return err
		}
		c.printf("%s (%d units)", id, col.TotalCount(true))
		if cats := col.Categories(); len(cats) > 0 {
			c.printf(" categories %v", cats)
		}
		c.printf("\n")
		for i, inst := range col.Slots() {
			if inst == nil {
				c.printf("  [%d] -\n", i)
				continue
			}
			mark := ""
			if hasSel && sel.Instance == inst {
				mark = " *"
			}
			c.printf("  [%d] %s%s\n", i, c.describe(inst), mark)
		}
	}
	return nil
}

func (c *Console) add(_ context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	n, err := amount(args[0])
	if err != nil {
		return err
	}
	def, err := c.item(args[1])
	if err != nil {
		return err
	}
	target := controller.PlayerID
	if len(args) > 2 {
		target = args[2]
	}
	p, err := c.ctl.AddItem(def.ID, n, target)
	if errors.Is(err, inventory.ErrFull) {
		c.printf("%s is full: added %d of %d %s\n", target, p.Added, n, def.Name)
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("added %d %s to %s\n", n, def.Name, target)
	return nil
}

func (c *Console) remove(_ context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	n, err := amount(args[0])
	if err != nil {
		return err
	}
	def, err := c.item(args[1])
	if err != nil {
		return err
	}
	target := controller.PlayerID
	if len(args) > 2 {
		target = args[2]
	}
	removed, err := c.ctl.RemoveItem(def.ID, n, target)
	if err != nil {
		return err
	}
	c.printf("removed %d %s from %s\n", removed, def.Name, target)
	return nil
}

func (c *Console) transfer(_ context.Context, args []string) error {
	if len(args) < 4 {
		return ErrUsage
	}
	n, err := amount(args[0])
	if err != nil {
		return err
	}
	def, err := c.item(args[1])
	if err != nil {
		return err
	}
	res, err := c.ctl.Transfer(args[2], args[3], inventory.TransferRequest{Definition: def.ID, Amount: n})
	if err != nil && !errors.Is(err, inventory.ErrFull) {
		return err
	}
	c.printf("moved %d %s from %s to %s", res.Moved, def.Name, args[2], args[3])
	if res.Shortfall > 0 {
		c.printf(" (%d short)", res.Shortfall)
	}
	c.printf("\n")
	return nil
}

func behavior(arg string) (inventory.OccupiedBehavior, error) {
	switch strings.ToLower(arg) {
	case "shift":
		return inventory.ShiftItems, nil
	case "swap":
		return inventory.SwapItems, nil
	case "fail":
		return inventory.FailTransfer, nil
	case "overwrite":
		return inventory.Overwrite, nil
	default:
		return 0, ErrUsage
	}
}

func (c *Console) move(_ context.Context, args []string) error {
	if len(args) < 4 {
		return ErrUsage
	}
	inst, err := c.slot(args[0], args[1])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("%w: %q", inventory.ErrInvalidSlotIndex, args[3])
	}
	b := inventory.SwapItems
	if len(args) > 4 {
		if b, err = behavior(args[4]); err != nil {
			return err
		}
	}
	p, err := c.ctl.MoveInstance(inst.ID(), args[2], index, b)
	if err != nil {
		return err
	}
	c.printf("moved %s to slot %d of %s\n", c.describe(inst), p.Slot, args[2])
	return nil
}

func (c *Console) selectSlot(_ context.Context, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	inst, err := c.slot(args[0], args[1])
	if err != nil {
		return err
	}
	mode := controller.SelectUse
	if len(args) > 2 {
		switch strings.ToLower(args[2]) {
		case "use":
		case "examine":
			mode = controller.SelectExamine
		default:
			return ErrUsage
		}
	}
	if err := c.ctl.Select(inst.ID(), mode); err != nil {
		return err
	}
	c.printf("selected %s\n", c.describe(inst))
	if desc := inst.Def().Description; mode == controller.SelectExamine && desc != "" {
		c.printf("  %s\n", desc)
	}
	return nil
}

func (c *Console) deselect(_ context.Context, _ []string) error {
	c.ctl.DeselectAll()
	return nil
}

func (c *Console) combine(_ context.Context, args []string) error {
	if len(args) < 4 {
		return ErrUsage
	}
	a, err := c.slot(args[0], args[1])
	if err != nil {
		return err
	}
	b, err := c.slot(args[2], args[3])
	if err != nil {
		return err
	}
	out, err := c.ctl.Combine(a.ID(), b.ID())
	if err != nil {
		return err
	}
	if out.Token == controller.OutcomeMerged {
		c.printf("merged %d into %s\n", out.Merged, c.describe(b))
		return nil
	}
	c.printf("combine outcome: %s\n", out.Token)
	return nil
}

func (c *Console) recipes(_ context.Context, _ []string) error {
	for _, r := range c.ctl.Recipes().All() {
		parts := make([]string, 0, len(r.Ingredients))
		for _, ing := range r.Ingredients {
			p := fmt.Sprintf("%s x%d", c.nameOf(ing.Definition), ing.Amount)
			if r.PinnedSlots {
				p = fmt.Sprintf("[%d] %s", ing.Slot, p)
			}
			if ing.Tool {
				p += " (tool)"
			}
			parts = append(parts, p)
		}
		sort.Strings(parts)
		c.printf("%s: %s\n", r.ID, strings.Join(parts, ", "))
	}
	return nil
}

func (c *Console) rules(_ context.Context, _ []string) error {
	rules := c.ctl.Rules().Rules()
	if len(rules) == 0 {
		c.printf("no combine rules\n")
		return nil
	}
	for _, r := range rules {
		c.printf("%s + %s: %s\n", c.nameOf(r.First), c.nameOf(r.Second), r.Outcome)
	}
	return nil
}

func (c *Console) nameOf(id inventory.DefinitionID) string {
	if def, ok := c.names.Lookup(id); ok && def.Name != "" {
		return def.Name
	}
	return fmt.Sprintf("#%d", id)
}

func (c *Console) craft(_ context.Context, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	stage := args[0]
	var id crafting.RecipeID
	if len(args) > 1 {
		id = crafting.RecipeID(args[1])
	} else {
		r, err := c.ctl.CraftableRecipe(stage)
		if err != nil {
			return err
		}
		if r == nil {
			return crafting.ErrRecipeUnsatisfied
		}
		id = r.ID
	}
	output := controller.PlayerID
	if len(args) > 2 {
		output = args[2]
	}
	p, err := c.ctl.Craft(stage, id, output)
	if err != nil {
		return err
	}
	c.printf("crafted %s into %s\n", id, output)
	if p.Instance != nil {
		c.printf("  [%d] %s\n", p.Slot, c.describe(p.Instance))
	}
	return nil
}

func (c *Console) collections() []*inventory.Collection {
	ids := c.ctl.Collections()
	out := make([]*inventory.Collection, 0, len(ids))
	for _, id := range ids {
		if col, err := c.ctl.Collection(id); err == nil {
			out = append(out, col)
		}
	}
	return out
}

func (c *Console) save(ctx context.Context, _ []string) error {
	if c.repo == nil {
		return errors.New("no storage configured")
	}
	cols := c.collections()
	if err := c.repo.SaveAll(ctx, cols); err != nil {
		return err
	}
	c.printf("saved %d collections\n", len(cols))
	return nil
}

func (c *Console) load(ctx context.Context, _ []string) error {
	if c.repo == nil {
		return errors.New("no storage configured")
	}
	c.ctl.DeselectAll()
	n, err := c.repo.LoadAll(ctx, c.collections())
	c.ctl.Refresh()
	if err != nil {
		return err
	}
	c.printf("loaded %d collections\n", n)
	return nil
}
