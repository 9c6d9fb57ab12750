package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/invcore/internal/config"
	"github.com/gravitas-games/invcore/internal/console"
	"github.com/gravitas-games/invcore/internal/storage"
	"github.com/gravitas-games/invcore/pkg/controller"
	"github.com/gravitas-games/invcore/pkg/crafting"
	"github.com/gravitas-games/invcore/pkg/inventory"
)

func main() {
	l := logrus.New()
	l.Infof("Starting invctl...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/invctl.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		l.WithError(err).Fatalf("Failed to load configuration.")
	}
	configureLogger(l, cfg.Log)
	l.Infof("Configuration loaded from [%s].", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl, err := newController(cfg, l)
	if err != nil {
		l.WithError(err).Fatalf("Failed to create controller.")
	}

	backend, err := storage.Open(ctx, cfg.Storage, l)
	if err != nil {
		l.WithError(err).Fatalf("Failed to open storage.")
	}
	repo := storage.NewRepository(backend, l)
	cols := collections(ctl)
	if cfg.Storage.AutoLoad {
		n, err := repo.LoadAll(ctx, cols)
		if err != nil {
			l.WithError(err).Fatalf("Failed to load collections.")
		}
		ctl.Refresh()
		l.Infof("Restored [%d] collections from [%s] storage.", n, cfg.Storage.Backend)
	}

	con := console.New(ctl, nameSource(ctl), repo, os.Stdout, l)

	// Commands and autosave both run on this goroutine
	stop := make(chan struct{})
	lines := readLines(os.Stdin, stop, l)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	serve(ctx, con, lines, sigChan, os.Stdout, l)
	close(stop)

	if cfg.Storage.AutoSave {
		if err := repo.SaveAll(ctx, cols); err != nil {
			l.WithError(err).Errorf("Error saving collections.")
		}
	}
	if err := backend.Close(); err != nil {
		l.WithError(err).Errorf("Error during shutdown.")
	}

	l.Infof("invctl stopped")
}

// readLines scans r in a goroutine so a signal can interrupt a blocked
// read. The channel closes at end of input or once stop is closed.
func readLines(r io.Reader, stop <-chan struct{}, l logrus.FieldLogger) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			l.WithError(err).Errorf("Unable to read input.")
		}
	}()
	return lines
}

// serve executes lines on the calling goroutine until input ends or a
// signal arrives.
func serve(ctx context.Context, con *console.Console, lines <-chan string, sigs <-chan os.Signal, out io.Writer, l logrus.FieldLogger) {
	fmt.Fprint(out, "> ")
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				l.Infof("End of input, shutting down...")
				return
			}
			if err := con.Exec(ctx, line); err != nil {
				fmt.Fprintln(out, err)
			}
			fmt.Fprint(out, "> ")
		case sig := <-sigs:
			l.Infof("Received signal [%v], shutting down...", sig)
			return
		}
	}
}

func configureLogger(l *logrus.Logger, cfg config.LogConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		l.SetLevel(level)
	} else {
		l.WithError(err).Warnf("Unknown log level [%s], keeping [%s].", cfg.Level, l.GetLevel())
	}
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
}

func newController(cfg *config.Config, l logrus.FieldLogger) (*controller.Controller, error) {
	var catalog *inventory.Registry
	if cfg.Catalog.Items != "" {
		reg, err := inventory.LoadCatalogFile(cfg.Catalog.Items)
		if err != nil {
			return nil, err
		}
		catalog = reg
	} else {
		l.Infof("No catalog file configured, using sample items.")
		catalog = inventory.SampleRegistry()
	}
	l.Infof("Catalog holds [%d] item definitions.", catalog.Len())

	var recipes *crafting.RecipeRegistry
	if cfg.Catalog.Recipes != "" {
		reg, err := crafting.LoadRecipeFile(cfg.Catalog.Recipes, catalog)
		if err != nil {
			return nil, err
		}
		recipes = reg
	} else if cfg.Catalog.Items == "" {
		recipes = crafting.SampleRecipes()
	}

	rules := controller.NewRuleTable()
	for _, r := range cfg.Combine {
		rules.Set(inventory.DefinitionID(r.First), inventory.DefinitionID(r.Second), r.Outcome)
	}

	bus := inventory.NewSimpleEventBus()
	bus.Subscribe(inventory.AllCollections, func(e inventory.Event) {
		l.Debugf("Event [%s] in [%s]: item [%d] slot [%d] amount [%d].", e.Kind, e.Collection, e.Definition, e.Slot, e.Amount)
	})

	player, err := inventory.NewCollectionFrom(catalog, cfg.Player.ID, cfg.Player.Items, cfg.Player.Options()...)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	ctl := controller.New(catalog, recipes,
		controller.WithLogger(l),
		controller.WithEventBus(bus),
		controller.WithCombineRules(rules),
		controller.WithPlayer(player),
	)
	for _, cc := range cfg.Containers {
		col, err := inventory.NewCollectionFrom(catalog, cc.ID, cc.Items, cc.Options()...)
		if err != nil {
			return nil, fmt.Errorf("container %s: %w", cc.ID, err)
		}
		if err := ctl.AddCollection(col); err != nil {
			return nil, err
		}
	}
	return ctl, nil
}

func collections(ctl *controller.Controller) []*inventory.Collection {
	var out []*inventory.Collection
	for _, id := range ctl.Collections() {
		if col, err := ctl.Collection(id); err == nil {
			out = append(out, col)
		}
	}
	return out
}

func nameSource(ctl *controller.Controller) console.Names {
	if names, ok := ctl.Catalog().(console.Names); ok {
		return names
	}
	return inventory.NewRegistry()
}
