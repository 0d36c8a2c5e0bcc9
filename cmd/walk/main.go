// Command walk plays a session headlessly from a string of moves.
//
//	walk [-store driver] [-db path] [-session id] [-greedy] MOVES
//
// MOVES is a sequence over n, s, e, w (one cell each), d (deposit the most
// recent coin into the cache under the player) and r (reset).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/samirrijal/geocoin/internal/adapters/kvstore"
	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/core/usecases"
	"github.com/samirrijal/geocoin/internal/pkg/config"
	"github.com/samirrijal/geocoin/internal/pkg/logging"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("walk", flag.ContinueOnError)
	fs.SetOutput(out)
	driver := fs.String("store", "", "trail store: memory, sqlite, valkey or postgres (default from config)")
	dbPath := fs.String("db", "", "sqlite file (default from config)")
	sessionID := fs.String("session", "walk", "session id")
	greedy := fs.Bool("greedy", false, "take every coin in each cache the player steps on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: walk [flags] MOVES")
	}

	cfg, err := config.Load("geocoin-walk")
	if err != nil {
		return err
	}
	logging.Setup("warn", "text")

	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *dbPath != "" {
		cfg.Storage.SQLitePath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	s, err := usecases.NewSession(ctx, *sessionID, usecases.RulesFromConfig(cfg.Game), store)
	if err != nil {
		return err
	}

	for i, m := range strings.ToLower(fs.Arg(0)) {
		if err := step(ctx, s, m, *greedy); err != nil {
			return fmt.Errorf("move %d (%c): %w", i+1, m, err)
		}
	}

	printSession(out, s)
	return nil
}

func step(ctx context.Context, s *usecases.Session, m rune, greedy bool) error {
	switch m {
	case 'r':
		_, err := s.Reset(ctx)
		return err
	case 'd':
		coin, err := s.Deposit(s.PlayerCell())
		if errors.Is(err, domain.ErrCacheNotActive) {
			return nil
		}
		if err == nil && coin != nil {
			slog.Debug("deposited", "coin", coin.ID())
		}
		return err
	}

	d, err := domain.ParseDirection(string(m))
	if err != nil {
		return err
	}
	if _, err := s.Move(ctx, d); err != nil {
		return err
	}
	if greedy {
		return takeAll(s)
	}
	return nil
}

func takeAll(s *usecases.Session) error {
	c, ok := s.Cache(s.PlayerCell())
	if !ok {
		return nil
	}
	for _, coin := range c.Coins() {
		origin := coin.Origin()
		if _, err := s.Take(c.Cell(), coin.Serial, &origin); err != nil {
			return err
		}
	}
	return nil
}

func printSession(out io.Writer, s *usecases.Session) {
	v := s.View()
	fmt.Fprintf(out, "player %.6f,%.6f cell %s\n", v.Player.Lat, v.Player.Lng, v.PlayerCell)
	fmt.Fprintf(out, "trail %d points, %.1f m\n", v.TrailLength, v.TrailDistance)
	fmt.Fprintf(out, "caches %d active, %d saved\n", len(v.Caches), v.SavedCaches)
	for _, c := range v.Caches {
		fmt.Fprintf(out, "  %s %d coins\n", c.Key, len(c.Coins))
	}
	ids := make([]string, len(v.Inventory))
	for i, coin := range v.Inventory {
		ids[i] = coin.ID()
	}
	fmt.Fprintf(out, "inventory %d [%s]\n", len(ids), strings.Join(ids, " "))
}
