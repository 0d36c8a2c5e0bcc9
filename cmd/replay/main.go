// Command replay feeds recorded GPS fixes into the position stream, as a
// device would, so that the API's position subscriber moves the sessions.
//
// Input is JSON lines, one fix per line:
//
//	{"session":"alice","lat":36.98949,"lng":-122.06277}
//
// read from the file named by the first argument or from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/geocoin/internal/adapters/nats"
	"github.com/samirrijal/geocoin/internal/core/domain"
	"github.com/samirrijal/geocoin/internal/pkg/config"
)

type fix struct {
	Session string  `json:"session"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type positionPublisher interface {
	PublishPosition(ctx context.Context, sessionID string, pos domain.Coordinate) error
}

func main() {
	interval := flag.Duration("interval", time.Second, "delay between fixes")
	flag.Parse()

	cfg, err := config.Load("geocoin-replay")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.NATS.URL == "" {
		log.Fatal("nats: GEOCOIN_NATS_URL is required")
	}

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			log.Fatalf("open: %v", err)
		}
		defer f.Close()
		in = f
	}

	fixes, err := decodeFixes(in)
	if err != nil {
		log.Fatalf("read fixes: %v", err)
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("replaying %d fixes every %s", len(fixes), *interval)
	sent, err := replay(ctx, pub, fixes, *interval)
	log.Printf("published %d/%d fixes", sent, len(fixes))
	if err != nil && ctx.Err() == nil {
		log.Fatalf("replay: %v", err)
	}
}

// decodeFixes reads JSON lines, skipping blank lines. Fixes with an
// invalid coordinate or no session are rejected with their line number.
func decodeFixes(r io.Reader) ([]fix, error) {
	var fixes []fix
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var f fix
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if f.Session == "" {
			return nil, fmt.Errorf("line %d: missing session", line)
		}
		if !(domain.Coordinate{Lat: f.Lat, Lng: f.Lng}).Valid() {
			return nil, fmt.Errorf("line %d: %w", line, domain.ErrInvalidCoordinate)
		}
		fixes = append(fixes, f)
	}
	return fixes, sc.Err()
}

// replay publishes fixes in order, waiting interval between them. It
// returns how many were published.
func replay(ctx context.Context, pub positionPublisher, fixes []fix, interval time.Duration) (int, error) {
	ticker := time.NewTicker(max(interval, time.Millisecond))
	defer ticker.Stop()

	for i, f := range fixes {
		if i > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return i, ctx.Err()
			}
		}
		if err := pub.PublishPosition(ctx, f.Session, domain.Coordinate{Lat: f.Lat, Lng: f.Lng}); err != nil {
			return i, fmt.Errorf("fix %d: %w", i+1, err)
		}
	}
	return len(fixes), nil
}
