// Command demo drives a diffusion simulation on a running notebase-server
// and prints the mixing progress streamed over the websocket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stranger0g/NoteBase/internal/particles"
	"github.com/stranger0g/NoteBase/internal/simulation"
	"github.com/stranger0g/NoteBase/pkg/client"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "notebase-server base URL")
		id       = flag.String("id", "demo", "simulation ID")
		duration = flag.Duration("duration", 5*time.Second, "how long to stream frames")
		every    = flag.Int("every", 30, "print every n-th frame")
		xlsx     = flag.String("xlsx", "", "export the final frame to this workbook (optional)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client.New(*server), *id, *duration, *every, *xlsx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.Client, id string, duration time.Duration, every int, xlsx string) error {
	frame, err := c.Configure(ctx, id, client.NewSimulation(particles.Diffusion).Compare().Temperature(4))
	if err != nil {
		return fmt.Errorf("configuring simulation: %w", err)
	}
	fmt.Printf("%s: %d particles, %s\n", id, len(frame.Particles), frame.Info)

	streamURL, err := c.StreamURL(id)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, streamURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to stream: %w", err)
	}
	defer conn.Close()

	if _, err := c.StartDiffusion(ctx, id); err != nil {
		return fmt.Errorf("starting diffusion: %w", err)
	}
	if err := c.Start(ctx, id, 0); err != nil {
		return fmt.Errorf("starting simulation: %w", err)
	}
	defer c.Stop(context.Background(), id)

	deadline := time.Now().Add(duration)
	conn.SetReadDeadline(deadline)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if time.Now().After(deadline) || ctx.Err() != nil {
				break
			}
			return fmt.Errorf("reading stream: %w", err)
		}
		var ev simulation.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("decoding event: %w", err)
		}
		if ev.Kind == simulation.EventFrame && ev.Frame != nil && ev.Tick%int64(max(every, 1)) == 0 {
			printProgress(*ev.Frame)
		}
	}

	stats, err := c.Stats(ctx, id)
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}
	for _, pop := range stats.Populations {
		fmt.Printf("mass %g: %.0f%% on the right, mean speed %.2f\n", pop.MassFactor, pop.RightFraction*100, pop.MeanSpeed)
	}

	if xlsx != "" {
		data, err := c.Export(ctx, id)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		if err := os.WriteFile(xlsx, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsx)
	}
	return nil
}

func printProgress(frame simulation.Frame) {
	right := 0
	mid := frame.Bounds.Width / 2
	for _, p := range frame.Particles {
		if p.X > mid {
			right++
		}
	}
	fmt.Printf("tick %5d  right %3d/%d\n", frame.Tick, right, len(frame.Particles))
}
