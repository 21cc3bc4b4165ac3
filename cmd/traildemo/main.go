// Command traildemo simulates a target orbiting the origin and renders its
// fading trail to a PNG through the CPU preview renderer.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gg"
	"github.com/gogpu/trail"
	"github.com/gogpu/trail/internal/config"
	"github.com/gogpu/trail/preview"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "traildemo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("traildemo", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.Load(fs); err != nil {
		return err
	}
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	trail.SetLogger(log)

	head, _ := cfg.HeadGeometry()
	var target mgl32.Vec3
	tr := trail.New(trail.Config{
		Length:       cfg.Length,
		HeadWidth:    float32(cfg.Width),
		HeadGeometry: head,
		Target:       trail.TargetFunc(func() mgl32.Vec3 { return target }),
		Material:     cfg.Material(),
	})
	tr.Initialize()
	defer tr.Destroy()

	for frame := range cfg.Frames {
		target = orbit(frame, cfg.Radius, cfg.Speed)
		tr.Update()
	}
	log.Info("simulated", "frames", cfg.Frames, "nodes", tr.Len(), "triangles", tr.ActiveTriangles())

	r := preview.New(preview.Options{
		Width:      cfg.Size,
		Height:     cfg.Size,
		Background: gg.Hex(cfg.Background),
		Projection: preview.OrthoFit(cfg.Size, cfg.Size, float32(cfg.Radius*1.5)),
	})
	defer r.Close()

	if err := r.Draw(tr.Mesh()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := r.SavePNG(cfg.Output); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	s := r.Stats()
	log.Info("saved", "path", cfg.Output, "size", cfg.Size, "drawn", s.Drawn, "discarded", s.Discarded)
	return nil
}

// orbit returns the target position at frame: a circle in the XY plane
// whose radius breathes slowly.
func orbit(frame int, radius, speed float64) mgl32.Vec3 {
	a := float64(frame) * speed
	r := radius * (0.8 + 0.2*math.Sin(a*0.37))
	return mgl32.Vec3{float32(r * math.Cos(a)), float32(r * math.Sin(a)), 0}
}
