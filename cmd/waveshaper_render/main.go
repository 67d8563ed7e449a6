package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cbegin/waveshaper-go"
)

// demoScore is a short rising figure used when the scene has no score.
func demoScore() *waveshaper.Score {
	sc := &waveshaper.Score{}
	for i, key := range []uint8{48, 55, 60, 63, 67} {
		sc.Notes = append(sc.Notes, waveshaper.Note{Key: key, Velocity: 110, Start: float64(i) * 0.6, Length: 0.5})
	}
	return sc
}

func main() {
	var (
		scenePath  = flag.String("scene", "", "path to a scene YAML file")
		samplePath = flag.String("sample", "", "WAV file to scrub (overrides the scene)")
		outPath    = flag.String("out", "waveshaper.wav", "output WAV path")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		seconds    = flag.Float64("seconds", 0, "render length (0 = until the last release ends)")
		bits       = flag.Int("bits", 16, "output bit depth: 16|24|32")
		seed       = flag.Int64("seed", 0, "noise seed (0 = scene or default)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	opts := []waveshaper.Option{waveshaper.WithLogger(logger)}
	var scene *waveshaper.Scene
	if strings.TrimSpace(*scenePath) != "" {
		sc, err := waveshaper.LoadScene(*scenePath)
		if err != nil {
			log.Fatal(err)
		}
		scene = sc
		opts = append(opts, sc.Options()...)
	}
	if *seed != 0 {
		opts = append(opts, waveshaper.WithSeed(*seed))
	}
	inst := waveshaper.New(opts...)
	score := demoScore()
	if scene != nil {
		if err := scene.Apply(inst); err != nil {
			log.Fatal(err)
		}
		if scene.Score != nil {
			score = scene.Score
		}
	}
	if *samplePath != "" {
		if err := inst.LoadSample(*samplePath); err != nil {
			log.Fatal(err)
		}
	}
	if inst.ShaperSize() == 0 {
		log.Fatal("no sample: pass -sample or a scene with one")
	}

	samples, err := waveshaper.Render(inst, score, *sampleRate, *seconds)
	if err != nil {
		log.Fatal(err)
	}
	if err := waveshaper.WriteWAV(*outPath, samples, *sampleRate, *bits); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%.2fs)\n", *outPath, float64(len(samples)/2)/float64(*sampleRate))
}
