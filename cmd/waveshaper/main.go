package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cbegin/waveshaper-go"
)

// keyboardRow maps the home and upper rows to a chromatic octave from C.
const keyboardRow = "awsedftgyhujk"

func main() {
	var (
		scenePath  = flag.String("scene", "", "path to a scene YAML file")
		samplePath = flag.String("sample", "", "WAV file to scrub (overrides the scene)")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		blockSize  = flag.Int("block", 256, "render block size in frames")
		latency    = flag.Duration("latency", 20*time.Millisecond, "output buffer duration")
		volume     = flag.Float64("volume", 0, "output volume in dB")
		seed       = flag.Int64("seed", 0, "noise seed (0 = scene or default)")
		playScore  = flag.Bool("score", false, "play the scene's score instead of the keyboard")
		loop       = flag.Bool("loop", false, "loop the score; use with -loops to count then stop")
		loops      = flag.Int("loops", 3, "when -loop, stop after N loops (0 = loop forever)")
		octave     = flag.Int("octave", 0, "octave shift (-4..+4)")
		midiIn     = flag.String("midi-in", "", "MIDI input port to play from and learn controllers")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	inst, scene, err := buildInstrument(*scenePath, *samplePath, *seed, logger)
	if err != nil {
		log.Fatal(err)
	}
	// A scene's volume stands unless -volume is given.
	if flagPassed(flag.CommandLine, "volume") {
		if err := inst.OnParamChange(waveshaper.ParamVolume, *volume); err != nil {
			log.Fatal(err)
		}
	}
	if *midiIn != "" {
		stop, err := listenMIDI(*midiIn, inst, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer gomidi.CloseDriver()
		defer stop()
	}

	pl, err := waveshaper.NewPlayer(inst, *sampleRate,
		waveshaper.WithBlockSize(*blockSize),
		waveshaper.WithLatency(*latency),
		waveshaper.WithLoopPlayback(*loop))
	if err != nil {
		log.Fatal(err)
	}
	pl.SetTranspose(*octave)

	if *playScore {
		if scene == nil || scene.Score == nil {
			log.Fatal("-score needs a scene with a score")
		}
		if err := playScoreFile(pl, scene.Score, *loop, *loops); err != nil {
			log.Fatal(err)
		}
		return
	}
	if err := runKeyboard(pl, *octave, *midiIn != ""); err != nil {
		log.Fatal(err)
	}
}

func buildInstrument(scenePath, samplePath string, seed int64, logger *slog.Logger) (*waveshaper.Instrument, *waveshaper.Scene, error) {
	opts := []waveshaper.Option{waveshaper.WithLogger(logger)}
	var scene *waveshaper.Scene
	if strings.TrimSpace(scenePath) != "" {
		sc, err := waveshaper.LoadScene(scenePath)
		if err != nil {
			return nil, nil, err
		}
		scene = sc
		opts = append(opts, sc.Options()...)
	}
	if seed != 0 {
		opts = append(opts, waveshaper.WithSeed(seed))
	}
	inst := waveshaper.New(opts...)
	if scene != nil {
		if err := scene.Apply(inst); err != nil {
			return nil, nil, err
		}
	}
	if samplePath != "" {
		if err := inst.LoadSample(samplePath); err != nil {
			return nil, nil, err
		}
	}
	if inst.ShaperSize() == 0 {
		logger.Warn("no sample loaded; output will be silent")
	}
	return inst, scene, nil
}

// flagPassed reports whether name was set on the command line rather than
// left at its default.
func flagPassed(fs *flag.FlagSet, name string) bool {
	passed := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

// listenMIDI feeds a hardware MIDI input into the instrument.
func listenMIDI(port string, inst *waveshaper.Instrument, logger *slog.Logger) (func(), error) {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, errors.Wrapf(err, "midi input %q", port)
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		inst.ProcessMidiMsg(msg, 0)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listen to %s", in)
	}
	logger.Info("midi input open", "port", in.String())
	return stop, nil
}

func playScoreFile(pl *waveshaper.Player, score *waveshaper.Score, loop bool, loops int) error {
	ch := pl.Watch()
	if err := pl.Play(score); err != nil {
		return err
	}
	loopCount := 0
	for event := range ch {
		switch event.Kind {
		case waveshaper.EventPlaybackEnded:
			fmt.Println("playback completed")
			pl.Wait()
			return nil
		case waveshaper.EventLoopCompleted:
			loopCount++
			fmt.Printf("loop %d completed\n", loopCount)
			if loop && loops > 0 && loopCount >= loops {
				return pl.Stop()
			}
		}
	}
	return nil
}

// runKeyboard turns the terminal into a monophonic keyboard. Terminals
// report no key releases, so each key ends the previous note.
func runKeyboard(pl *waveshaper.Player, octave int, midiIn bool) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("stdin is not a terminal")
	}
	if err := pl.Live(); err != nil {
		return err
	}
	defer pl.Stop()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer term.Restore(fd, oldState)

	help := "keys " + keyboardRow + " play, space stops, 1-8 snapshot, z/x octave, q quits"
	if midiIn {
		help += ", m learns a controller for range"
	}
	fmt.Print(help + "\r\n")

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return readKeys(os.Stdin, newKeyboard(pl, octave, midiIn))
	})
	g.Go(func() error {
		return showStatus(ctx, pl.Instrument())
	})
	return g.Wait()
}

// keyboard maps terminal key presses to instrument input.
type keyboard struct {
	pl     *waveshaper.Player
	octave int
	midiIn bool
	held   int
}

func newKeyboard(pl *waveshaper.Player, octave int, midiIn bool) *keyboard {
	return &keyboard{pl: pl, octave: octave, midiIn: midiIn, held: -1}
}

// press handles one key and reports whether it asked to quit.
func (kb *keyboard) press(c byte) bool {
	inst := kb.pl.Instrument()
	switch {
	case c == 'q' || c == 3: // ctrl-c
		kb.pl.AllNotesOff()
		return true
	case c == ' ':
		kb.pl.AllNotesOff()
		kb.held = -1
	case c >= '1' && c <= '8':
		inst.OnParamChange(waveshaper.ParamNoiseSnapshot, float64(c-'1'))
	case c == 'z' && kb.octave > -4:
		kb.octave--
	case c == 'x' && kb.octave < 4:
		kb.octave++
	case c == 'm' && kb.midiIn:
		inst.BeginMIDILearn(waveshaper.ParamNoiseRange)
	default:
		i := strings.IndexByte(keyboardRow, c)
		if i < 0 {
			return false
		}
		if kb.held >= 0 {
			kb.pl.NoteOff(uint8(kb.held))
		}
		kb.held = min(max(60+12*kb.octave+i, 0), 127)
		kb.pl.NoteOn(uint8(kb.held), 100)
	}
	return false
}

func readKeys(r io.Reader, kb *keyboard) error {
	buf := make([]byte, 1)
	for {
		if _, err := r.Read(buf); err != nil {
			return err
		}
		if kb.press(buf[0]) {
			return nil
		}
	}
}

func showStatus(ctx context.Context, inst *waveshaper.Instrument) error {
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Print("\r\n")
			return nil
		case <-tick.C:
			start, end := inst.ScrubWindow()
			fmt.Printf("\rwindow %.3f-%.3f  map %.3f  rate %.6f  env %.2f   ",
				start, end, inst.ShaperMapValue(), inst.NoiseRate(), inst.Envelope())
		}
	}
}
