package sample

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndLoadStereo(t *testing.T) {
	src := &Buffer{
		SampleRate: 22050,
		Channels: [][]float32{
			{0, 0.5, -0.5, 1, -1},
			{0.25, -0.25, 0, 0.75, -0.75},
		},
	}
	path := filepath.Join(t.TempDir(), "stereo.wav")
	if err := src.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SampleRate != 22050 || got.NumChannels() != 2 || got.Frames() != 5 {
		t.Fatalf("got %d Hz, %d ch, %d frames", got.SampleRate, got.NumChannels(), got.Frames())
	}
	for c := range src.Channels {
		for i, want := range src.Channels[c] {
			if d := math.Abs(float64(got.Channels[c][i] - want)); d > 1.0/16384 {
				t.Errorf("ch %d frame %d = %v, want %v", c, i, got.Channels[c][i], want)
			}
		}
	}
}

// pcm8 builds a mono 8-bit PCM WAV file around data.
func pcm8(sampleRate int, data []byte) []byte {
	var b bytes.Buffer
	le := func(v any) { binary.Write(&b, binary.LittleEndian, v) }
	b.WriteString("RIFF")
	le(uint32(36 + len(data)))
	b.WriteString("WAVEfmt ")
	le(uint32(16))
	le(uint16(1)) // PCM
	le(uint16(1))
	le(uint32(sampleRate))
	le(uint32(sampleRate))
	le(uint16(1))
	le(uint16(8))
	b.WriteString("data")
	le(uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestDecodeUnsigned8Bit(t *testing.T) {
	got, err := Decode(bytes.NewReader(pcm8(8000, []byte{0x80, 0x80, 0xff, 0x00})), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []float32{0, 0, 127.0 / 128, -1}
	if got.NumChannels() != 1 || got.Frames() != len(want) {
		t.Fatalf("got %d ch, %d frames", got.NumChannels(), got.Frames())
	}
	for i, w := range want {
		if d := math.Abs(float64(got.Channels[0][i] - w)); d > 1e-6 {
			t.Errorf("frame %d = %v, want %v", i, got.Channels[0][i], w)
		}
	}
}

func TestLoadRejectsNonWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("not a riff file ", 8)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); !errors.Is(err, ErrNoAudioData) {
		t.Fatalf("err = %v, want ErrNoAudioData", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav"), nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestEncodeRejectsEmptyAndOddDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.wav")
	if err := (&Buffer{SampleRate: 44100}).Save(path); !errors.Is(err, ErrUnsupportedChannels) {
		t.Fatalf("err = %v, want ErrUnsupportedChannels", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	b := &Buffer{SampleRate: 44100, Channels: [][]float32{{0}}}
	if err := b.Encode(f, 12); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNewInterleaved(t *testing.T) {
	b := NewInterleaved([]float32{1, 2, 3, 4, 5, 6, 7}, 2, 48000)
	if b.Frames() != 3 {
		t.Fatalf("frames = %d, want 3", b.Frames())
	}
	if b.Channels[0][2] != 5 || b.Channels[1][2] != 6 {
		t.Fatalf("channels = %v", b.Channels)
	}
	if math.Abs(b.Seconds()-3.0/48000) > 1e-12 {
		t.Fatalf("seconds = %v", b.Seconds())
	}
}

func TestPeaks(t *testing.T) {
	b := &Buffer{Channels: [][]float32{
		{0.1, -0.9, 0.2, 0.3, 0, 0},
		{0, 0, -0.4, 0, 0.05, 0.5},
	}}
	got := Peaks(b, 3)
	want := []float32{0.9, 0.4, 0.5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("peaks = %v, want %v", got, want)
		}
	}
	if n := len(Peaks(b, 100)); n != 6 {
		t.Fatalf("bucket count should cap at frames, got %d", n)
	}
	if Peaks(&Buffer{}, 4) != nil {
		t.Fatal("empty buffer should have no peaks")
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("WAVESHAPER_TEST_DIR", "/tmp/ws")
	got, err := ExpandPath("$WAVESHAPER_TEST_DIR/a.wav")
	if err != nil || got != "/tmp/ws/a.wav" {
		t.Fatalf("ExpandPath = %q, %v", got, err)
	}
	home, err := ExpandPath("~/a.wav")
	if err != nil || strings.HasPrefix(home, "~") {
		t.Fatalf("home not expanded: %q, %v", home, err)
	}
}
