// Package params describes the instrument's host-visible parameters and
// keeps their current plain values.
package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type ID int

const (
	Volume ID = iota
	NoiseTint
	NoiseAmpMod
	NoiseRate
	NoiseRange
	NoiseShape
	NoiseSnapshot
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease

	Count
)

// ErrUnknownParam is returned when a parameter name or id does not exist.
var ErrUnknownParam = errors.New("unknown parameter")

// Spec is the static description of one parameter.
type Spec struct {
	ID      ID
	Key     string // scene file key
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Step    float64
	// Curve skews the normalized mapping: plain = min + norm^Curve*(max-min).
	// Zero means linear.
	Curve float64
	// Names labels the integer values of an enum parameter.
	Names []string
	// MinText replaces the display text at Min.
	MinText string
	// Meta parameters drive other parameters instead of the DSP directly.
	Meta bool
}

var specs = [Count]Spec{
	Volume:        {Key: "volume", Name: "Volume", Unit: "dB", Min: -48, Max: 12, Default: 0, Step: 0.1, MinText: "-inf"},
	NoiseTint:     {Key: "noise_type", Name: "Noise Type", Min: 0, Max: 2, Default: 1, Step: 1, Names: []string{"White", "Pink", "Red"}},
	NoiseAmpMod:   {Key: "noise_amp_mod", Name: "Noise Amp Mod", Unit: "Hz", Min: 0, Max: 120, Default: 0.5, Step: 0.1, Curve: 2},
	NoiseRate:     {Key: "noise_rate", Name: "Noise Rate", Min: 0.00001, Max: 0.001, Default: 0.0005, Step: 0.00001},
	NoiseRange:    {Key: "noise_range", Name: "Noise Range", Min: -1, Max: 1, Default: 0, Step: 0.01},
	NoiseShape:    {Key: "noise_shape", Name: "Noise Shape", Min: 0.05, Max: 0.35, Default: 0.1, Step: 0.01},
	NoiseSnapshot: {Key: "noise_snapshot", Name: "Noise Snapshot", Min: 0, Max: 7, Default: 0, Step: 0.01, Meta: true},
	EnvAttack:     {Key: "attack", Name: "Attack", Unit: "s", Min: 0.005, Max: 2, Default: 0.005, Step: 0.005},
	EnvDecay:      {Key: "decay", Name: "Decay", Unit: "s", Min: 0.005, Max: 2, Default: 0.005, Step: 0.005},
	EnvSustain:    {Key: "sustain", Name: "Sustain", Unit: "%", Min: 0, Max: 100, Default: 75, Step: 1},
	EnvRelease:    {Key: "release", Name: "Release", Unit: "s", Min: 0.005, Max: 5, Default: 0.25, Step: 0.005},
}

func init() {
	for i := range specs {
		specs[i].ID = ID(i)
	}
}

func (id ID) Valid() bool { return id >= 0 && id < Count }

// Spec returns the description of id. It panics on an invalid id.
func (id ID) Spec() Spec { return specs[id] }

func (id ID) String() string {
	if !id.Valid() {
		return "ID(" + strconv.Itoa(int(id)) + ")"
	}
	return specs[id].Name
}

// All returns every parameter description in id order.
func All() []Spec {
	out := make([]Spec, Count)
	copy(out, specs[:])
	return out
}

// ByKey finds a parameter by its scene key or display name, ignoring case.
func ByKey(key string) (ID, error) {
	k := strings.TrimSpace(key)
	for _, s := range specs {
		if strings.EqualFold(s.Key, k) || strings.EqualFold(s.Name, k) {
			return s.ID, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownParam, "%q", key)
}

// Clamp limits plain to the parameter range. Enum values are rounded.
func (s Spec) Clamp(plain float64) float64 {
	if math.IsNaN(plain) {
		return s.Default
	}
	plain = math.Max(s.Min, math.Min(s.Max, plain))
	if s.Names != nil {
		plain = math.Round(plain)
	}
	return plain
}

// Normalize maps a plain value to [0, 1].
func (s Spec) Normalize(plain float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	n := (s.Clamp(plain) - s.Min) / (s.Max - s.Min)
	if s.Curve > 0 && s.Curve != 1 {
		n = math.Pow(n, 1/s.Curve)
	}
	return n
}

// Denormalize maps [0, 1] back to a plain value.
func (s Spec) Denormalize(norm float64) float64 {
	norm = math.Max(0, math.Min(1, norm))
	if s.Curve > 0 && s.Curve != 1 {
		norm = math.Pow(norm, s.Curve)
	}
	return s.Clamp(s.Min + norm*(s.Max-s.Min))
}

// DisplayText formats plain for a host or UI label.
func (s Spec) DisplayText(plain float64) string {
	plain = s.Clamp(plain)
	if s.Names != nil {
		return s.Names[int(plain-s.Min)]
	}
	if s.MinText != "" && plain <= s.Min {
		return s.MinText
	}
	text := strconv.FormatFloat(plain, 'f', s.decimals(), 64)
	if s.Unit == "" {
		return text
	}
	if s.Unit == "%" {
		return text + "%"
	}
	return fmt.Sprintf("%s %s", text, s.Unit)
}

func (s Spec) decimals() int {
	if s.Step <= 0 || s.Step >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(s.Step) - 1e-9))
}
