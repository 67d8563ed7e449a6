package waveshaper

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cbegin/waveshaper-go/internal/params"
	"github.com/cbegin/waveshaper-go/internal/sample"
)

// Scene is a complete patch: the audio to scrub, parameter values,
// snapshot slots, controller mappings, an effect chain and optionally a
// score for offline rendering.
type Scene struct {
	Sample    string             `yaml:"sample,omitempty"`
	Seed      int64              `yaml:"seed,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
	Snapshots []Snapshot         `yaml:"snapshots,omitempty"`
	MidiMap   map[string]uint8   `yaml:"midi_map,omitempty"`
	Effects   []EffectSpec       `yaml:"effects,omitempty"`
	Score     *Score             `yaml:"score,omitempty"`

	dir string
}

// LoadScene reads a scene file. A relative sample path is taken relative
// to the scene file.
func LoadScene(path string) (*Scene, error) {
	p, err := sample.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	sc, err := ParseScene(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene %s", path)
	}
	sc.dir = filepath.Dir(p)
	return sc, nil
}

func ParseScene(data []byte) (*Scene, error) {
	var sc Scene
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scene")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks parameter keys, snapshot count and controller numbers.
func (sc *Scene) Validate() error {
	for key := range sc.Params {
		if _, err := params.ByKey(key); err != nil {
			return errors.Wrapf(err, "params.%s", key)
		}
	}
	if len(sc.Snapshots) > SnapshotCount {
		return errors.Wrapf(ErrInvalidSnapshot, "%d snapshots, at most %d", len(sc.Snapshots), SnapshotCount)
	}
	for key, cc := range sc.MidiMap {
		if _, err := params.ByKey(key); err != nil {
			return errors.Wrapf(err, "midi_map.%s", key)
		}
		if cc > 127 {
			return errors.Errorf("midi_map.%s: controller %d out of range", key, cc)
		}
	}
	return nil
}

// Options returns the construction options the scene implies.
func (sc *Scene) Options() []Option {
	var opts []Option
	if sc.Seed != 0 {
		opts = append(opts, WithSeed(sc.Seed))
	}
	if len(sc.Effects) > 0 {
		opts = append(opts, WithEffects(sc.Effects...))
	}
	return opts
}

// SamplePath resolves the scene's sample file, or returns "" if it has none.
func (sc *Scene) SamplePath() (string, error) {
	if sc.Sample == "" {
		return "", nil
	}
	p, err := sample.ExpandPath(sc.Sample)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(p) && sc.dir != "" {
		p = filepath.Join(sc.dir, p)
	}
	return p, nil
}

// Apply loads the scene into inst. Plain parameters go first, then the
// snapshot slots, then the snapshot dial so it blends the stored slots.
func (sc *Scene) Apply(inst *Instrument) error {
	path, err := sc.SamplePath()
	if err != nil {
		return err
	}
	if path != "" {
		if err := inst.LoadSample(path); err != nil {
			return err
		}
	}

	type metaValue struct {
		id ParamID
		v  float64
	}
	var meta []metaValue
	for key, v := range sc.Params {
		id, err := params.ByKey(key)
		if err != nil {
			return errors.Wrapf(err, "params.%s", key)
		}
		if id.Spec().Meta {
			meta = append(meta, metaValue{id, v})
			continue
		}
		if err := inst.OnParamChange(id, v); err != nil {
			return err
		}
	}
	for i, s := range sc.Snapshots {
		if err := inst.StoreNoiseSnapshot(i, s); err != nil {
			return err
		}
	}
	for key, cc := range sc.MidiMap {
		id, err := params.ByKey(key)
		if err != nil {
			return errors.Wrapf(err, "midi_map.%s", key)
		}
		if err := inst.MapController(id, cc); err != nil {
			return err
		}
	}
	for _, m := range meta {
		if err := inst.OnParamChange(m.id, m.v); err != nil {
			return err
		}
	}
	return nil
}

// CaptureScene records the instrument's current state. Every parameter and
// snapshot slot is written so the file is complete on its own. The
// snapshot dial is left out: the noise parameters already hold its result.
func CaptureScene(inst *Instrument) *Scene {
	sc := &Scene{
		Sample: inst.SamplePath(),
		Params: make(map[string]float64, int(params.Count)),
	}
	for _, s := range params.All() {
		if !s.Meta {
			sc.Params[s.Key] = inst.Param(s.ID)
		}
	}
	all := inst.NoiseSnapshots()
	sc.Snapshots = all[:]
	if m := inst.ControllerMap(); len(m) > 0 {
		sc.MidiMap = make(map[string]uint8, len(m))
		for id, cc := range m {
			sc.MidiMap[id.Spec().Key] = cc
		}
	}
	return sc
}

// Save writes the scene as YAML.
func (sc *Scene) Save(path string) error {
	p, err := sample.ExpandPath(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(sc)
	if err != nil {
		return errors.Wrap(err, "encode scene")
	}
	return errors.Wrap(os.WriteFile(p, data, 0o644), "write scene")
}

// ParamByKey finds a parameter by scene key or display name.
func ParamByKey(key string) (ParamID, error) { return params.ByKey(key) }

// ParamKeys lists every scene parameter key in id order.
func ParamKeys() []string {
	specs := params.All()
	keys := make([]string, len(specs))
	for i, s := range specs {
		keys[i] = s.Key
	}
	return keys
}
