package engine

import (
	"github.com/cbegin/waveshaper-go/internal/params"
	"github.com/cbegin/waveshaper-go/internal/snapshot"
)

func snapshotBounds() snapshot.Bounds {
	return snapshot.Bounds{
		Min: snapshot.Snapshot{
			AmpMod: params.NoiseAmpMod.Spec().Min,
			Rate:   params.NoiseRate.Spec().Min,
			Range:  params.NoiseRange.Spec().Min,
			Shape:  params.NoiseShape.Spec().Min,
		},
		Max: snapshot.Snapshot{
			AmpMod: params.NoiseAmpMod.Spec().Max,
			Rate:   params.NoiseRate.Spec().Max,
			Range:  params.NoiseRange.Spec().Max,
			Shape:  params.NoiseShape.Spec().Max,
		},
	}
}

// liveSnapshot captures the current targets of the four noise controls.
func (e *Engine) liveSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		AmpMod: e.mod.Load(),
		Rate:   e.rate.Load(),
		Range:  e.rng.Load(),
		Shape:  e.shape.Load(),
	}
}

// SetNoiseSnapshot blends the two snapshots bracketing value (0..7) and
// moves the noise controls there, reporting each new value to the
// parameter listener.
func (e *Engine) SetNoiseSnapshot(value float64) snapshot.Snapshot {
	s := e.snapshots.Blend(value)
	e.SetNoiseMod(s.AmpMod)
	e.SetNoiseRate(s.Rate)
	e.SetNoiseRange(s.Range)
	e.SetNoiseShape(s.Shape)
	if e.listener != nil {
		e.listener(params.NoiseAmpMod, s.AmpMod)
		e.listener(params.NoiseRate, s.Rate)
		e.listener(params.NoiseRange, s.Range)
		e.listener(params.NoiseShape, s.Shape)
	}
	return s
}

// UpdateNoiseSnapshot stores the current noise controls in slot idx.
func (e *Engine) UpdateNoiseSnapshot(idx int) error {
	return e.snapshots.Update(idx, e.liveSnapshot())
}

// StoreNoiseSnapshot writes s into slot idx directly, as when restoring a
// saved scene.
func (e *Engine) StoreNoiseSnapshot(idx int, s snapshot.Snapshot) error {
	return e.snapshots.Update(idx, s)
}

func (e *Engine) NoiseSnapshot(idx int) (snapshot.Snapshot, error) {
	return e.snapshots.Get(idx)
}

// NoiseSnapshotNormalized returns slot idx with every field mapped to [0, 1]
// over its parameter range.
func (e *Engine) NoiseSnapshotNormalized(idx int) (snapshot.Snapshot, error) {
	return e.snapshots.Normalized(idx)
}

// NoiseSnapshots returns every slot.
func (e *Engine) NoiseSnapshots() [snapshot.Count]snapshot.Snapshot {
	return e.snapshots.All()
}
