package forecast

import (
	"sync"
	"time"

	"github.com/aouyang1/go-windcaster/feature"
	"github.com/aouyang1/go-windcaster/models"
	"github.com/aouyang1/go-windcaster/stats"
)

// Model is a trained network together with the normalization statistics and feature encoding it
// was trained with. A Model is only valid until Release is called.
type Model struct {
	mu sync.Mutex

	opt       Options
	set       *feature.Set
	stats     *stats.Stats
	net       *models.Network
	trainedAt time.Time
	lastTime  time.Time
}

// Options returns a copy of the resolved options the model was trained with
func (m *Model) Options() Options {
	return m.opt
}

// FeatureSet returns the feature encoding of the model inputs and outputs
func (m *Model) FeatureSet() *feature.Set {
	return m.set
}

// NumParams returns the number of learnable parameters in the network
func (m *Model) NumParams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.net.Released() {
		return 0
	}
	return m.net.NumParams()
}

// TrainedAt is the wall clock time training finished
func (m *Model) TrainedAt() time.Time {
	return m.trainedAt
}

// LastObservation is the time of the newest observation used in training
func (m *Model) LastObservation() time.Time {
	return m.lastTime
}

// Released returns true if the model can no longer be used for prediction
func (m *Model) Released() bool {
	if m == nil {
		return true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Released()
}

// Release frees the network weights, optimizer state and statistics
func (m *Model) Release() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.net.Release()
	m.stats.Release()
}
