// Package session holds per-browser dashboard state.
package session

import (
	"sync"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/charts"
	"github.com/ekaya-inc/ekaya-vizboard/pkg/models"
)

// Flash levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Defaults seed a fresh State and are restored by Reset.
type Defaults struct {
	Connection models.ConnectionParams
	APIKey     string
	ChartTitle string
}

// DefaultChartTitle is the initial plot title.
const DefaultChartTitle = "My Visualization"

// State is the dashboard state of one browser session.
// Callers hold Lock while reading or mutating fields.
type State struct {
	mu sync.Mutex

	defaults Defaults

	// Panel visibility.
	ShowContact      bool
	ShowSchema       bool
	ShowSQLInput     bool
	ShowPrompt       bool
	ShowGeneratedSQL bool

	// QueryError is set when a generated query failed to generate or execute;
	// the edit-and-rerun panel is shown while it holds.
	QueryError bool

	Connection models.ConnectionParams
	APIKey     string

	Schema       *models.SchemaMap
	SchemaText   string
	SchemaLoaded bool

	SQLText      string
	Instruction  string
	GeneratedSQL string
	HasGenerated bool

	Result *models.ResultTable
	Chart  charts.Spec
	Figure *charts.Figure

	// ConnectionHinted records that the one-time connection hint was shown.
	ConnectionHinted bool

	flashes []Flash
}

// NewState returns a State initialised from defaults.
func NewState(defaults Defaults) *State {
	s := &State{defaults: defaults}
	s.reset()
	return s
}

// Lock acquires the state's mutex.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the state's mutex.
func (s *State) Unlock() { s.mu.Unlock() }

// Reset restores every field to its initial value. The caller holds Lock.
func (s *State) Reset() {
	s.reset()
}

func (s *State) reset() {
	title := s.defaults.ChartTitle
	if title == "" {
		title = DefaultChartTitle
	}

	s.ShowContact = false
	s.ShowSchema = false
	s.ShowSQLInput = false
	s.ShowPrompt = false
	s.ShowGeneratedSQL = false
	s.QueryError = false
	s.Connection = s.defaults.Connection
	s.APIKey = s.defaults.APIKey
	s.Schema = nil
	s.SchemaText = ""
	s.SchemaLoaded = false
	s.SQLText = ""
	s.Instruction = ""
	s.GeneratedSQL = ""
	s.HasGenerated = false
	s.Result = nil
	s.Chart = charts.Spec{Kind: charts.KindLine, Title: title}
	s.Figure = nil
	s.ConnectionHinted = false
	s.flashes = nil
}

// AddFlash queues a message for the next render. The caller holds Lock.
func (s *State) AddFlash(level, message string) {
	s.flashes = append(s.flashes, Flash{Level: level, Message: message})
}

// Flashes returns the queued messages without consuming them.
func (s *State) Flashes() []Flash {
	return append([]Flash(nil), s.flashes...)
}

// TakeFlashes returns and clears the queued messages. The caller holds Lock.
func (s *State) TakeFlashes() []Flash {
	out := s.flashes
	s.flashes = nil
	return out
}
