package gps

import (
	"time"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/track_recorder/internal/track"
)

// Outcome codes what the assembler did with a sentence. Only OutcomeFix
// carries a fix; the rest exist so the caller's continue is explicit.
type Outcome int

const (
	// OutcomeIgnored: sentence type not used for fix assembly, or an
	// altitude sentence with no position evidence.
	OutcomeIgnored Outcome = iota
	// OutcomeAltitudeStored: altitude/satellite info held for the next fix.
	OutcomeAltitudeStored
	// OutcomeVoidStatus: position sentence without a valid solution.
	OutcomeVoidStatus
	// OutcomeZeroPosition: lat and lon both zero, a default reading from a
	// receiver that has not locked yet, not a real fix at the origin.
	OutcomeZeroPosition
	// OutcomeFix: a fix was emitted.
	OutcomeFix
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeAltitudeStored:
		return "altitude stored"
	case OutcomeVoidStatus:
		return "void status"
	case OutcomeZeroPosition:
		return "zero position"
	case OutcomeFix:
		return "fix"
	default:
		return "unknown"
	}
}

// pendingAltitude is the most recent altitude/satellite-count pair seen
// from a GGA sentence, held until the next fix consumes it.
type pendingAltitude struct {
	altitudeM *float64
	numSats   *int
}

// Assembler correlates RMC and GGA sentences into fixes. The receiver
// emits the two families independently at its own cadence, so the only
// reliable correlation is "most recent altitude sentence before this
// position sentence". An altitude reading is consumed by at most one fix;
// a fix with no fresh altitude before it simply has none.
type Assembler struct {
	pending *pendingAltitude
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Apply feeds one sentence through the assembler. now is the wall-clock
// time used when the sentence's own date/time cannot be combined.
func (a *Assembler) Apply(now time.Time, s nmea.Sentence) (*track.Fix, Outcome) {
	switch m := s.(type) {
	case nmea.GGA:
		return nil, a.applyGGA(m)
	case nmea.RMC:
		return a.applyRMC(now, m)
	default:
		return nil, OutcomeIgnored
	}
}

func (a *Assembler) applyGGA(m nmea.GGA) Outcome {
	if m.Latitude == 0 || m.Longitude == 0 {
		return OutcomeIgnored
	}
	p := &pendingAltitude{}
	if m.Altitude != 0 {
		v := m.Altitude
		p.altitudeM = &v
	}
	if m.NumSatellites != 0 {
		v := int(m.NumSatellites)
		p.numSats = &v
	}
	a.pending = p
	return OutcomeAltitudeStored
}

func (a *Assembler) applyRMC(now time.Time, m nmea.RMC) (*track.Fix, Outcome) {
	if m.Validity != nmea.ValidRMC {
		return nil, OutcomeVoidStatus
	}
	if m.Latitude == 0 && m.Longitude == 0 {
		return nil, OutcomeZeroPosition
	}

	fix := &track.Fix{
		Timestamp: timestamp(now, m.Date, m.Time),
		Lat:       track.Round(m.Latitude, 8),
		Lon:       track.Round(m.Longitude, 8),
	}
	if m.Speed != 0 {
		v := track.Round(m.Speed, 3)
		fix.SpeedKnots = &v
	}
	if m.Course != 0 {
		v := track.Round(m.Course, 2)
		fix.CourseDeg = &v
	}

	if a.pending != nil {
		fix.AltitudeM = a.pending.altitudeM
		fix.NumSats = a.pending.numSats
		a.pending = nil
	}
	return fix, OutcomeFix
}

const timestampLayout = "2006-01-02T15:04:05Z"

// timestamp combines the RMC date and time into a UTC timestamp. When
// either part is missing it falls back to the wall clock so an otherwise
// valid fix is never dropped over its label.
func timestamp(now time.Time, d nmea.Date, t nmea.Time) string {
	if !d.Valid || !t.Valid {
		return now.UTC().Format(timestampLayout)
	}
	// Two-digit NMEA year: 69-99 are 19xx, 00-68 are 20xx.
	year := 2000 + d.YY
	if d.YY >= 69 {
		year = 1900 + d.YY
	}
	dt := time.Date(year, time.Month(d.MM), d.DD,
		t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
	return dt.Format(timestampLayout)
}
