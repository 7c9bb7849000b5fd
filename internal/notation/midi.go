package notation

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	midiTicksPerQuarter = 480
	defaultVelocity     = 64
)

// ToMIDI renders a stream as a standard MIDI file (format 0, 480 ticks per
// quarter) with a tempo meta event and the stream's time signature.
func ToMIDI(s *Stream, tempoBPM int) ([]byte, error) {
	file := smf.New()
	file.TimeFormat = smf.MetricTicks(midiTicksPerQuarter)

	var track smf.Track

	microsecondsPerBeat := uint32(60000000.0 / float64(tempoBPM))
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	denomPow := uint8(2)
	switch s.TimeSig.Denominator {
	case 1:
		denomPow = 0
	case 2:
		denomPow = 1
	case 4:
		denomPow = 2
	case 8:
		denomPow = 3
	case 16:
		denomPow = 4
	}
	track.Add(0, smf.Message([]byte{
		0xFF, 0x58, 0x04, byte(s.TimeSig.Numerator), denomPow, 0x18, 0x08,
	}))

	// Flatten note on/off pairs into absolute-tick events, then emit with
	// running deltas.
	type midiEvent struct {
		tick uint32
		on   bool
		note uint8
		vel  uint8
	}
	var events []midiEvent
	for _, ev := range s.Events {
		startTick := uint32(math.Round(ev.Offset * midiTicksPerQuarter))
		endTick := startTick + uint32(math.Round(ev.Duration*midiTicksPerQuarter))
		if endTick <= startTick {
			endTick = startTick + 1
		}
		for _, p := range ev.Pitches {
			if p.MIDI() < 0 || p.MIDI() > 127 {
				continue
			}
			vel := uint8(defaultVelocity)
			if v, ok := velocityOverride(ev); ok {
				vel = v
			}
			events = append(events, midiEvent{tick: startTick, on: true, note: uint8(p.MIDI()), vel: vel})
			events = append(events, midiEvent{tick: endTick, on: false, note: uint8(p.MIDI())})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		// Note-offs first at equal ticks so repeated pitches retrigger.
		return !events[i].on && events[j].on
	})

	channel := uint8(0)
	var currentTick uint32
	for _, ev := range events {
		delta := ev.tick - currentTick
		if ev.on {
			track.Add(delta, midi.NoteOn(channel, ev.note, ev.vel))
		} else {
			track.Add(delta, midi.NoteOff(channel, ev.note))
		}
		currentTick = ev.tick
	}

	track.Close(0)
	if err := file.Add(track); err != nil {
		return nil, fmt.Errorf("add midi track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write midi: %w", err)
	}
	return buf.Bytes(), nil
}

func velocityOverride(ev Event) (uint8, bool) {
	if ev.Velocity > 0 {
		return ev.Velocity, true
	}
	return 0, false
}

// Humanize applies seeded timing, velocity and duration jitter to a stream,
// with an optional velocity curve shaping the phrase. amount is 0.0-1.0.
func Humanize(s *Stream, amount float64, velocityCurve string, rng *rand.Rand) {
	timingJitter := 0.05 * amount
	velocityJitter := int(25 * amount)
	durationJitter := 0.15 * amount
	if velocityCurve == "dynamic" {
		velocityJitter = int(40 * amount)
	}

	total := len(s.Events)
	for i := range s.Events {
		ev := &s.Events[i]

		newOffset := ev.Offset + rng.NormFloat64()*timingJitter
		if newOffset < 0 {
			newOffset = 0
		}
		ev.Offset = newOffset

		base := defaultVelocity
		if total > 1 {
			switch velocityCurve {
			case "crescendo":
				base = 50 + int(float64(i)/float64(total-1)*77)
			case "diminuendo":
				base = 50 + int((1-float64(i)/float64(total-1))*77)
			}
		}
		vel := base
		if velocityJitter > 0 {
			vel += rng.Intn(2*velocityJitter+1) - velocityJitter
		}
		if vel < 1 {
			vel = 1
		} else if vel > 127 {
			vel = 127
		}
		ev.Velocity = uint8(vel)

		factor := 1 + (rng.Float64()*2-1)*durationJitter
		ev.Duration *= factor
	}
}
