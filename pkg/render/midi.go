package render

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/codecomposer/pkg/composer"
	"github.com/james-see/codecomposer/pkg/rhythm"
	"github.com/james-see/codecomposer/pkg/style"
)

// voiceChannels maps voice names to MIDI channels
var voiceChannels = map[string]uint8{
	composer.VoiceMelody:        0,
	composer.VoiceAccompaniment: 1,
}

// event is a note message at an absolute tick
type event struct {
	tick uint32
	on   bool
	msg  midi.Message
}

// MIDI renders the composition as a format 1 Standard MIDI File: one conductor
// track followed by one track per selected voice
func MIDI(c *composer.Composition, voices Voices) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil composition")
	}

	tempo := c.Metadata.Tempo
	if tempo <= 0 {
		tempo = 120
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(rhythm.PPQ)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("%s %s %s", c.Metadata.Style, c.Metadata.Key, c.Metadata.Scale)))

	// Tempo meta event
	microsecondsPerBeat := uint32(60000000 / tempo)
	conductor.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	// Time signature (4/4)
	conductor.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))
	conductor.Close(uint32(c.Length()))
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("failed to add conductor track: %w", err)
	}

	for _, v := range voices.Select(c) {
		track := voiceTrack(v, style.InstrumentProgram(instrument(c)), c.Length())
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("failed to add %s track: %w", v.Name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// voiceTrack converts a voice's notes to a track whose end lands on the last bar line
func voiceTrack(v composer.Voice, program uint8, length rhythm.Duration) smf.Track {
	channel := voiceChannels[v.Name]

	events := make([]event, 0, len(v.Notes)*2)
	for _, n := range v.Notes {
		key := uint8(n.Pitch.MIDI())
		events = append(events,
			event{tick: uint32(n.Start), on: true, msg: midi.NoteOn(channel, key, uint8(n.Velocity))},
			event{tick: uint32(n.Start + n.Duration), msg: midi.NoteOff(channel, key)},
		)
	}
	// Offs sort before ons at the same tick so repeated pitches retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(v.Name))
	track.Add(0, midi.ProgramChange(channel, program))

	var current uint32
	for _, ev := range events {
		track.Add(ev.tick-current, ev.msg)
		current = ev.tick
	}

	end := uint32(length)
	if end < current {
		end = current
	}
	track.Close(end - current)
	return track
}

// TrackSummary describes one track of a parsed MIDI file
type TrackSummary struct {
	Name     string `json:"name,omitempty"`
	Channels []int  `json:"channels,omitempty"`
	Program  *int   `json:"program,omitempty"`
	Notes    int    `json:"notes"`
	Ticks    int64  `json:"ticks"`
}

// Summary describes a parsed MIDI file
type Summary struct {
	Resolution uint16         `json:"resolution"`
	Tempo      float64        `json:"tempo"`
	Meter      string         `json:"meter,omitempty"`
	Tracks     []TrackSummary `json:"tracks"`
	Notes      int            `json:"notes"`
	Ticks      int64          `json:"ticks"`
	Bars       float64        `json:"bars"`
}

// Inspect parses MIDI data and summarizes its tracks
func Inspect(data []byte) (*Summary, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	summary := &Summary{Resolution: 96, Tempo: 120}
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		summary.Resolution = mt.Resolution()
	}

	for _, track := range s.Tracks {
		ts := TrackSummary{}
		channels := map[int]bool{}
		var tick int64

		for _, ev := range track {
			tick += int64(ev.Delta)
			msg := ev.Message

			if len(msg) >= 3 && msg[0] == 0xFF {
				switch msg[1] {
				case 0x03:
					// Track name: FF 03 len text
					if n := int(msg[2]); len(msg) >= 3+n {
						ts.Name = string(msg[3 : 3+n])
					}
				case 0x51:
					if len(msg) >= 6 {
						microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
						if microsecondsPerBeat > 0 {
							summary.Tempo = 60000000.0 / float64(microsecondsPerBeat)
						}
					}
				case 0x58:
					if len(msg) >= 5 {
						summary.Meter = fmt.Sprintf("%d/%d", msg[3], 1<<msg[4])
					}
				}
				continue
			}

			// Program change: Cn pp
			if len(msg) == 2 && msg[0]&0xF0 == 0xC0 {
				p := int(msg[1])
				ts.Program = &p
				continue
			}

			var ch, key, vel uint8
			if msg.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				ts.Notes++
				channels[int(ch)] = true
			}
		}

		for ch := range channels {
			ts.Channels = append(ts.Channels, ch)
		}
		sort.Ints(ts.Channels)
		ts.Ticks = tick

		summary.Tracks = append(summary.Tracks, ts)
		summary.Notes += ts.Notes
		if tick > summary.Ticks {
			summary.Ticks = tick
		}
	}

	if summary.Resolution > 0 {
		summary.Bars = float64(summary.Ticks) / float64(int64(summary.Resolution)*4)
	}
	return summary, nil
}
