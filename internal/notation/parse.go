package notation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cadenzalabs/composer-api/internal/apierr"
	"github.com/cadenzalabs/composer-api/internal/models"
	"github.com/cadenzalabs/composer-api/internal/theory"
)

var (
	musicxmlPattern = regexp.MustCompile(`^\s*(<\?xml|<score|<part|<!DOCTYPE)`)
	abcPattern      = regexp.MustCompile(`^\s*[A-Z]:`)
	notesPattern    = regexp.MustCompile(`^\s*[A-Ga-g][#b]?\d`)
)

// DetectFormat guesses the format of a musical input string.
func DetectFormat(input string) (models.InputFormat, error) {
	stripped := strings.TrimSpace(input)
	if stripped == "" {
		return "", apierr.EmptyInput("Input is empty", "")
	}
	if musicxmlPattern.MatchString(stripped) {
		return models.FormatMusicXML, nil
	}
	if abcPattern.MatchString(stripped) {
		return models.FormatABC, nil
	}
	if notesPattern.MatchString(stripped) {
		return models.FormatNotes, nil
	}
	return "", apierr.Parse("Could not detect input format. Please specify format explicitly.").
		WithSuggestions("musicxml", "abc", "notes")
}

// Parse converts a textual musical input into a Stream, auto-detecting the
// format when none is given.
func Parse(input string, format models.InputFormat) (*Stream, error) {
	if strings.TrimSpace(input) == "" {
		return nil, apierr.EmptyInput("Input is empty", "")
	}
	if format == "" {
		detected, err := DetectFormat(input)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	switch format {
	case models.FormatMusicXML:
		return parseMusicXML(input)
	case models.FormatABC:
		return parseABC(input)
	case models.FormatNotes:
		return ParseNoteList(input)
	default:
		return nil, apierr.Parse(fmt.Sprintf("Unknown format: %s", format))
	}
}

// Quarter-note lengths of the note-list duration codes.
var durationCodes = map[byte]float64{
	'w': 4.0,
	'h': 2.0,
	'q': 1.0,
	'e': 0.5,
	's': 0.25,
}

// ParseNoteList parses the flat token form "C4:q, D4:e E4:h" or
// "C4 D4 E4 G4". Durations default to quarter; each trailing "d" dots the
// value (×1.5, stackable).
func ParseNoteList(input string) (*Stream, error) {
	s := NewStream()
	tokens := regexp.MustCompile(`[,\s]+`).Split(strings.TrimSpace(input), -1)

	for _, token := range tokens {
		if token == "" {
			continue
		}

		pitchStr := token
		durStr := "q"
		if i := strings.IndexByte(token, ':'); i >= 0 {
			pitchStr = token[:i]
			durStr = token[i+1:]
		}

		p, err := theory.ParsePitch(pitchStr)
		if err != nil {
			return nil, apierr.Parse(fmt.Sprintf("Invalid pitch: %s", pitchStr))
		}

		if durStr == "" {
			return nil, apierr.Parse(fmt.Sprintf("Invalid duration in token: %s", token))
		}
		dur, ok := durationCodes[durStr[0]]
		if !ok {
			dur = 1.0
		}
		for _, c := range durStr[1:] {
			if c == 'd' {
				dur *= 1.5
			}
		}

		s.AppendNote(p, dur)
	}

	if len(s.Events) == 0 {
		return nil, apierr.EmptyInput("Input contains no notes", "")
	}
	return s, nil
}

// parseABC handles a pragmatic subset of the compact tune notation: the
// X/T/M/L/K header fields and a body of pitch letters with ^/_/= accidental
// prefixes, octave marks (' and ,), and integer or /n length multipliers.
// Bar lines are ignored; z rests advance time.
func parseABC(input string) (*Stream, error) {
	s := NewStream()
	unit := 0.5 // L:1/8 default, in quarter-note units

	var body strings.Builder
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) >= 2 && trimmed[1] == ':' && trimmed[0] >= 'A' && trimmed[0] <= 'Z' {
			value := strings.TrimSpace(trimmed[2:])
			switch trimmed[0] {
			case 'M':
				if ts, err := ParseTimeSignature(value); err == nil {
					s.TimeSig = ts
				}
			case 'L':
				if parts := strings.Split(value, "/"); len(parts) == 2 {
					num, err1 := strconv.Atoi(parts[0])
					den, err2 := strconv.Atoi(parts[1])
					if err1 == nil && err2 == nil && den > 0 {
						unit = float64(num) / float64(den) * 4.0
					}
				}
			case 'K':
				s.KeyName = value
			}
			continue
		}
		body.WriteString(trimmed)
		body.WriteByte(' ')
	}

	text := body.String()
	cursor := 0.0
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '|' || c == ']' || c == '[' || c == ':':
			i++
		case c == '^' || c == '_' || c == '=':
			accidental := 0
			if c == '^' {
				accidental = 1
			} else if c == '_' {
				accidental = -1
			}
			i++
			if i >= len(text) || !isABCNoteLetter(text[i]) {
				return nil, apierr.Parse("Dangling accidental in tune body")
			}
			n, adv, err := readABCNote(text[i:], unit, accidental)
			if err != nil {
				return nil, err
			}
			s.InsertAt(cursor, n.Pitches, n.Duration)
			cursor += n.Duration
			i += adv
		case isABCNoteLetter(c):
			n, adv, err := readABCNote(text[i:], unit, 0)
			if err != nil {
				return nil, err
			}
			s.InsertAt(cursor, n.Pitches, n.Duration)
			cursor += n.Duration
			i += adv
		case c == 'z' || c == 'Z':
			adv, dur := readABCLength(text[i+1:], unit)
			cursor += dur // rest: silence, advance only
			i += 1 + adv
		default:
			i++ // skip decorations we do not model
		}
	}

	if len(s.Events) == 0 {
		return nil, apierr.Parse("Tune body contains no notes")
	}
	return s, nil
}

func isABCNoteLetter(c byte) bool {
	return (c >= 'A' && c <= 'G') || (c >= 'a' && c <= 'g')
}

// readABCNote reads one pitch starting at text[0], returning the event,
// bytes consumed, and any parse failure. Uppercase letters sit in octave 4,
// lowercase in octave 5; ' raises and , lowers by an octave.
func readABCNote(text string, unit float64, accidental int) (Event, int, error) {
	c := text[0]
	octave := 4
	letter := c
	if c >= 'a' && c <= 'g' {
		octave = 5
		letter = c - ('a' - 'A')
	}

	i := 1
	for i < len(text) && (text[i] == '\'' || text[i] == ',') {
		if text[i] == '\'' {
			octave++
		} else {
			octave--
		}
		i++
	}

	name := string(letter)
	if accidental > 0 {
		name += "#"
	} else if accidental < 0 {
		name += "b"
	}
	p, err := theory.ParsePitch(fmt.Sprintf("%s%d", name, octave))
	if err != nil {
		return Event{}, 0, apierr.Parse(fmt.Sprintf("Invalid pitch in tune body: %s%d", name, octave))
	}

	adv, dur := readABCLength(text[i:], unit)
	return Event{Pitches: []theory.Pitch{p}, Duration: dur}, i + adv, nil
}

// readABCLength reads an optional length multiplier ("2", "/2", "3/2", "/").
func readABCLength(text string, unit float64) (int, float64) {
	i := 0
	num, den := 1, 1
	digits := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		digits = digits*10 + int(text[i]-'0')
		i++
	}
	if digits > 0 {
		num = digits
	}
	if i < len(text) && text[i] == '/' {
		i++
		d := 0
		for i < len(text) && text[i] >= '0' && text[i] <= '9' {
			d = d*10 + int(text[i]-'0')
			i++
		}
		if d == 0 {
			d = 2
		}
		den = d
	}
	return i, unit * float64(num) / float64(den)
}
