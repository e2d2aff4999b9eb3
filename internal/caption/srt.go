package caption

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateSRT renders the track as SubRip text: a 1-based index, a
// "start --> end" line with zero-padded HH:MM:SS,mmm timestamps, the
// caption text, with blank lines between entries.
func GenerateSRT(t Track) string {
	var sb strings.Builder
	for i, c := range t {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatSRTTime(c.Start),
			formatSRTTime(c.End)))
		sb.WriteString(c.Text)
		sb.WriteString("\n")
		if i < len(t)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// WriteSRTFile writes the track to path in SubRip format.
func WriteSRTFile(t Track, path string) error {
	return os.WriteFile(path, []byte(GenerateSRT(t)), 0644)
}

func formatSRTTime(seconds float64) string {
	ms := int(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := ms / 60000 % 60
	secs := ms / 1000 % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

var srtTimestampRegex = regexp.MustCompile(
	`(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`,
)

// ReadSRTFile parses a SubRip file into a track. The format carries no
// identity, so each caption is assigned a fresh ID.
func ReadSRTFile(path string) (Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer file.Close()

	var track Track
	scanner := bufio.NewScanner(file)

	var current *Caption
	var haveTimes bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && haveTimes {
			current.Text = strings.Join(textLines, "\n")
			track = append(track, *current)
		}
		current = nil
		haveTimes = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if current == nil {
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &Caption{}
				continue
			}
		}

		if current != nil && !haveTimes {
			matches := srtTimestampRegex.FindStringSubmatch(line)
			if len(matches) == 9 {
				start, err := parseSRTTimestamp(
					matches[1], matches[2], matches[3], matches[4],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := parseSRTTimestamp(
					matches[5], matches[6], matches[7], matches[8],
				)
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				start, end = clampBounds(start, end)
				current.Start = start
				current.End = end
				current.ID = uuid.New().String()
				haveTimes = true
				continue
			}
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	return track, nil
}

func parseSRTTimestamp(hours, minutes, seconds, millis string) (float64, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}
