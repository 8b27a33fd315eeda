package replay

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
)

const maxLineBytes = 16 << 20

// csvColumns are the required CSV header columns, in any order.
var csvColumns = []string{"game_id", "event_num", "period", "clock", "team", "score_home", "score_away", "text"}

// DetectFormat picks the format of path from its extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadFile reads the games in path. CSV files need a sidecar header at
// SidecarPath(path).
func LoadFile(path string, format Format) ([]model.GameInput, error) {
	if format == FormatAuto {
		f, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatJSON:
		return DecodeJSON(f)
	case FormatNDJSON:
		return DecodeNDJSON(f)
	case FormatCSV:
		headers, err := loadHeaders(SidecarPath(path))
		if err != nil {
			return nil, err
		}
		return DecodeCSV(f, headers)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// SidecarPath returns the header file of a CSV play file:
// plays.csv has its header in plays.json.
func SidecarPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".json"
}

// DecodeJSON reads one game object or an array of games.
func DecodeJSON(r io.Reader) ([]model.GameInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var games []model.GameInput
		if err := json.Unmarshal(data, &games); err != nil {
			return nil, fmt.Errorf("decode games: %w", err)
		}
		return games, nil
	}
	var in model.GameInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return []model.GameInput{in}, nil
}

// DecodeNDJSON reads one game per line. Blank lines are skipped.
func DecodeNDJSON(r io.Reader) ([]model.GameInput, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var games []model.GameInput
	for line := 1; sc.Scan(); line++ {
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var in model.GameInput
		if err := json.Unmarshal(text, &in); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		games = append(games, in)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// DecodeCSV reads play rows and groups them into games in order of first
// appearance. Every game id needs a header.
func DecodeCSV(r io.Reader, headers []Header) ([]model.GameInput, error) {
	byID := make(map[string]Header, len(headers))
	for _, h := range headers {
		byID[h.GameID] = h
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedCSV, err)
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, name)
		}
	}

	var (
		games []model.GameInput
		index = map[string]int{}
	)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}
		field := func(name string) string {
			if i := col[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		play := model.RawPlay{
			GameID:    field("game_id"),
			Clock:     field("clock"),
			Team:      field("team"),
			ScoreHome: field("score_home"),
			ScoreAway: field("score_away"),
			Text:      field("text"),
		}
		if play.EventNum, err = optionalInt(field("event_num")); err != nil {
			return nil, fmt.Errorf("%w: line %d: event_num: %w", ErrMalformedCSV, line, err)
		}
		if play.Period, err = strconv.Atoi(field("period")); err != nil {
			return nil, fmt.Errorf("%w: line %d: period: %w", ErrMalformedCSV, line, err)
		}

		i, ok := index[play.GameID]
		if !ok {
			h, found := byID[play.GameID]
			if !found {
				return nil, fmt.Errorf("%w: %q", ErrMissingHeader, play.GameID)
			}
			i = len(games)
			index[play.GameID] = i
			games = append(games, model.GameInput{GameID: h.GameID, Home: h.Home, Away: h.Away, Starters: h.Starters})
		}
		games[i].Plays = append(games[i].Plays, play)
	}
	return games, nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func loadHeaders(path string) ([]Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingHeader, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var hs []Header
		if err := json.Unmarshal(data, &hs); err != nil {
			return nil, fmt.Errorf("decode headers %s: %w", path, err)
		}
		return hs, nil
	}
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode header %s: %w", path, err)
	}
	return []Header{h}, nil
}
