package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/peereval/internal/domain/model"
	"github.com/okian/peereval/internal/domain/scoring"
)

// payload is the body returned by a GET on the store endpoint.
// The first row of each table repeats the sheet header and is skipped.
type payload struct {
	Data *tables `json:"data"`
}

type tables struct {
	Members []memberRow `json:"integrantes"`
	Records []recordRow `json:"avaliacoes"`
}

// appendBody is the body sent by a POST on the store endpoint.
type appendBody struct {
	Week      int     `json:"semana"`
	Evaluator string  `json:"avaliador"`
	Evaluated string  `json:"avaliado"`
	Score     float64 `json:"nota"`
}

// cell is one spreadsheet value. Sheets hand back strings, numbers,
// booleans or null for the same column depending on how it was typed.
type cell string

func (c *cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*c = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = cell(s)
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		*c = cell(b)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported cell %s: %w", b, err)
		}
		*c = cell(n.String())
	}
	return nil
}

func (c cell) text() string { return strings.TrimSpace(string(c)) }

// memberRow is one roster row: numero, nome, curso.
type memberRow struct {
	Number cell `json:"numero"`
	Name   cell `json:"nome"`
	Course cell `json:"curso"`
}

func (r *memberRow) UnmarshalJSON(b []byte) error {
	cells, isArray, err := positional(b)
	if err != nil {
		return err
	}
	if isArray {
		*r = memberRow{Number: at(cells, 0), Name: at(cells, 1), Course: at(cells, 2)}
		return nil
	}
	type plain memberRow
	return json.Unmarshal(b, (*plain)(r))
}

// recordRow is one history row: semana, avaliador, avaliado, nota.
type recordRow struct {
	Week      cell `json:"semana"`
	Evaluator cell `json:"avaliador"`
	Evaluated cell `json:"avaliado"`
	Score     cell `json:"nota"`
}

func (r *recordRow) UnmarshalJSON(b []byte) error {
	cells, isArray, err := positional(b)
	if err != nil {
		return err
	}
	if isArray {
		*r = recordRow{Week: at(cells, 0), Evaluator: at(cells, 1), Evaluated: at(cells, 2), Score: at(cells, 3)}
		return nil
	}
	type plain recordRow
	return json.Unmarshal(b, (*plain)(r))
}

// positional decodes b as a cell array when it is one.
func positional(b []byte) ([]cell, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '[' {
		return nil, false, nil
	}
	var cells []cell
	if err := json.Unmarshal(b, &cells); err != nil {
		return nil, true, err
	}
	return cells, true, nil
}

func at(cells []cell, i int) cell {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func (r memberRow) member() (model.Member, bool) {
	name := r.Name.text()
	if name == "" {
		return model.Member{}, false
	}
	label := r.Course.text()
	return model.Member{
		Number: r.Number.text(),
		Name:   name,
		Track:  model.ParseTrack(label),
		Label:  label,
	}, true
}

func (r recordRow) record() (model.Record, bool) {
	week, ok := parseWeek(r.Week.text())
	if !ok {
		return model.Record{}, false
	}
	evaluator, evaluated := r.Evaluator.text(), r.Evaluated.text()
	if evaluator == "" || evaluated == "" {
		return model.Record{}, false
	}
	rec := model.Record{Week: week, Evaluator: evaluator, Evaluated: evaluated}
	score, err := scoring.ParseScore(r.Score.text())
	if err != nil {
		rec.Unscored = true
		return rec, true
	}
	rec.Score = score
	return rec, true
}

// parseWeek accepts "3" and "3.0" but not "3.5" or anything below 1.
func parseWeek(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 1 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// decoded is a parsed payload plus counts of rows that could not be used.
type decoded struct {
	members        []model.Member
	records        []model.Record
	droppedMembers int
	droppedRecords int
	unscored       int
}

func decodePayload(r io.Reader) (decoded, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return decoded{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if p.Data == nil {
		return decoded{}, fmt.Errorf("%w: missing data object", ErrDecode)
	}

	var out decoded
	for _, row := range skipHeader(p.Data.Members) {
		m, ok := row.member()
		if !ok {
			out.droppedMembers++
			continue
		}
		out.members = append(out.members, m)
	}
	for _, row := range skipHeader(p.Data.Records) {
		rec, ok := row.record()
		if !ok {
			out.droppedRecords++
			continue
		}
		if rec.Unscored {
			out.unscored++
		}
		out.records = append(out.records, rec)
	}
	return out, nil
}

func skipHeader[T any](rows []T) []T {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}
