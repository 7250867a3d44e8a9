// Package lattice flattens the vendor speech-lattice payload returned by the
// transcription service into plain text.
package lattice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseErrorText is shown in place of a transcript when the payload cannot be parsed.
const ParseErrorText = "Error parsing transcription data."

// ErrMalformed is the sentinel wrapped by every StageError.
var ErrMalformed = errors.New("malformed lattice payload")

// StageError reports which part of the payload failed to decode.
type StageError struct {
	Path   string
	Reason string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lattice %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("lattice %s: %s", e.Path, e.Reason)
}

func (e *StageError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformed, e.Err}
	}
	return []error{ErrMalformed}
}

// Pointer fields distinguish a missing key from an empty value.
type payload struct {
	Lattice2 *[]segment `json:"lattice2"`
}

type segment struct {
	JSON1Best *best `json:"json_1best"`
}

type best struct {
	St *sentence `json:"st"`
}

type sentence struct {
	Rt *[]result `json:"rt"`
}

type result struct {
	Ws *[]wordGroup `json:"ws"`
}

type wordGroup struct {
	Cw *[]candidate `json:"cw"`
}

type candidate struct {
	W *string `json:"w"`
}

// Parse decodes raw and concatenates every word fragment of
// lattice2[*].json_1best.st.rt[0].ws[*].cw[*].w in document order.
// No separators are inserted; spacing is carried by the fragments themselves.
func Parse(raw string) (string, error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", &StageError{Path: "$", Reason: "invalid json", Err: err}
	}
	if p.Lattice2 == nil {
		return "", missing("lattice2")
	}

	var b strings.Builder
	for i, seg := range *p.Lattice2 {
		path := fmt.Sprintf("lattice2[%d]", i)
		if seg.JSON1Best == nil {
			return "", missing(path + ".json_1best")
		}
		if seg.JSON1Best.St == nil {
			return "", missing(path + ".json_1best.st")
		}
		rt := seg.JSON1Best.St.Rt
		if rt == nil {
			return "", missing(path + ".json_1best.st.rt")
		}
		if len(*rt) == 0 {
			return "", &StageError{Path: path + ".json_1best.st.rt", Reason: "no results"}
		}
		ws := (*rt)[0].Ws
		if ws == nil {
			return "", missing(path + ".json_1best.st.rt[0].ws")
		}
		for j, group := range *ws {
			if group.Cw == nil {
				return "", missing(fmt.Sprintf("%s.json_1best.st.rt[0].ws[%d].cw", path, j))
			}
			for k, c := range *group.Cw {
				if c.W == nil {
					return "", missing(fmt.Sprintf("%s.json_1best.st.rt[0].ws[%d].cw[%d].w", path, j, k))
				}
				b.WriteString(*c.W)
			}
		}
	}
	return b.String(), nil
}

// ExtractReadableText is Parse with a fixed fallback: any failure yields ParseErrorText.
func ExtractReadableText(raw string) string {
	text, err := Parse(raw)
	if err != nil {
		return ParseErrorText
	}
	return text
}

func missing(path string) error {
	return &StageError{Path: path, Reason: "missing"}
}
