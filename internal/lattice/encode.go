package lattice

import "encoding/json"

// Encode builds a lattice payload with one segment per entry of segments and
// one single-candidate word group per fragment. Parse(Encode(s)) returns the
// concatenation of all fragments.
func Encode(segments [][]string) (string, error) {
	lat := make([]segment, 0, len(segments))
	for _, words := range segments {
		groups := make([]wordGroup, 0, len(words))
		for _, w := range words {
			cw := []candidate{{W: &w}}
			groups = append(groups, wordGroup{Cw: &cw})
		}
		rt := []result{{Ws: &groups}}
		lat = append(lat, segment{JSON1Best: &best{St: &sentence{Rt: &rt}}})
	}
	data, err := json.Marshal(payload{Lattice2: &lat})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
