package chunking

import "strings"

// Normalize collapses all whitespace runs to single spaces and trims the
// ends. Chunk text is always normalized before indexing.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Splitter produces overlapping word windows. The contract requires
// Overlap < Size; the constructor normalizes misuse so the window always
// progresses.
type Splitter struct {
	Size    int
	Overlap int
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 4
	}
	return &Splitter{
		Size:    size,
		Overlap: overlap,
	}
}

// Split slides a [start, start+Size) window over the word sequence, advancing
// by Size-Overlap. The final chunk ends exactly at the last word; a text of
// at most Size words yields a single chunk.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]string, 0, len(words)/(s.Size-s.Overlap)+1)
	start := 0
	for start < len(words) {
		end := start + s.Size
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - s.Overlap
		if start < 0 {
			start = 0
		}
	}
	return out
}
