// Package chunker splits normalized document text into overlapping,
// sentence-respecting pieces sized for embedding and retrieval.
package chunker

import "strings"

const (
	DefaultChunkSize      = 1000 // character budget per chunk
	DefaultOverlapPercent = 10   // trailing word overlap carried into the next chunk
)

// Piece is one chunk of text with its page hint and best-effort byte
// offsets into the normalized source text.
type Piece struct {
	Content string
	Page    int
	Start   int
	End     int
}

type Chunker struct {
	size           int
	overlapPercent int
}

func New(size, overlapPercent int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlapPercent < 0 || overlapPercent >= 100 {
		overlapPercent = DefaultOverlapPercent
	}
	return &Chunker{size: size, overlapPercent: overlapPercent}
}

// Split cuts text into pieces of at most the configured character budget,
// closing a chunk only at sentence boundaries. Each new chunk is seeded
// with the trailing words of the previous one so neighboring chunks share
// context across the cut. page is attached to every piece; base shifts
// the recorded offsets so per-page texts can share one offset space.
//
// Empty input yields no pieces; input within the budget yields exactly
// one. A single sentence longer than the budget becomes its own
// oversized piece rather than being cut mid-sentence.
func (c *Chunker) Split(text string, page, base int) []Piece {
	sents := sentenceSpans(text)
	if len(sents) == 0 {
		return nil
	}

	var pieces []Piece
	chunkStart := sents[0].start
	curEnd := chunkStart

	for _, s := range sents {
		if curEnd > chunkStart && s.end-chunkStart > c.size {
			pieces = append(pieces, Piece{
				Content: text[chunkStart:curEnd],
				Page:    page,
				Start:   base + chunkStart,
				End:     base + curEnd,
			})
			// Re-open the window at the start of the trailing overlap, so
			// the next chunk begins with the words that closed this one.
			off := tailOffset(text[chunkStart:curEnd], c.overlapPercent)
			if off >= curEnd-chunkStart {
				chunkStart = s.start
			} else {
				chunkStart += off
			}
		}
		curEnd = s.end
	}

	if strings.TrimSpace(text[chunkStart:curEnd]) != "" {
		pieces = append(pieces, Piece{
			Content: text[chunkStart:curEnd],
			Page:    page,
			Start:   base + chunkStart,
			End:     base + curEnd,
		})
	}
	return pieces
}

// tailOffset returns the offset within content where the trailing
// overlap begins: the start of the last ~percent of its words. A result
// equal to len(content) means no overlap.
func tailOffset(content string, percent int) int {
	var starts []int
	inWord := false
	for i := 0; i < len(content); i++ {
		if isSpace(content[i]) {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	n := len(starts) * percent / 100
	if n <= 0 {
		return len(content)
	}
	return starts[len(starts)-n]
}

type span struct {
	start, end int
}

// sentenceSpans locates sentence-like units by punctuation-boundary
// heuristics: a run of '.', '!' or '?' followed by whitespace or end of
// input closes a sentence. Abbreviations can split early; that is an
// accepted approximation. Offsets are byte positions into text.
func sentenceSpans(text string) []span {
	var spans []span
	n := len(text)
	i := 0
	for i < n {
		for i < n && isSpace(text[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		end := -1
		for j := i; j < n; j++ {
			if !isTerminal(text[j]) {
				continue
			}
			k := j + 1
			for k < n && isTerminal(text[k]) {
				k++
			}
			if k >= n || isSpace(text[k]) {
				end = k
				break
			}
			j = k - 1
		}
		if end == -1 {
			end = n
			for end > start && isSpace(text[end-1]) {
				end--
			}
		}
		spans = append(spans, span{start: start, end: end})
		i = end
	}
	return spans
}

func isTerminal(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
