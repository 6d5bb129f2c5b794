package ingest

import (
	"strings"
)

// Splitter 递归字符切分器
// 优先在段落、行、空格边界切，保证块长不超过 ChunkSize 且相邻块有 Overlap 重叠
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// NewSplitter 创建切分器
func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

var separators = []string{"\n\n", "\n", " ", ""}

// Split 把文本切成块，丢弃只剩空白的块
func (s *Splitter) Split(text string) []string {
	pieces := s.split(text, separators)

	chunks := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, piece)
		}
	}
	return chunks
}

func (s *Splitter) split(text string, seps []string) []string {
	if len([]rune(text)) <= s.ChunkSize {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	sep := seps[len(seps)-1]
	rest := seps
	for i, candidate := range seps {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		parts = splitRunes(text, s.ChunkSize)
	} else {
		parts = strings.Split(text, sep)
	}

	// 过长的片段递归用更细的分隔符继续切，其余的合并成尽量满的块
	var chunks []string
	var pending []string
	for _, part := range parts {
		if len([]rune(part)) > s.ChunkSize {
			chunks = append(chunks, s.merge(pending, sep)...)
			pending = nil
			chunks = append(chunks, s.split(part, rest)...)
			continue
		}
		pending = append(pending, part)
	}
	chunks = append(chunks, s.merge(pending, sep)...)
	return chunks
}

// merge 把小片段拼成不超过 ChunkSize 的块，并在块间保留 Overlap 重叠
func (s *Splitter) merge(parts []string, sep string) []string {
	if len(parts) == 0 {
		return nil
	}

	sepLen := len([]rune(sep))

	var chunks []string
	var window []string
	windowLen := 0

	pop := func() {
		windowLen -= len([]rune(window[0]))
		if len(window) > 1 {
			windowLen -= sepLen
		}
		window = window[1:]
	}

	// 出块后从窗口尾部回收重叠做下一块开头
	// 留存部分必须给即将进入的片段让出空间，否则下一块会超长
	flush := func(incoming int) {
		if windowLen == 0 {
			return
		}
		chunk := strings.Join(window, sep)
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		for windowLen > s.Overlap || (windowLen > 0 && windowLen+incoming+sepLen > s.ChunkSize) {
			pop()
		}
	}

	for _, part := range parts {
		partLen := len([]rune(part))
		if windowLen > 0 && windowLen+partLen+sepLen > s.ChunkSize {
			flush(partLen)
		}
		window = append(window, part)
		windowLen += partLen
		if len(window) > 1 {
			windowLen += sepLen
		}
	}
	flush(0)

	return chunks
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
