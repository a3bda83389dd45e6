package ptz

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var presetLinePattern = regexp.MustCompile(`^presets\[(\d+)\]\.(\w+)=(.+)$`)

// ParsePresets は getPresets のレスポンス本文を解析する
//
//	presets[0].Index=1
//	presets[0].Name=入口
//
// 配列の添字順に並べて返す。Index, Name 以外のキーは無視する。
func ParsePresets(text string) ([]Preset, error) {
	byPosition := make(map[int]*Preset)

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		matches := presetLinePattern.FindStringSubmatch(line)
		if matches == nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: ErrMalformedStatus}
		}

		position, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
		preset, exists := byPosition[position]
		if !exists {
			preset = &Preset{}
			byPosition[position] = preset
		}

		switch matches[2] {
		case "Index":
			index, err := strconv.Atoi(strings.TrimSpace(matches[3]))
			if err != nil {
				return nil, &ParseError{
					Line: lineNo,
					Text: line,
					Err:  fmt.Errorf("%w: Index は整数ではありません", ErrMalformedStatus),
				}
			}
			preset.Index = index
		case "Name":
			preset.Name = matches[3]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}

	positions := make([]int, 0, len(byPosition))
	for position := range byPosition {
		positions = append(positions, position)
	}
	sort.Ints(positions)

	presets := make([]Preset, 0, len(positions))
	for _, position := range positions {
		presets = append(presets, *byPosition[position])
	}
	return presets, nil
}
