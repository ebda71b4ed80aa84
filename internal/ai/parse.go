package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeBlockRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseIDList извлекает JSON-массив строк из ответа модели.
// Модели часто оборачивают ответ в markdown или добавляют пояснения, поэтому
// берём содержимое блока кода (если есть) и внешние квадратные скобки.
func ParseIDList(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if match := codeBlockRegex.FindStringSubmatch(text); len(match) > 1 {
		text = match[1]
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("ai: в ответе нет JSON-массива")
	}

	var raw []any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("ai: не удалось разобрать массив: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ai: элемент массива не строка: %v", v)
		}
		ids = append(ids, strings.TrimSpace(s))
	}
	return ids, nil
}
