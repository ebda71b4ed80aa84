package ai

import (
	"fmt"
	"strings"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
)

const matchSystemPrompt = `Ты помогаешь бюро находок сопоставлять потерянные и найденные вещи.
Тебе дают описание потерянной вещи и список найденных вещей с идентификаторами.
Верни ТОЛЬКО JSON-массив строковых идентификаторов найденных вещей, которые могут быть потерянной вещью,
от наиболее вероятной к наименее вероятной. Не добавляй вещи, которые явно не подходят.
Если ничего не подходит, верни []. Никакого текста кроме массива.`

// BuildMatchPrompt собирает текст запроса: сначала потерянная вещь, затем кандидаты блоками.
func BuildMatchPrompt(query repository.MatchQuery, candidates []*entity.Item) string {
	var b strings.Builder

	b.WriteString("ПОТЕРЯННАЯ ВЕЩЬ\n")
	writeField(&b, "Название", query.Name)
	writeField(&b, "Категория", query.Category)
	writeField(&b, "Описание", query.Description)
	writeField(&b, "Особые приметы", query.DistinguishingMarks)
	writeField(&b, "Место", query.Location)
	writeField(&b, "Дата", query.Date)

	b.WriteString("\nНАЙДЕННЫЕ ВЕЩИ\n")
	for i, item := range candidates {
		fmt.Fprintf(&b, "\n[%d] id: %s\n", i+1, item.ID)
		writeField(&b, "Название", item.Name)
		writeField(&b, "Категория", item.Category)
		writeField(&b, "Описание", item.Description)
		if item.DistinguishingMarks != nil {
			writeField(&b, "Особые приметы", *item.DistinguishingMarks)
		}
		writeField(&b, "Место", item.Location)
		writeField(&b, "Дата", item.Date.Format("2006-01-02"))
	}

	b.WriteString("\nОтвет: JSON-массив id, например [\"id1\", \"id2\"].")
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
