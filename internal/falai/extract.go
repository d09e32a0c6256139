package falai

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Модель отвечает свободным текстом, JSON внутри приходится выцеплять.
var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	jsonArrayRe  = regexp.MustCompile(`(?s)\[.*?\]`)
)

// ExtractJSONObject находит в сыром выводе модели первый JSON-объект
// и декодирует его в result.
func ExtractJSONObject(output string, result any) error {
	const op = "falai.ExtractJSONObject"

	match := jsonObjectRe.FindString(output)
	if match == "" {
		return fmt.Errorf("%s: no json object in model output", op)
	}
	if err := json.Unmarshal([]byte(match), result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ExtractJSONArray находит в сыром выводе модели первый JSON-массив
// и декодирует его в result.
func ExtractJSONArray(output string, result any) error {
	const op = "falai.ExtractJSONArray"

	match := jsonArrayRe.FindString(output)
	if match == "" {
		return fmt.Errorf("%s: no json array in model output", op)
	}
	if err := json.Unmarshal([]byte(match), result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
