package export

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stem отбрасывает каталог и последнее расширение имени файла.
// Ведущие точки расширением не считаются: ".env" остается ".env".
func Stem(raw string) string {
	name := raw
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	body := strings.TrimLeft(name, ".")
	dot := strings.LastIndexByte(body, '.')
	if dot <= 0 {
		return name
	}
	return name[:len(name)-len(body)+dot]
}

var wordSeparators = strings.NewReplacer("_", " ", "-", " ")

// Slug человекочитаемое название: "cute_bunny-2.png" -> "Cute Bunny 2"
func Slug(raw string) string {
	return slugWords(Stem(raw))
}

// Handle Slug без пробелов: "cute_bunny.png" -> "CuteBunny"
func Handle(raw string) string {
	return removeSpaces(Slug(raw))
}

// slugWords приводит регистр слов уже отделенного от расширения имени.
// Повторное применение результат не меняет; точки внутри имени сохраняются.
func slugWords(stem string) string {
	words := strings.Fields(wordSeparators.Replace(stem))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize первая буква заглавная, остальные строчные
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:])
}

// upperFirst заглавной делается только первая буква строки
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(r)) + s[size:]
}

func removeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
