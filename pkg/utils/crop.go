package utils

import (
	"strings"
)

// Common crop name aliases, including Hindi vernacular names that show
// up in chat-channel requests and mandi price boards.
var cropAliases = map[string]string{
	"tomato":      "tomato",
	"tamatar":     "tomato",
	"tomatoes":    "tomato",
	"potato":      "potato",
	"aloo":        "potato",
	"potatoes":    "potato",
	"onion":       "onion",
	"pyaaz":       "onion",
	"pyaz":        "onion",
	"onions":      "onion",
	"mango":       "mango",
	"aam":         "mango",
	"mangoes":     "mango",
	"banana":      "banana",
	"kela":        "banana",
	"bananas":     "banana",
	"spinach":     "spinach",
	"palak":       "spinach",
	"cauliflower": "cauliflower",
	"gobi":        "cauliflower",
	"phool gobi":  "cauliflower",
	"wheat":       "wheat",
	"gehu":        "wheat",
	"gehun":       "wheat",
	"rice":        "rice",
	"chawal":      "rice",
	"paddy":       "rice",
	"okra":        "okra",
	"bhindi":      "okra",
	"ladyfinger":  "okra",
	"brinjal":     "brinjal",
	"baingan":     "brinjal",
	"eggplant":    "brinjal",
}

// NormalizeCrop normalizes a user-input crop name to its canonical
// lowercase form. Unknown names are lowercased and trimmed as-is so the
// catalog can still fall back to the generic profile.
func NormalizeCrop(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := cropAliases[key]; ok {
		return canonical
	}
	return key
}
