package content

import "fmt"

// Engine identifies a text-to-speech backend.
type Engine string

const (
	EngineVbee   Engine = "vbee"
	EngineGoogle Engine = "google"
)

// Engines lists the speech engines in display order.
var Engines = []Engine{EngineVbee, EngineGoogle}

// ParseEngine resolves a user-supplied engine name.
func ParseEngine(value string) (Engine, error) {
	switch Engine(value) {
	case EngineVbee, EngineGoogle:
		return Engine(value), nil
	default:
		return "", fmt.Errorf("unknown speech engine %q (want vbee or google)", value)
	}
}

// Voice is a selectable speaker for one engine.
type Voice struct {
	ID     string
	Label  string
	Engine Engine
}

var voiceCatalogue = []Voice{
	{ID: "hn_male_manhdung_48k-fhg", Label: "Hà Nội - Nam Mạnh Dũng", Engine: EngineVbee},
	{ID: "hn_female_thuylinh_48k-fhg", Label: "Hà Nội - Nữ Thùy Linh", Engine: EngineVbee},
	{ID: "sg_male_minhhoang_48k-fhg", Label: "Sài Gòn - Nam Minh Hoàng", Engine: EngineVbee},
	{ID: "sg_female_lananh_48k-fhg", Label: "Sài Gòn - Nữ Lan Anh", Engine: EngineVbee},
	{ID: "hue_female_huonggiang_48k-fhg", Label: "Huế - Nữ Hương Giang", Engine: EngineVbee},
	{ID: "vi-VN-Standard-A", Label: "Nữ - Giọng Miền Bắc 1", Engine: EngineGoogle},
	{ID: "vi-VN-Standard-C", Label: "Nữ - Giọng Miền Nam", Engine: EngineGoogle},
	{ID: "vi-VN-Standard-B", Label: "Nam - Giọng Miền Bắc", Engine: EngineGoogle},
	{ID: "vi-VN-Standard-D", Label: "Nam - Giọng Miền Nam 1", Engine: EngineGoogle},
	{ID: "vi-VN-Wavenet-A", Label: "Nữ - Giọng Miền Bắc 2 (Cao cấp)", Engine: EngineGoogle},
	{ID: "vi-VN-Wavenet-B", Label: "Nam - Giọng Miền Bắc 2 (Cao cấp)", Engine: EngineGoogle},
	{ID: "vi-VN-Wavenet-C", Label: "Nữ - Giọng Miền Nam 2 (Cao cấp)", Engine: EngineGoogle},
	{ID: "vi-VN-Wavenet-D", Label: "Nam - Giọng Miền Nam 2 (Cao cấp)", Engine: EngineGoogle},
}

// Voices returns the catalogue for engine in display order.
func Voices(engine Engine) []Voice {
	var out []Voice
	for _, v := range voiceCatalogue {
		if v.Engine == engine {
			out = append(out, v)
		}
	}
	return out
}

// LookupVoice finds a catalogued voice by engine and ID.
func LookupVoice(engine Engine, id string) (Voice, bool) {
	for _, v := range voiceCatalogue {
		if v.Engine == engine && v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// DefaultVoice returns the first catalogued voice for engine.
func DefaultVoice(engine Engine) string {
	if voices := Voices(engine); len(voices) > 0 {
		return voices[0].ID
	}
	return ""
}
