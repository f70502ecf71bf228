package attribute

import (
	"strings"

	"scrapeflow/backend/internal/protocol"
)

// Attribute keys resolvable against an element snapshot.
const (
	KeyInnerText = "innerText"
	KeyHref      = "href"
	KeySrc       = "src"
)

// OptionsFor returns the ordered set of extractable attributes for an
// element. Anchors offer text then URL, images offer alt text then image URL,
// everything else offers a single generic text option. The list is empty when
// an anchor or image carries no usable data.
func OptionsFor(tagName string, info protocol.ElementInfo) []protocol.AttributeOption {
	var options []protocol.AttributeOption
	switch strings.ToLower(tagName) {
	case "a":
		if info.InnerText != "" {
			options = append(options, protocol.AttributeOption{Label: "Link Text", Value: KeyInnerText})
		}
		if info.URL != "" {
			options = append(options, protocol.AttributeOption{Label: "Link URL", Value: KeyHref})
		}
	case "img":
		if info.InnerText != "" {
			options = append(options, protocol.AttributeOption{Label: "Alt Text", Value: KeyInnerText})
		}
		if info.ImageURL != "" {
			options = append(options, protocol.AttributeOption{Label: "Image URL", Value: KeySrc})
		}
	default:
		options = append(options, protocol.AttributeOption{Label: "Text", Value: KeyInnerText})
	}
	return options
}

// ValueFor resolves an attribute key to its concrete value. It never fails;
// absent data degrades to an empty string.
func ValueFor(key string, info protocol.ElementInfo) string {
	switch key {
	case KeyHref:
		return info.URL
	case KeySrc:
		return info.ImageURL
	default:
		return info.InnerText
	}
}
