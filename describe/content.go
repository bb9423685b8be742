package describe

import (
	"github.com/nachoal/describe-go/llm"
)

// Content is one item to describe: raw image bytes or UTF-8 text.
// Which one it is gets decided per call by the isImageType flag, not per item.
type Content []byte

// Text wraps a string as a content item
func Text(s string) Content {
	return Content(s)
}

// Image wraps raw image bytes as a content item
func Image(b []byte) Content {
	return Content(b)
}

// Texts wraps several strings, preserving order
func Texts(ss ...string) []Content {
	out := make([]Content, len(ss))
	for i, s := range ss {
		out[i] = Text(s)
	}
	return out
}

// Normalize returns the items as a fresh ordered slice. A single item becomes
// a one-element slice; the caller's slice is never aliased.
func Normalize(items ...Content) []Content {
	out := make([]Content, len(items))
	copy(out, items)
	return out
}

// imageMIME is the media type every image item is labelled with
const imageMIME = "image/png"

// encodeParts turns items into wire parts using one strategy for the whole call
func encodeParts(items []Content, isImageType bool) []llm.ContentPart {
	parts := make([]llm.ContentPart, len(items))
	for i, item := range items {
		if isImageType {
			parts[i] = llm.ImagePart(llm.DataURL(imageMIME, item))
		} else {
			parts[i] = llm.TextPart(string(item))
		}
	}
	return parts
}
