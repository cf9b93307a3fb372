package html

import protocol "github.com/tliron/glsp/protocol_3_16"

// StyleRegion is the text of one <style> element in an HTML document
type StyleRegion struct {
	Content string
	// Start is where Content begins in the HTML document, in UTF-16 columns
	Start protocol.Position
}
