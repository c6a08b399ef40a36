package parser

import (
	"fmt"

	"github.com/unalkalkan/bookreader/pkg/types"
)

// DefaultFactory creates parsers for supported formats
type DefaultFactory struct {
	parsers map[types.Format]Parser
}

// NewFactory creates a parser factory covering every types.Format
func NewFactory() *DefaultFactory {
	f := &DefaultFactory{
		parsers: make(map[types.Format]Parser),
	}

	f.registerParser(NewEPUBParser())
	f.registerParser(NewMOBIParser())
	f.registerParser(NewPDFParser())
	f.registerParser(NewFB2Parser())
	f.registerParser(NewTXTParser())

	return f
}

// registerParser registers a parser for its supported formats
func (f *DefaultFactory) registerParser(p Parser) {
	for _, format := range p.SupportedFormats() {
		f.parsers[format] = p
	}
}

// GetParser returns a parser for the given format. Format tags are matched
// case-insensitively.
func (f *DefaultFactory) GetParser(format types.Format) (Parser, error) {
	normalized, err := types.ParseFormat(string(format))
	if err != nil {
		return nil, unsupported(err.Error())
	}
	p, ok := f.parsers[normalized]
	if !ok {
		return nil, unsupported(fmt.Sprintf("no parser registered for %s", normalized))
	}
	return p, nil
}
