package svg

import "github.com/kotuku-run/parasol/core/object"

// Class-specific method IDs, transcribed from original_source's svg.h
// (negative IDs distinguish class methods from the universal action
// set): Render draws the document into a target bitmap region;
// ParseSymbol resolves a <symbol> definition's ID into a viewport.
const (
	MethodRender      int32 = -1
	MethodParseSymbol int32 = -2
)

// RenderArgs mirrors svg::Render's argument struct.
type RenderArgs struct {
	BitmapID      uint32
	X, Y          int
	Width, Height int
}

// ParseSymbolArgs mirrors svg::ParseSymbol's argument struct.
type ParseSymbolArgs struct {
	ID         string
	ViewportID uint32
}

// RenderFunc and ParseSymbolFunc are the class implementations a host
// application supplies; Document wires them to the method dispatch
// table so they're reachable the same way any other object method is.
type RenderFunc func(doc *Document, args RenderArgs) error
type ParseSymbolFunc func(doc *Document, args ParseSymbolArgs) (uint32, error)

// Document is the payload behind an SVG-class object instance: its
// animation scheduler plus the render/parse hooks a host wires in.
type Document struct {
	Scheduler    *Scheduler
	Render       RenderFunc
	ParseSymbol  ParseSymbolFunc
}

// NewClass builds the object.Class descriptor for SVG documents,
// registering Render/ParseSymbol as class-specific methods alongside
// the universal Init/Free actions every object carries.
func NewClass() *object.Class {
	c := object.NewClass("SVG", classID, func() any {
		return &Document{Scheduler: NewScheduler()}
	})
	c.AddAction(object.ActInit, "Init", func(obj any, _ any) error { return nil })
	c.AddAction(object.ActFree, "Free", func(obj any, _ any) error { return nil })
	c.AddMethod(MethodRender, "Render", func(obj any, args any) error {
		doc := obj.(*Document)
		ra, _ := args.(RenderArgs)
		if doc.Render == nil {
			return nil
		}
		return doc.Render(doc, ra)
	})
	c.AddMethod(MethodParseSymbol, "ParseSymbol", func(obj any, args any) error {
		doc := obj.(*Document)
		pa, _ := args.(ParseSymbolArgs)
		if doc.ParseSymbol == nil {
			return nil
		}
		_, err := doc.ParseSymbol(doc, pa)
		return err
	})
	return c
}

const classID uint32 = 0x53564700 // "SVG\0"
