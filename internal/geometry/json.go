package geometry

import (
	"encoding/json"
	"fmt"
)

// Shapes cross the wire as flat JSON objects discriminated by a "type" tag,
// e.g. {"type":"rectangle","id":...,"startX":...}. Marshalers inject the tag;
// UnmarshalShape dispatches on it.

func (r *Rectangle) MarshalJSON() ([]byte, error) {
	type alias Rectangle
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindRectangle, (*alias)(r)})
}

func (e *Ellipse) MarshalJSON() ([]byte, error) {
	type alias Ellipse
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindEllipse, (*alias)(e)})
}

func (d *Diamond) MarshalJSON() ([]byte, error) {
	type alias Diamond
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindDiamond, (*alias)(d)})
}

func (l *Line) MarshalJSON() ([]byte, error) {
	type alias Line
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindLine, (*alias)(l)})
}

func (a *Arrow) MarshalJSON() ([]byte, error) {
	type alias Arrow
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindArrow, (*alias)(a)})
}

func (f *Freehand) MarshalJSON() ([]byte, error) {
	type alias Freehand
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindFreehand, (*alias)(f)})
}

func (t *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Kind Kind `json:"type"`
		*alias
	}{KindText, (*alias)(t)})
}

// UnmarshalShape decodes one tagged shape object.
func UnmarshalShape(data []byte) (Shape, error) {
	var tag struct {
		Kind Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("shape tag: %w", err)
	}

	var s Shape
	switch tag.Kind {
	case KindRectangle:
		s = &Rectangle{}
	case KindEllipse:
		s = &Ellipse{}
	case KindDiamond:
		s = &Diamond{}
	case KindLine:
		s = &Line{}
	case KindArrow:
		s = &Arrow{}
	case KindFreehand:
		s = &Freehand{}
	case KindText:
		s = &Text{}
	default:
		return nil, fmt.Errorf("unknown shape type %q", tag.Kind)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag.Kind, err)
	}
	return s, nil
}
