package main

import (
	"fmt"

	"github.com/signadot/go-rdata/robj"

	"github.com/fatih/color"
)

type sprintf func(string, ...any) string

type colors struct {
	Type  sprintf
	Tag   sprintf
	Value sprintf
	Str   sprintf
	NA    sprintf
	Ref   sprintf
	Dim   sprintf
}

func plainColors() *colors {
	return &colors{
		Type:  fmt.Sprintf,
		Tag:   fmt.Sprintf,
		Value: fmt.Sprintf,
		Str:   fmt.Sprintf,
		NA:    fmt.Sprintf,
		Ref:   fmt.Sprintf,
		Dim:   fmt.Sprintf,
	}
}

func newColors() *colors {
	return &colors{
		Type:  color.RGB(74, 92, 138).SprintfFunc(),
		Tag:   color.RGB(196, 96, 16).SprintfFunc(),
		Value: color.RGB(128, 216, 236).SprintfFunc(),
		Str:   color.RGB(8, 196, 16).SprintfFunc(),
		NA:    color.RGB(168, 0, 196).SprintfFunc(),
		Ref:   color.RGB(255, 0, 196).SprintfFunc(),
		Dim:   color.BlueString,
	}
}

// value picks the color for an element of a vector of type t.
func (c *colors) value(t robj.Type) sprintf {
	if t == robj.StrType || t == robj.CharType {
		return c.Str
	}
	return c.Value
}
