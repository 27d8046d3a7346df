package inspector

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Widget types for rendering fields.
type Widget int

const (
	WidgetAuto Widget = iota
	WidgetLabel
	WidgetBar
	WidgetSigned
	WidgetAngle
	WidgetColor
	WidgetSkip
)

// Field represents a component field with rendering hints.
type Field struct {
	Name    string
	Value   any
	Widget  Widget
	Options map[string]string
}

// Section is one component's fields under a heading.
type Section struct {
	Title  string
	Fields []Field
}

// ParseTag parses an inspect struct tag.
// Format: `inspect:"widget[,option:value...]"`
// Examples:
//
//	`inspect:"bar,max:0.2"`
//	`inspect:"signed,max:0.001"`
//	`inspect:"angle"`
//	`inspect:"label,fmt:%.3f"`
//	`inspect:"color"`
//	`inspect:"skip"`
func ParseTag(tag string) (Widget, map[string]string) {
	options := make(map[string]string)

	if tag == "" {
		return WidgetAuto, options
	}

	parts := strings.Split(tag, ",")

	var widget Widget
	switch strings.TrimSpace(parts[0]) {
	case "label":
		widget = WidgetLabel
	case "bar":
		widget = WidgetBar
	case "signed":
		widget = WidgetSigned
	case "angle":
		widget = WidgetAngle
	case "color":
		widget = WidgetColor
	case "skip":
		widget = WidgetSkip
	default:
		widget = WidgetAuto
	}

	for _, part := range parts[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) == 2 {
			options[kv[0]] = kv[1]
		}
	}

	return widget, options
}

// ExtractFields uses reflection to extract the exported fields of a component.
// component may be a struct or a pointer to one.
func ExtractFields(component any) []Field {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	var fields []Field

	for i := 0; i < v.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		widget, options := ParseTag(sf.Tag.Get("inspect"))
		if widget == WidgetSkip {
			continue
		}
		if widget == WidgetAuto {
			widget = WidgetLabel
		}

		fields = append(fields, Field{
			Name:    sf.Name,
			Value:   v.Field(i).Interface(),
			Widget:  widget,
			Options: options,
		})
	}

	return fields
}

// NewSection builds a section titled after the component's type name.
func NewSection(component any) Section {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	title := ""
	if t != nil {
		title = t.Name()
	}
	return Section{Title: title, Fields: ExtractFields(component)}
}

// FormatValue formats a field value for display.
func FormatValue(f Field) string {
	if fmtStr, ok := f.Options["fmt"]; ok {
		return fmt.Sprintf(fmtStr, f.Value)
	}
	switch f.Widget {
	case WidgetAngle:
		if v, ok := GetFloatValue(f.Value); ok {
			return fmt.Sprintf("%.1f°", math.Remainder(float64(v)*180/math.Pi, 360))
		}
	case WidgetColor:
		if v, ok := f.Value.(uint32); ok {
			return fmt.Sprintf("#%06x", v&0xffffff)
		}
	}
	switch v := f.Value.(type) {
	case float32:
		return fmt.Sprintf("%.3f", v)
	case float64:
		return fmt.Sprintf("%.3f", v)
	default:
		return fmt.Sprintf("%v", f.Value)
	}
}

// GetMax returns the max option as a float, defaulting to 1.0.
func GetMax(options map[string]string) float32 {
	if maxStr, ok := options["max"]; ok {
		if max, err := strconv.ParseFloat(maxStr, 32); err == nil {
			return float32(max)
		}
	}
	return 1.0
}

// GetFloatValue extracts a float32 from numeric field values.
func GetFloatValue(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	case int:
		return float32(v), true
	case int32:
		return float32(v), true
	case uint16:
		return float32(v), true
	case uint32:
		return float32(v), true
	default:
		return 0, false
	}
}
