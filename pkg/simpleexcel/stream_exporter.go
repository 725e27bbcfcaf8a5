package simpleexcel

import (
	"fmt"
	"io"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// StreamExporter manages a streaming Excel export session.
type StreamExporter struct {
	file       *excelize.File
	writer     io.Writer
	sheets     map[string]*StreamSheet
	order      []string
	formatters map[string]func(interface{}) interface{}
}

// NewStreamExporter creates a new StreamExporter.
func NewStreamExporter(w io.Writer) *StreamExporter {
	return &StreamExporter{
		file:       excelize.NewFile(),
		writer:     w,
		sheets:     make(map[string]*StreamSheet),
		formatters: make(map[string]func(interface{}) interface{}),
	}
}

// RegisterFormatter makes f available to columns referencing name via FormatterName.
func (e *StreamExporter) RegisterFormatter(name string, f func(interface{}) interface{}) *StreamExporter {
	e.formatters[name] = f
	return e
}

// StreamSheet represents a single sheet in a streaming export.
type StreamSheet struct {
	exporter    *StreamExporter
	stream      *excelize.StreamWriter
	name        string
	columns     []ColumnConfig
	currentRow  int
	headerShown bool
}

// AddSheet adds a new sheet and returns a StreamSheet builder.
func (e *StreamExporter) AddSheet(name string) (*StreamSheet, error) {
	if _, ok := e.sheets[name]; ok {
		return nil, fmt.Errorf("sheet %s already exists", name)
	}

	index, err := e.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if index == -1 {
		if _, err = e.file.NewSheet(name); err != nil {
			return nil, err
		}
	}

	sw, err := e.file.NewStreamWriter(name)
	if err != nil {
		return nil, err
	}

	sheet := &StreamSheet{
		exporter:   e,
		stream:     sw,
		name:       name,
		currentRow: 1,
	}
	e.sheets[name] = sheet
	e.order = append(e.order, name)
	return sheet, nil
}

// AddTemplateSheet adds a sheet laid out by tmpl and writes its header row.
func (e *StreamExporter) AddTemplateSheet(tmpl SheetTemplate) (*StreamSheet, error) {
	sheet, err := e.AddSheet(tmpl.Name)
	if err != nil {
		return nil, err
	}
	if err := sheet.writeHeader(tmpl.Columns, tmpl.HeaderBold); err != nil {
		return nil, err
	}
	return sheet, nil
}

// WriteHeader writes the header row for the sheet.
func (s *StreamSheet) WriteHeader(columns []ColumnConfig) error {
	return s.writeHeader(columns, false)
}

func (s *StreamSheet) writeHeader(columns []ColumnConfig, bold bool) error {
	if s.headerShown {
		return fmt.Errorf("header already written for sheet %s", s.name)
	}

	resolved := make([]ColumnConfig, len(columns))
	for i, col := range columns {
		if col.Formatter == nil && col.FormatterName != "" {
			f, ok := s.exporter.formatters[col.FormatterName]
			if !ok {
				return fmt.Errorf("formatter %q not registered", col.FormatterName)
			}
			col.Formatter = f
		}
		resolved[i] = col
	}
	s.columns = resolved

	styleID := 0
	if bold {
		id, err := s.exporter.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		styleID = id
	}

	header := make([]interface{}, len(resolved))
	for i, col := range resolved {
		header[i] = excelize.Cell{StyleID: styleID, Value: col.Header}

		if col.Width > 0 {
			if err := s.stream.SetColWidth(i+1, i+1, col.Width); err != nil {
				return err
			}
		}
	}

	cell, _ := excelize.CoordinatesToCellName(1, s.currentRow)
	if err := s.stream.SetRow(cell, header); err != nil {
		return err
	}
	s.currentRow++
	s.headerShown = true
	return nil
}

// WriteRow writes a single data row.
func (s *StreamSheet) WriteRow(item interface{}) error {
	if !s.headerShown {
		return fmt.Errorf("header must be written before data")
	}

	row := make([]interface{}, len(s.columns))
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for i, col := range s.columns {
		val := extractValue(v, col.FieldName)
		if col.Formatter != nil {
			val = col.Formatter(val)
		}
		row[i] = val
	}

	cell, _ := excelize.CoordinatesToCellName(1, s.currentRow)
	if err := s.stream.SetRow(cell, row); err != nil {
		return err
	}
	s.currentRow++
	return nil
}

// WriteBatch writes a slice of data as multiple rows.
func (s *StreamSheet) WriteBatch(slice interface{}) error {
	v := reflect.ValueOf(slice)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("WriteBatch expects a slice, got %T", slice)
	}

	for i := 0; i < v.Len(); i++ {
		if err := s.WriteRow(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// Close finalizes all stream writers and writes the file to the output writer.
func (e *StreamExporter) Close() error {
	for _, name := range e.order {
		if err := e.sheets[name].stream.Flush(); err != nil {
			return err
		}
	}

	// Remove default Sheet1 if it wasn't used/renamed
	if _, ok := e.sheets["Sheet1"]; !ok && len(e.order) > 0 {
		_ = e.file.DeleteSheet("Sheet1")
	}

	return e.file.Write(e.writer)
}

// extractValue reads fieldName from a struct or map. Nil pointers become "" and
// other pointers are dereferenced; string kinds are returned as plain strings.
func extractValue(item reflect.Value, fieldName string) interface{} {
	var f reflect.Value
	switch item.Kind() {
	case reflect.Struct:
		f = item.FieldByName(fieldName)
	case reflect.Map:
		f = item.MapIndex(reflect.ValueOf(fieldName))
	}
	if !f.IsValid() {
		return ""
	}
	for f.Kind() == reflect.Ptr || f.Kind() == reflect.Interface {
		if f.IsNil() {
			return ""
		}
		f = f.Elem()
	}
	if f.Kind() == reflect.String {
		return f.String()
	}
	return f.Interface()
}
